package sourcemap

import (
	"errors"
	"fmt"
)

// Sentinel errors callers can match with errors.Is. Construction helpers
// below wrap these with the specific detail (offset, coordinate, source
// name) the way pkg/lsp/sourcemap_cache.go wraps os/json errors with
// fmt.Errorf("...: %w", err).
var (
	// ErrMalformedMappings is returned when a VLQ mappings string cannot
	// be decoded: an invalid base64 character, or EOF in the middle of an
	// integer.
	ErrMalformedMappings = errors.New("sourcemap: malformed mappings")

	// ErrInvalidCoordinate is returned by the 1-based query APIs when
	// line < 1 or column < 0.
	ErrInvalidCoordinate = errors.New("sourcemap: invalid coordinate")

	// ErrInvalidMap is returned by the Remapper when a recursive trace
	// walks off the end of a child map.
	ErrInvalidMap = errors.New("sourcemap: invalid map")
)

func malformedMappingsErr(offset int, reason string) error {
	return fmt.Errorf("%w: at offset %d: %s", ErrMalformedMappings, offset, reason)
}

func invalidCoordinateErr(field string, value int) error {
	return fmt.Errorf("%w: %s = %d", ErrInvalidCoordinate, field, value)
}

func invalidMapErr(source string, line int) error {
	return fmt.Errorf("%w: source %q has no row %d", ErrInvalidMap, source, line)
}
