package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrPathNotFound         = errors.New("path not found")
	ErrFormatUnrecognized   = errors.New("format unrecognized")
	ErrDecodeTruncated      = errors.New("navigation data truncated")
	ErrSelectionEmpty       = errors.New("no multichannel stream")
	ErrUnsupportedStructure = errors.New("unsupported structure")
	ErrExternalTool         = errors.New("external tool error")
	ErrConfiguration        = errors.New("configuration error")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrExternalTool
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Kind returns the sentinel marker carried by err, or nil when err is not
// tagged with one of the package markers.
func Kind(err error) error {
	for _, marker := range []error{
		ErrPathNotFound,
		ErrFormatUnrecognized,
		ErrDecodeTruncated,
		ErrSelectionEmpty,
		ErrUnsupportedStructure,
		ErrConfiguration,
		ErrExternalTool,
	} {
		if errors.Is(err, marker) {
			return marker
		}
	}
	return nil
}

// ExitCode maps a run outcome to the process exit status. Every failure kind
// exits with 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return 1
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
