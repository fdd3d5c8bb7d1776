package render

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatText: true,
	FormatJSON: true,
	FormatDOT:  true,
	FormatSVG:  true,
}

// ValidateFormat checks that a format is one of allowed, or any supported
// format when allowed is empty.
func ValidateFormat(format string, allowed ...string) error {
	if len(allowed) == 0 {
		if !ValidFormats[format] {
			return fmt.Errorf("invalid format: %q (must be one of: text, json, dot, svg)", format)
		}
		return nil
	}
	for _, a := range allowed {
		if format == a {
			return nil
		}
	}
	return fmt.Errorf("invalid format: %q (must be one of: %s)", format, strings.Join(allowed, ", "))
}

// Text renders a linearization on a single line, most specific first.
func Text(order []string) string {
	return strings.Join(order, " ") + "\n"
}

// JSON renders v as indented JSON with a trailing newline.
func JSON(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
