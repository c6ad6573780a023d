package filewriter

import (
	"encoding"
	"fmt"

	"github.com/aleister1102/postforge/internal/errorwrapper"
)

// Content is the tagged union of payloads the writer accepts. Text is
// written subject to the encoding check, Binary is written verbatim.
type Content interface {
	isContent()
}

// TextContent is character data written in the configured encoding
type TextContent string

func (TextContent) isContent() {}

// BinaryContent is raw byte data, written as-is
type BinaryContent []byte

func (BinaryContent) isContent() {}

// Text wraps a string as writable content
func Text(s string) Content {
	return TextContent(s)
}

// Binary wraps a byte slice as writable content
func Binary(b []byte) Content {
	return BinaryContent(b)
}

// Coerce converts an arbitrary value into Content at the call boundary.
// Strings and byte slices map directly; values implementing fmt.Stringer or
// encoding.TextMarshaler are rendered to text. Anything else is rejected so
// the writer itself never has to inspect runtime types.
func Coerce(value any) (Content, error) {
	switch v := value.(type) {
	case Content:
		return v, nil
	case string:
		return TextContent(v), nil
	case []byte:
		return BinaryContent(v), nil
	case encoding.TextMarshaler:
		text, err := v.MarshalText()
		if err != nil {
			return nil, errorwrapper.WrapError(err, "failed to marshal content to text")
		}
		return BinaryContent(text), nil
	case fmt.Stringer:
		return TextContent(v.String()), nil
	case error:
		return TextContent(v.Error()), nil
	default:
		return nil, errorwrapper.NewError("unsupported content type: %T", value)
	}
}
