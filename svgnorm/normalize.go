// Brings raw SVG markup into a canonical form
// suitable for pixel comparison: fixed square
// geometry and no dependency on an inherited color.
package svgnorm

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html/charset"
)

// CanonicalSize is the width and height, in user units,
// written on the root element of every normalized icon.
const CanonicalSize = 128

const svgNamespace = "http://www.w3.org/2000/svg"

// ErrInvalidMarkup is returned when the input does not
// contain a well formed svg element.
var ErrInvalidMarkup = errors.New("invalid svg markup")

var currentColor = regexp.MustCompile(`(?i)currentcolor`)

// Icon is a normalized icon. The zero value is not a valid icon:
// use Normalize to build one.
type Icon struct {
	markup string
}

// Markup returns the canonical markup of the icon.
func (ic Icon) Markup() string { return ic.markup }

func (ic Icon) String() string { return ic.markup }

// IsZero returns true if the icon was not produced by Normalize.
func (ic Icon) IsZero() bool { return ic.markup == "" }

// Normalize extracts the first svg element of `markup`, forces its width and height
// to CanonicalSize and resolves every current color token to black.
// Internal geometry is left untouched: fitting the view box into the new size is done
// when rendering.
// Normalize is idempotent.
func Normalize(markup string) (Icon, error) {
	out, err := canonicalize(strings.NewReader(markup))
	if err != nil {
		return Icon{}, err
	}
	out = currentColor.ReplaceAllLiteralString(out, "#000000")
	return Icon{markup: out}, nil
}

// HasRoot returns true if `data` is well formed XML containing an svg element.
func HasRoot(data []byte) bool {
	_, err := canonicalize(strings.NewReader(string(data)))
	return err == nil
}

func newDecoder(r io.Reader) *xml.Decoder {
	decoder := xml.NewDecoder(r)
	decoder.CharsetReader = charset.NewReaderLabel
	return decoder
}

// canonicalize walks the whole document (so that truncated or malformed input is rejected)
// and serializes the subtree of the first svg element.
func canonicalize(r io.Reader) (string, error) {
	decoder := newDecoder(r)
	var (
		w       serializer
		stack   []xml.Name
		rootLvl = -1 // depth of the root svg element, -1 before it is found
		done    bool
	)
	for {
		// RawToken keeps namespace prefixes as written, so that
		// the output stays byte compatible with the input
		t, err := decoder.RawToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("%w: %s", ErrInvalidMarkup, err)
		}
		inRoot := rootLvl >= 0 && !done
		switch tok := t.(type) {
		case xml.StartElement:
			if rootLvl < 0 && tok.Name.Local == "svg" {
				rootLvl = len(stack)
				tok.Attr = canonicalRootAttrs(tok.Attr)
				inRoot = true
			}
			stack = append(stack, tok.Name)
			if inRoot {
				w.start(tok)
			}
		case xml.EndElement:
			if len(stack) == 0 || stack[len(stack)-1] != tok.Name {
				return "", fmt.Errorf("%w: unexpected end element </%s>", ErrInvalidMarkup, qualified(tok.Name))
			}
			stack = stack[:len(stack)-1]
			if inRoot {
				w.end(tok)
				if len(stack) == rootLvl {
					done = true
				}
			}
		case xml.CharData:
			if inRoot {
				w.text(string(tok))
			}
		case xml.Comment:
			if inRoot {
				w.comment(string(tok))
			}
		case xml.ProcInst:
			if inRoot {
				w.procInst(tok)
			}
		}
	}
	if len(stack) != 0 {
		return "", fmt.Errorf("%w: unexpected end of input in <%s>", ErrInvalidMarkup, qualified(stack[len(stack)-1]))
	}
	if rootLvl < 0 {
		return "", fmt.Errorf("%w: no svg element found", ErrInvalidMarkup)
	}
	return w.b.String(), nil
}

// canonicalRootAttrs overrides width and height, in place when present,
// and declares the svg namespace if needed.
func canonicalRootAttrs(attrs []xml.Attr) []xml.Attr {
	size := strconv.Itoa(CanonicalSize)
	out := make([]xml.Attr, 0, len(attrs)+3)
	var hasWidth, hasHeight, hasNamespace bool
	for _, attr := range attrs {
		if attr.Name.Space == "" {
			switch attr.Name.Local {
			case "width":
				attr.Value = size
				hasWidth = true
			case "height":
				attr.Value = size
				hasHeight = true
			case "xmlns":
				hasNamespace = true
			}
		}
		out = append(out, attr)
	}
	if !hasNamespace {
		out = append([]xml.Attr{{Name: xml.Name{Local: "xmlns"}, Value: svgNamespace}}, out...)
	}
	if !hasWidth {
		out = append(out, xml.Attr{Name: xml.Name{Local: "width"}, Value: size})
	}
	if !hasHeight {
		out = append(out, xml.Attr{Name: xml.Name{Local: "height"}, Value: size})
	}
	return out
}
