package builder

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
)

// Charset converts between a source character set and UTF-8
type Charset struct {
	name string
	enc  encoding.Encoding
}

// LookupCharset resolves a WHATWG encoding label such as "utf-8",
// "iso-8859-1" or "shift_jis".
func LookupCharset(label string) (*Charset, error) {
	if label == "" {
		label = "utf-8"
	}
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("unsupported charset %q: %w", label, err)
	}
	name, _ := htmlindex.Name(enc)
	return &Charset{name: name, enc: enc}, nil
}

// Name returns the canonical name of the character set
func (c *Charset) Name() string {
	return c.name
}

func (c *Charset) isUTF8() bool {
	return c.enc == unicode.UTF8 || strings.EqualFold(c.name, "utf-8")
}

// Decode converts src to UTF-8
func (c *Charset) Decode(src []byte) ([]byte, error) {
	if c.isUTF8() {
		return src, nil
	}
	out, err := c.enc.NewDecoder().Bytes(src)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", c.name, err)
	}
	return out, nil
}

// Encode converts UTF-8 text back to the character set
func (c *Charset) Encode(src []byte) ([]byte, error) {
	if c.isUTF8() {
		return src, nil
	}
	out, err := c.enc.NewEncoder().Bytes(src)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", c.name, err)
	}
	return out, nil
}
