package pipeline

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Input encodings accepted by DecodeReader. Polish exports from older desktop
// tools are commonly Windows-1250 or ISO-8859-2.
const (
	EncodingUTF8        = "utf-8"
	EncodingWindows1250 = "windows-1250"
	EncodingISO88592    = "iso-8859-2"
)

// DecodeReader wraps r so it yields UTF-8. A UTF-8 byte order mark is
// dropped; for utf-8 a UTF-16 BOM switches decoding to UTF-16.
func DecodeReader(r io.Reader, name string) (io.Reader, error) {
	var enc encoding.Encoding
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", EncodingUTF8, "utf8":
		return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())), nil
	case EncodingWindows1250, "cp1250":
		enc = charmap.Windows1250
	case EncodingISO88592, "latin2":
		enc = charmap.ISO8859_2
	default:
		return nil, fmt.Errorf("unsupported input encoding %q (utf-8|windows-1250|iso-8859-2)", name)
	}
	return transform.NewReader(r, enc.NewDecoder()), nil
}
