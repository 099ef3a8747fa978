package sales

import (
	"bytes"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// textReader returns a UTF-8 reader over delimited text exported by Excel
// or a distributor system: BOM-prefixed UTF-8 and UTF-16, plain UTF-8, and
// Windows-1252 for anything that is not valid UTF-8.
func textReader(data []byte) (io.Reader, string) {
	var decoder *encoding.Decoder
	name := "utf-8"

	switch {
	case bytes.HasPrefix(data, bomUTF8):
		return bytes.NewReader(data[len(bomUTF8):]), "utf-8-bom"
	case bytes.HasPrefix(data, bomUTF16LE), bytes.HasPrefix(data, bomUTF16BE):
		decoder = unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder()
		name = "utf-16"
	case utf8.Valid(data):
		return bytes.NewReader(data), name
	default:
		decoder = charmap.Windows1252.NewDecoder()
		name = "windows-1252"
	}

	return transform.NewReader(bytes.NewReader(data), decoder), name
}
