package source

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// Supported document encodings.
const (
	EncodingWindows1252 = "windows-1252"
	EncodingUTF8        = "utf-8"
)

var utf8ByteOrderMark = []byte{0xEF, 0xBB, 0xBF}

// decodeDocument converts raw document bytes to text. The published rules
// are Windows-1252; an empty encoding name means the same.
func decodeDocument(data []byte, encoding string) (string, error) {
	switch strings.ToLower(encoding) {
	case "", EncodingWindows1252, "cp1252":
		decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
		if err != nil {
			return "", fmt.Errorf("decoding windows-1252: %w", err)
		}
		return string(decoded), nil
	case EncodingUTF8, "utf8":
		return string(bytes.TrimPrefix(data, utf8ByteOrderMark)), nil
	}
	return "", fmt.Errorf("unsupported encoding %q", encoding)
}
