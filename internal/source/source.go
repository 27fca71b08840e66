// Package source reads program source files, detecting a byte-order mark
// to transcode UTF-16 input to the UTF-8 the lexer requires. Files without
// a recognized BOM are taken as UTF-8 when they are valid UTF-8, and
// otherwise read one byte per rune.
package source

import (
	"bytes"
	"fmt"
	"os"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ReadFile reads path and returns its contents as a UTF-8 string, decoding
// UTF-16 LE/BE input (detected via BOM) and stripping a UTF-8 BOM.
func ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	return Decode(data)
}

// Decode transcodes raw file bytes to a UTF-8 string, detecting the
// encoding from a leading byte-order mark.
func Decode(data []byte) (string, error) {
	switch {
	case len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF:
		return string(data[3:]), nil
	case len(data) >= 2 && data[0] == 0xFF && data[1] == 0xFE:
		return decodeUTF16(data, unicode.LittleEndian)
	case len(data) >= 2 && data[0] == 0xFE && data[1] == 0xFF:
		return decodeUTF16(data, unicode.BigEndian)
	case utf8.Valid(data):
		return string(data), nil
	default:
		// Not valid UTF-8 and no recognized BOM: promote each byte to its
		// own rune rather than fail outright, so ASCII-compatible Latin-1
		// sources still lex.
		runes := make([]rune, len(data))
		for i, b := range data {
			runes[i] = rune(b)
		}
		return string(runes), nil
	}
}

func decodeUTF16(data []byte, endianness unicode.Endianness) (string, error) {
	decoder := unicode.UTF16(endianness, unicode.UseBOM).NewDecoder()
	utf8Data, _, err := transform.Bytes(decoder, data)
	if err != nil {
		return "", fmt.Errorf("failed to decode UTF-16: %w", err)
	}
	if len(utf8Data) >= 3 && utf8Data[0] == 0xEF && utf8Data[1] == 0xBB && utf8Data[2] == 0xBF {
		utf8Data = utf8Data[3:]
	}
	return string(bytes.TrimPrefix(utf8Data, []byte("\xEF\xBB\xBF"))), nil
}
