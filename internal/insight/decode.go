package insight

import (
	"bytes"
	"errors"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/unicode/norm"
)

// decodeStrategy converts raw bytes to text or reports that it does not
// apply. Strategies are tried in order; the last one never fails.
type decodeStrategy struct {
	name   string
	decode func([]byte) (string, bool)
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var textDecoders = []decodeStrategy{
	{name: "utf-8", decode: decodeUTF8},
	{name: "cp949", decode: viaEncoding(korean.EUCKR)},
	{name: "shift-jis", decode: viaEncoding(japanese.ShiftJIS)},
	{name: "windows-1252", decode: decodeWindows1252},
}

var errUndecodable = errors.New("no decoding strategy applied")

// decodeText runs strategies in order and returns the first success along
// with the strategy name.
func decodeText(data []byte, strategies []decodeStrategy) (string, string, error) {
	for _, s := range strategies {
		if text, ok := s.decode(data); ok {
			return text, s.name, nil
		}
	}
	return "", "", errUndecodable
}

func decodeUTF8(data []byte) (string, bool) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		return "", false
	}
	return string(data), true
}

// decodeWindows1252 maps every byte, so it always succeeds.
func decodeWindows1252(data []byte) (string, bool) {
	out, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		return strings.ToValidUTF8(string(data), ""), true
	}
	return string(out), true
}

func viaEncoding(enc encoding.Encoding) func([]byte) (string, bool) {
	return func(data []byte) (string, bool) {
		out, err := enc.NewDecoder().Bytes(data)
		if err != nil || bytes.ContainsRune(out, utf8.RuneError) {
			return "", false
		}
		return string(out), true
	}
}

// nfkc applies compatibility normalisation and trims surrounding space.
func nfkc(s string) string {
	return strings.TrimSpace(norm.NFKC.String(s))
}
