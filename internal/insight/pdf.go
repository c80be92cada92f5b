package insight

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

const (
	defaultPDFPages = 1
	defaultPDFLines = 20
)

// ErrNoText is returned when a document has no extractable text.
var ErrNoText = errors.New("no text content found")

// PDFBackend returns the distinct text lines shown on the first pages of a
// PDF, in reading order.
type PDFBackend struct {
	MaxPages int
	MaxLines int
}

func (b PDFBackend) Extract(ctx context.Context, path string) (*Insight, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	pctx, err := api.ReadValidateAndOptimize(f, model.NewDefaultConfiguration())
	if err != nil {
		return nil, fmt.Errorf("pdfcpu read: %w", err)
	}

	pages := b.MaxPages
	if pages <= 0 {
		pages = defaultPDFPages
	}
	pages = min(pages, pctx.PageCount)

	var lines []string
	for pageNr := 1; pageNr <= pages; pageNr++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		lines = append(lines, pageTextLines(pctx, pageNr)...)
	}
	lines = uniqueLines(lines)
	if len(lines) == 0 {
		return nil, ErrNoText
	}
	limit := b.MaxLines
	if limit <= 0 {
		limit = defaultPDFLines
	}
	if len(lines) > limit {
		lines = lines[:limit]
	}
	return New(lines, ""), nil
}

func pageTextLines(pctx *model.Context, pageNr int) []string {
	r, err := pdfcpu.ExtractPageContent(pctx, pageNr)
	if err != nil || r == nil {
		return nil
	}
	data, err := io.ReadAll(r)
	if err != nil || len(data) == 0 {
		return nil
	}
	return contentStreamLines(data)
}

// pdfStringRe matches literal strings: (text here)
var pdfStringRe = regexp.MustCompile(`\(((?:\\.|[^\\)])*)\)`)

// contentStreamLines reads text-showing operators from a page content
// stream and splits the output on line-moving operators.
func contentStreamLines(data []byte) []string {
	var lines []string
	var cur strings.Builder
	flush := func() {
		if s := collapseSpace(cur.String()); s != "" {
			lines = append(lines, s)
		}
		cur.Reset()
	}

	for _, raw := range bytes.Split(data, []byte{'\n'}) {
		line := bytes.TrimSpace(raw)
		if len(line) == 0 {
			continue
		}
		switch {
		case bytes.HasSuffix(line, []byte("Tj")), bytes.HasSuffix(line, []byte("TJ")):
			for _, m := range pdfStringRe.FindAllSubmatch(line, -1) {
				cur.WriteString(decodePDFString(m[1]))
			}
		case bytes.HasSuffix(line, []byte("'")), bytes.HasSuffix(line, []byte(`"`)):
			flush()
			for _, m := range pdfStringRe.FindAllSubmatch(line, -1) {
				cur.WriteString(decodePDFString(m[1]))
			}
		case bytes.Equal(line, []byte("T*")), bytes.Equal(line, []byte("ET")):
			flush()
		case bytes.HasSuffix(line, []byte("Td")), bytes.HasSuffix(line, []byte("TD")):
			if movesVertically(line) {
				flush()
			} else if cur.Len() > 0 {
				cur.WriteByte(' ')
			}
		}
	}
	flush()
	return lines
}

// movesVertically reports whether a "tx ty Td" operator has a non-zero ty.
func movesVertically(line []byte) bool {
	fields := bytes.Fields(line)
	if len(fields) < 3 {
		return true
	}
	ty, err := strconv.ParseFloat(string(fields[len(fields)-2]), 64)
	return err != nil || ty != 0
}

// decodePDFString handles the escape sequences of a literal string.
func decodePDFString(raw []byte) string {
	var sb strings.Builder
	for i := 0; i < len(raw); i++ {
		if raw[i] != '\\' || i+1 >= len(raw) {
			sb.WriteByte(raw[i])
			continue
		}
		i++
		switch raw[i] {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case '\\', '(', ')':
			sb.WriteByte(raw[i])
		default:
			if raw[i] < '0' || raw[i] > '7' {
				sb.WriteByte(raw[i])
				continue
			}
			val := int(raw[i] - '0')
			for k := 0; k < 2 && i+1 < len(raw) && raw[i+1] >= '0' && raw[i+1] <= '7'; k++ {
				i++
				val = val*8 + int(raw[i]-'0')
			}
			sb.WriteByte(byte(val))
		}
	}
	return strings.ToValidUTF8(sb.String(), "")
}
