package insight

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	defaultSheetRows     = 20000
	sheetHighlightLimit  = 40
	sheetHeaderLimit     = 12
	sheetSectionLimit    = 6
	sheetSampleColumns   = 12
	sheetSamplesPerCol   = 500
	sheetSampleTermLimit = 80
	csvReadLimit         = 32 << 20
)

// ErrUnsupportedFormat marks spreadsheet formats that cannot be read.
var ErrUnsupportedFormat = errors.New("unsupported spreadsheet format")

var (
	urlPattern      = regexp.MustCompile(`(?i)https?://|www\.`)
	unnamedHeader   = regexp.MustCompile(`(?i)^Unnamed:? ?\d+$`)
	camelBoundary   = regexp.MustCompile(`([a-z])([A-Z])`)
	wordSeparators  = regexp.MustCompile(`[_\-]+`)
	sentenceEnding  = regexp.MustCompile(`[.!?]\s*$`)
	sampleStopWords = map[string]struct{}{
		"및": {}, "등": {}, "자료": {}, "현황": {}, "총계": {}, "합계": {}, "확인": {}, "공지": {}, "입니다": {},
	}
)

// SheetBackend summarises the first sheet of a CSV or XLSX/XLSM workbook.
// Highlights are the distinct section labels, headers and frequent sample
// terms; the caption is a one-line summary.
type SheetBackend struct {
	MaxRows int
}

// SheetSignals are the raw signals behind a spreadsheet summary.
type SheetSignals struct {
	Title    string
	Size     string
	Headers  []string
	Sections []string
	Samples  []string
	Encoding string
}

func (b SheetBackend) Extract(ctx context.Context, path string) (*Insight, error) {
	summary, sig, err := b.Summarize(ctx, path)
	if err != nil {
		return nil, err
	}
	var candidates []string
	candidates = append(candidates, sig.Sections...)
	candidates = append(candidates, sig.Headers...)
	candidates = append(candidates, sig.Samples...)
	highlights := uniqueFold(candidates, sheetHighlightLimit)
	if len(highlights) == 0 && summary != "" {
		highlights = []string{summary}
	}
	if len(highlights) == 0 {
		return nil, nil
	}
	return New(highlights, summary), nil
}

// Summarize loads the sheet and builds the summary line and its signals.
func (b SheetBackend) Summarize(ctx context.Context, path string) (string, SheetSignals, error) {
	maxRows := b.MaxRows
	if maxRows <= 0 {
		maxRows = defaultSheetRows
	}
	var (
		grid [][]string
		sig  SheetSignals
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		grid, sig.Encoding, err = readCSVGrid(path, maxRows+1)
	case ".xlsx", ".xlsm":
		grid, err = readXLSXGrid(path, maxRows+1)
		if err == nil {
			sig.Sections = topLeftSections(grid)
		}
	default:
		err = fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
	if err != nil {
		return "", SheetSignals{}, err
	}
	if err := ctx.Err(); err != nil {
		return "", SheetSignals{}, err
	}

	var rawHeaders []string
	var data [][]string
	if len(grid) > 0 {
		rawHeaders, data = grid[0], grid[1:]
	}
	cols := len(rawHeaders)
	for _, row := range data {
		cols = max(cols, len(row))
	}

	sig.Title = collapseSpace(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	sig.Size = strconv.Itoa(len(data)) + "x" + strconv.Itoa(cols)
	sig.Headers = readableHeaders(rawHeaders)
	sig.Samples = sampleTerms(data)

	var parts []string
	if sig.Title != "" {
		parts = append(parts, "title:"+sig.Title)
	}
	parts = append(parts, "size:"+sig.Size)
	if len(sig.Headers) > 0 {
		parts = append(parts, "columns:"+strings.Join(sig.Headers, ", "))
	}
	if len(sig.Sections) > 0 {
		parts = append(parts, "sections:"+strings.Join(sig.Sections[:min(len(sig.Sections), sheetSectionLimit)], " "))
	}
	if sig.Title != "" && schemaStrength(rawHeaders) < 0.5 {
		parts = append(append([]string{"title:" + sig.Title}, parts...), "title:"+sig.Title)
	}
	return collapseSpace(strings.Join(parts, " | ")), sig, nil
}

func readCSVGrid(path string, maxRows int) ([][]string, string, error) {
	data, err := readHead(path, csvReadLimit)
	if err != nil {
		return nil, "", err
	}
	text, enc, err := decodeText(data, textDecoders)
	if err != nil {
		return nil, "", err
	}
	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	var grid [][]string
	for len(grid) < maxRows {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, "", fmt.Errorf("csv: %w", err)
		}
		if rowIsEmpty(rec) {
			continue
		}
		grid = append(grid, rec)
	}
	return grid, enc, nil
}

// readableHeaders splits camelCase and snake_case names into words and
// drops unnamed columns.
func readableHeaders(raw []string) []string {
	var out []string
	for _, h := range raw {
		h = nfkc(h)
		if h == "" || unnamedHeader.MatchString(h) {
			continue
		}
		words := camelBoundary.ReplaceAllString(h, "$1 $2")
		words = wordSeparators.ReplaceAllString(words, " ")
		if w := collapseSpace(words); w != "" {
			out = append(out, w)
		}
		if len(out) >= sheetHeaderLimit {
			break
		}
	}
	return out
}

// schemaStrength is the share of headers that look like real column names.
func schemaStrength(headers []string) float64 {
	if len(headers) == 0 {
		return 0
	}
	invalid := 0
	for _, h := range headers {
		h = strings.TrimSpace(h)
		if unnamedHeader.MatchString(h) || utf8.RuneCountInString(h) <= 1 {
			invalid++
		}
	}
	return 1 - float64(invalid)/float64(len(headers))
}

// topLeftSections ranks the labels found in the top-left corner of a sheet,
// where titles and section banners usually live.
func topLeftSections(grid [][]string) []string {
	type scored struct {
		text  string
		score float64
		order int
	}
	agg := map[string]*scored{}
	for r := 0; r < min(len(grid), 12); r++ {
		for c := 0; c < min(len(grid[r]), 8); c++ {
			v := collapseSpace(nfkc(grid[r][c]))
			if utf8.RuneCountInString(v) <= 1 || urlPattern.MatchString(v) {
				continue
			}
			weight := 1.0
			if sentenceEnding.MatchString(v) || len(strings.Fields(v)) >= 10 {
				weight *= 0.5
			}
			if s, ok := agg[v]; ok {
				s.score += weight
				continue
			}
			agg[v] = &scored{text: v, score: weight, order: len(agg)}
		}
	}
	ranked := make([]*scored, 0, len(agg))
	for _, s := range agg {
		ranked = append(ranked, s)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		li, lj := utf8.RuneCountInString(ranked[i].text), utf8.RuneCountInString(ranked[j].text)
		if li != lj {
			return li > lj
		}
		return ranked[i].order < ranked[j].order
	})
	texts := make([]string, 0, len(ranked))
	for _, s := range ranked {
		texts = append(texts, s.text)
	}
	return uniqueFold(texts, sheetSectionLimit)
}

// sampleTerms counts tokens in the leading values of the first columns and
// returns the most frequent ones.
func sampleTerms(data [][]string) []string {
	counts := map[string]int{}
	var order []string
	for col := 0; col < sheetSampleColumns; col++ {
		seen := 0
		for _, row := range data {
			if seen >= sheetSamplesPerCol {
				break
			}
			if col >= len(row) {
				continue
			}
			v := strings.TrimSpace(row[col])
			n := utf8.RuneCountInString(v)
			if n < 2 || n > 64 || urlPattern.MatchString(v) {
				continue
			}
			seen++
			for _, tok := range tokenize(v) {
				if _, ok := counts[tok]; !ok {
					order = append(order, tok)
				}
				counts[tok]++
			}
		}
	}
	sort.SliceStable(order, func(i, j int) bool { return counts[order[i]] > counts[order[j]] })
	var out []string
	for _, tok := range order[:min(len(order), sheetSampleTermLimit)] {
		if _, stop := sampleStopWords[strings.ToLower(tok)]; stop {
			continue
		}
		out = append(out, tok)
	}
	return out
}

func tokenize(text string) []string {
	text = nfkc(text)
	if text == "" || urlPattern.MatchString(text) {
		return nil
	}
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_')
	})
	var out []string
	for _, f := range fields {
		n := utf8.RuneCountInString(f)
		if n < 2 || n > 30 || isDigits(f) {
			continue
		}
		out = append(out, f)
	}
	return out
}

func isDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
