package snapshot

// AutoThreshold is the default entry count at which automatic pagination
// switches from one page to pages of this size.
const AutoThreshold = 50

// EffectivePageSize returns the page size to apply for total entries, or nil
// when everything fits on one unsized page.
func EffectivePageSize(total, requested, threshold int) *int {
	if requested > 0 {
		return &requested
	}
	if threshold <= 0 {
		threshold = AutoThreshold
	}
	if total >= threshold {
		return &threshold
	}
	return nil
}

// Paginate splits entries into consecutive chunks. It always returns at
// least one chunk, so an empty input yields one empty page.
func Paginate(entries []Entry, requested, threshold int) (*int, [][]Entry) {
	size := EffectivePageSize(len(entries), requested, threshold)
	if size == nil || len(entries) == 0 {
		return size, [][]Entry{entries}
	}
	n := *size
	chunks := make([][]Entry, 0, (len(entries)+n-1)/n)
	for start := 0; start < len(entries); start += n {
		end := min(start+n, len(entries))
		chunks = append(chunks, entries[start:end:end])
	}
	return size, chunks
}

// Pages attaches positional metadata to the chunks produced by Paginate.
func Pages(base Page, size *int, chunks [][]Entry) []Page {
	pages := make([]Page, len(chunks))
	for i, chunk := range chunks {
		p := base
		p.Index = i + 1
		p.Count = len(chunks)
		p.Size = size
		p.Entries = chunk
		pages[i] = p
	}
	return pages
}
