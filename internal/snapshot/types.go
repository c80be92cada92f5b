package snapshot

import (
	"time"

	"github.com/flarebyte/nebula/internal/vcs"
)

// Entry describes one filesystem object found under a snapshot root.
type Entry struct {
	// RelativePath uses forward slashes regardless of platform.
	RelativePath  string
	AbsolutePath  string
	IsDirectory   bool
	SizeBytes     int64
	ModifiedAt    time.Time
	IsDevelopment bool
}

// Page is a bounded, ordered slice of a snapshot's entries.
type Page struct {
	Index        int
	Count        int
	Size         *int
	TotalEntries int
	Directory    string
	GeneratedAt  time.Time
	Entries      []Entry
}

// PageInfo records where a page was persisted.
type PageInfo struct {
	Page       int    `json:"page"`
	Path       string `json:"path"`
	EntryCount int    `json:"entry_count"`
}

// DevelopmentDirectory is a workspace directory that was emitted but not
// descended into.
type DevelopmentDirectory struct {
	RelativePath string    `json:"relative_path"`
	AbsolutePath string    `json:"absolute_path"`
	VCS          *vcs.Info `json:"vcs,omitempty"`
}

// Result is the caller-facing outcome of one snapshot request.
type Result struct {
	Directory              string                 `json:"directory"`
	GeneratedAt            time.Time              `json:"generated_at"`
	RequestID              string                 `json:"request_id"`
	TotalEntries           int                    `json:"total_entries"`
	PageSize               *int                   `json:"page_size"`
	Pages                  []PageInfo             `json:"pages"`
	DevelopmentDirectories []DevelopmentDirectory `json:"development_directories"`
	Warnings               []string               `json:"warnings,omitempty"`
}

// PageCount is the number of pages written.
func (r *Result) PageCount() int { return len(r.Pages) }

// Request is the input to Engine.Snapshot.
type Request struct {
	Path string
	// PageSize <= 0 selects automatic sizing.
	PageSize int
}
