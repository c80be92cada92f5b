// Package insight extracts lightweight per-file signals (keywords and a
// caption) that accompany snapshot entries sent to the catalog service.
package insight

import (
	"path/filepath"
	"strings"
)

// Kind is a recognised file category. Each kind maps to at most one backend.
type Kind string

const (
	KindUnknown     Kind = ""
	KindPDF         Kind = "pdf"
	KindImage       Kind = "image"
	KindSpreadsheet Kind = "spreadsheet"
	KindText        Kind = "text"
	KindMarkdown    Kind = "markdown"
	KindHTML        Kind = "html"
	KindScript      Kind = "script"
)

var kindByExt = map[string]Kind{
	".pdf":  KindPDF,
	".png":  KindImage,
	".jpg":  KindImage,
	".jpeg": KindImage,
	".gif":  KindImage,
	".webp": KindImage,
	".bmp":  KindImage,
	".tif":  KindImage,
	".tiff": KindImage,
	".xlsx": KindSpreadsheet,
	".xls":  KindSpreadsheet,
	".xlsm": KindSpreadsheet,
	".csv":  KindSpreadsheet,
	".md":   KindMarkdown,
	".txt":  KindText,
	".html": KindHTML,
	".htm":  KindHTML,
}

// KindOf maps a path to its kind by lower-cased extension.
func KindOf(path string) Kind {
	return kindByExt[strings.ToLower(filepath.Ext(path))]
}

// Insight is the extracted signal for one file.
type Insight struct {
	Highlights []string
	Caption    string
}

// New builds an Insight. Highlights is never nil.
func New(highlights []string, caption string) *Insight {
	if highlights == nil {
		highlights = []string{}
	}
	return &Insight{Highlights: highlights, Caption: strings.TrimSpace(caption)}
}

// Empty reports whether i carries nothing worth sending.
func (i *Insight) Empty() bool {
	return i == nil || (len(i.Highlights) == 0 && i.Caption == "")
}
