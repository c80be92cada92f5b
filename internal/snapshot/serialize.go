package snapshot

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/flarebyte/nebula/internal/insight"
)

// DefaultUserID is sent with delivery payloads when no user is configured.
const DefaultUserID = "621c7d3957c2ea5b9063d04c"

// DurableEntry is the on-disk form of an Entry.
type DurableEntry struct {
	RelativePath  string `json:"relative_path"`
	AbsolutePath  string `json:"absolute_path"`
	IsDirectory   bool   `json:"is_directory"`
	SizeBytes     int64  `json:"size_bytes"`
	ModifiedAt    string `json:"modified_at"`
	IsDevelopment bool   `json:"is_development"`
}

// DurablePage is the document written for each page.
type DurablePage struct {
	Directory    string         `json:"directory"`
	GeneratedAt  string         `json:"generated_at"`
	Page         int            `json:"page"`
	PageCount    int            `json:"page_count"`
	PageSize     *int           `json:"page_size"`
	TotalEntries int            `json:"total_entries"`
	Entries      []DurableEntry `json:"entries"`
}

// DeliveryEntry is the remote payload form of an Entry. Keywords and
// Caption are present only when an insight supplied them.
type DeliveryEntry struct {
	RelativePath  string   `json:"relativePath"`
	AbsolutePath  string   `json:"absolutePath"`
	IsDirectory   bool     `json:"isDirectory"`
	SizeBytes     int64    `json:"sizeBytes"`
	ModifiedAt    string   `json:"modifiedAt"`
	IsDevelopment bool     `json:"isDevelopment"`
	Keywords      []string `json:"keywords,omitempty"`
	Caption       string   `json:"caption,omitempty"`
}

// DeliveryPage is the payload sent to the catalog service for each page.
type DeliveryPage struct {
	Directory    string          `json:"directory"`
	GeneratedAt  string          `json:"generatedAt"`
	Page         int             `json:"page"`
	PageCount    int             `json:"pageCount"`
	PageSize     *int            `json:"pageSize"`
	TotalEntries int             `json:"totalEntries"`
	UserID       string          `json:"userId"`
	Entries      []DeliveryEntry `json:"entries"`
}

// LogFields summarises the payload for log lines.
func (p DeliveryPage) LogFields() logrus.Fields {
	enriched := 0
	for _, e := range p.Entries {
		if len(e.Keywords) > 0 || e.Caption != "" {
			enriched++
		}
	}
	return logrus.Fields{
		"directory": p.Directory,
		"page":      p.Page,
		"pages":     p.PageCount,
		"entries":   len(p.Entries),
		"enriched":  enriched,
		"user":      p.UserID,
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// ToDurable converts a page into its on-disk shape.
func ToDurable(p Page) DurablePage {
	out := DurablePage{
		Directory:    p.Directory,
		GeneratedAt:  formatTime(p.GeneratedAt),
		Page:         p.Index,
		PageCount:    p.Count,
		PageSize:     p.Size,
		TotalEntries: p.TotalEntries,
		Entries:      make([]DurableEntry, 0, len(p.Entries)),
	}
	for _, e := range p.Entries {
		out.Entries = append(out.Entries, DurableEntry{
			RelativePath:  e.RelativePath,
			AbsolutePath:  e.AbsolutePath,
			IsDirectory:   e.IsDirectory,
			SizeBytes:     e.SizeBytes,
			ModifiedAt:    formatTime(e.ModifiedAt),
			IsDevelopment: e.IsDevelopment,
		})
	}
	return out
}

// ToDelivery converts a page into the remote payload, attaching insights by
// absolute path.
func ToDelivery(p Page, userID string, insights map[string]*insight.Insight) DeliveryPage {
	if userID == "" {
		userID = DefaultUserID
	}
	out := DeliveryPage{
		Directory:    p.Directory,
		GeneratedAt:  formatTime(p.GeneratedAt),
		Page:         p.Index,
		PageCount:    p.Count,
		PageSize:     p.Size,
		TotalEntries: p.TotalEntries,
		UserID:       userID,
		Entries:      make([]DeliveryEntry, 0, len(p.Entries)),
	}
	for _, e := range p.Entries {
		de := DeliveryEntry{
			RelativePath:  e.RelativePath,
			AbsolutePath:  e.AbsolutePath,
			IsDirectory:   e.IsDirectory,
			SizeBytes:     e.SizeBytes,
			ModifiedAt:    formatTime(e.ModifiedAt),
			IsDevelopment: e.IsDevelopment,
		}
		if in := insights[e.AbsolutePath]; in != nil {
			if len(in.Highlights) > 0 {
				de.Keywords = append([]string(nil), in.Highlights...)
			}
			de.Caption = in.Caption
		}
		out.Entries = append(out.Entries, de)
	}
	return out
}

// EncodeJSON renders v as indented JSON with a trailing newline and without
// HTML escaping.
func EncodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
