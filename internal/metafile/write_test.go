package metafile

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

type pageInfo struct {
	Page       int    `json:"page"`
	Path       string `json:"path"`
	EntryCount int    `json:"entry_count"`
}

type result struct {
	Directory string     `json:"directory"`
	PageSize  *int       `json:"page_size"`
	Ratio     float64    `json:"ratio"`
	Pages     []pageInfo `json:"pages"`
	Warnings  []string   `json:"warnings"`
}

func TestMarshal_RewriteStable(t *testing.T) {
	v := map[string]any{
		"z": 1,
		"a": map[string]any{
			"d": 4,
			"b": 2,
			"c": map[string]any{
				"y": 2,
				"x": 1,
			},
		},
	}
	b1, err := Marshal(v)
	if err != nil {
		t.Fatalf("marshal first: %v", err)
	}
	b2, err := Marshal(v)
	if err != nil {
		t.Fatalf("marshal second: %v", err)
	}
	if !bytes.Equal(b1, b2) {
		t.Fatalf("not rewrite-stable\nfirst:\n%s\nsecond:\n%s", string(b1), string(b2))
	}
	want := "a:\n  b: 2\n  c:\n    x: 1\n    y: 2\n  d: 4\nz: 1\n"
	if string(b1) != want {
		t.Fatalf("unexpected canonical output\nwant:\n%s\ngot:\n%s", want, string(b1))
	}
}

func TestMarshal_StructUsesJSONNames(t *testing.T) {
	b, err := Marshal(result{
		Directory: "/data",
		Ratio:     0.5,
		Pages:     []pageInfo{{Page: 1, Path: "/out/a.json", EntryCount: 3}},
		Warnings:  []string{},
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := "directory: /data\n" +
		"page_size: null\n" +
		"pages:\n" +
		"  - entry_count: 3\n" +
		"    page: 1\n" +
		"    path: /out/a.json\n" +
		"ratio: 0.5\n" +
		"warnings: []\n"
	if string(b) != want {
		t.Fatalf("unexpected output\nwant:\n%s\ngot:\n%s", want, string(b))
	}
}

func TestWrite_CreatesParents(t *testing.T) {
	p := filepath.Join(t.TempDir(), "a", "b", "manifest.yaml")
	if err := Write(p, map[string]any{"k": "v"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	b, err := os.ReadFile(p)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(b) != "k: v\n" {
		t.Fatalf("unexpected content: %q", string(b))
	}
}
