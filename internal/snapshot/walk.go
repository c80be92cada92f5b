package snapshot

import (
	"context"
	"errors"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Walker produces the depth-first entry sequence for a directory tree.
type Walker struct {
	// Classifier defaults to DefaultClassifier when nil.
	Classifier *Classifier
}

var errStopWalk = errors.New("walk stopped")

type child struct {
	name string
	path string
	rel  string
	info fs.FileInfo
}

// Walk lazily yields entries under root, which must already be resolved.
// Each subdirectory's contents come before the subdirectory itself, all
// subdirectories of a directory come before its files, and siblings are
// ordered case-insensitively. Dot-named entries are skipped together with
// everything below them. Workspaces are yielded once and not descended.
//
// A traversal failure is yielded as the final pair and ends the sequence.
func (w *Walker) Walk(ctx context.Context, root string) iter.Seq2[Entry, error] {
	classifier := DefaultClassifier()
	if w != nil && w.Classifier != nil {
		classifier = *w.Classifier
	}
	return func(yield func(Entry, error) bool) {
		t := &traversal{
			ctx:        ctx,
			root:       root,
			classifier: classifier,
			visited:    map[string]struct{}{},
			yield:      yield,
		}
		if err := t.dir(root, ""); err != nil && !errors.Is(err, errStopWalk) {
			yield(Entry{}, err)
		}
	}
}

// Collect drains Walk into a slice, stopping at the first error.
func (w *Walker) Collect(ctx context.Context, root string) ([]Entry, error) {
	var entries []Entry
	for e, err := range w.Walk(ctx, root) {
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

type traversal struct {
	ctx        context.Context
	root       string
	classifier Classifier
	visited    map[string]struct{}
	yield      func(Entry, error) bool
}

func (t *traversal) emit(e Entry) error {
	if !t.yield(e, nil) {
		return errStopWalk
	}
	return nil
}

func (t *traversal) dir(dirPath, rel string) error {
	if err := t.ctx.Err(); err != nil {
		return err
	}
	display := rel
	if display == "" {
		display = "."
	}

	canon, err := filepath.EvalSymlinks(dirPath)
	if err != nil {
		return traversalError(display, err)
	}
	if _, ok := t.visited[canon]; ok {
		return nil
	}
	t.visited[canon] = struct{}{}

	listing, err := os.ReadDir(dirPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && rel != "" {
			return newError(ErrPermissionOrRace, display, err)
		}
		return newError(ErrAccessDenied, display, err)
	}

	var dirs, files []child
	for _, de := range listing {
		name := de.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		c := child{name: name, path: filepath.Join(dirPath, name), rel: joinRel(rel, name)}
		info, err := os.Stat(c.path)
		if err != nil {
			// A dangling symlink is reported as a file with its own metadata.
			linfo, lerr := os.Lstat(c.path)
			if lerr != nil || linfo.Mode()&os.ModeSymlink == 0 {
				return traversalError(c.rel, err)
			}
			info = linfo
		}
		c.info = info
		if info.IsDir() {
			dirs = append(dirs, c)
		} else {
			files = append(files, c)
		}
	}
	sortChildren(dirs)
	sortChildren(files)

	for _, d := range dirs {
		if t.classifier.IsDevelopmentWorkspace(d.path) {
			e := newEntry(d)
			e.IsDevelopment = true
			if err := t.emit(e); err != nil {
				return err
			}
			continue
		}
		if err := t.dir(d.path, d.rel); err != nil {
			return err
		}
		if err := t.emit(newEntry(d)); err != nil {
			return err
		}
	}
	for _, f := range files {
		if err := t.emit(newEntry(f)); err != nil {
			return err
		}
	}
	return nil
}

func newEntry(c child) Entry {
	e := Entry{
		RelativePath: c.rel,
		AbsolutePath: c.path,
		IsDirectory:  c.info.IsDir(),
		ModifiedAt:   c.info.ModTime().UTC(),
	}
	if !e.IsDirectory {
		e.SizeBytes = max(c.info.Size(), 0)
	}
	return e
}

func joinRel(rel, name string) string {
	if rel == "" {
		return name
	}
	return rel + "/" + name
}

func sortChildren(cs []child) {
	sort.SliceStable(cs, func(i, j int) bool {
		a, b := strings.ToLower(cs[i].name), strings.ToLower(cs[j].name)
		if a != b {
			return a < b
		}
		return cs[i].name < cs[j].name
	})
}
