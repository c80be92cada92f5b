package insight

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"
)

const (
	defaultScriptTimeout = 2 * time.Second
	scriptRegistryMax    = 4096
	scriptHighlightLimit = 40
)

// ErrScriptTimeout is returned when a script exceeds its time budget.
var ErrScriptTimeout = errors.New("script timeout")

// ScriptBackend runs a user Lua script chosen by file extension. The script
// sees the globals path, name, ext and size and returns a table
// { highlights = {...}, caption = "..." }. Only the base, string, table and
// math libraries are loaded.
type ScriptBackend struct {
	// Scripts maps a lower-case extension (".log") to Lua source.
	Scripts map[string]string
	Timeout time.Duration
}

// LoadScripts reads one Lua file per extension.
func LoadScripts(files map[string]string) (map[string]string, error) {
	out := make(map[string]string, len(files))
	for ext, file := range files {
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("script for %s: %w", ext, err)
		}
		out[normalizeExt(ext)] = string(b)
	}
	return out, nil
}

// Extensions lists the extensions the backend has scripts for.
func (b ScriptBackend) Extensions() []string {
	out := make([]string, 0, len(b.Scripts))
	for ext := range b.Scripts {
		out = append(out, normalizeExt(ext))
	}
	return out
}

func (b ScriptBackend) Extract(ctx context.Context, path string) (*Insight, error) {
	ext := strings.ToLower(filepath.Ext(path))
	code, ok := b.Scripts[ext]
	if !ok {
		code, ok = b.Scripts[strings.TrimPrefix(ext, ".")]
	}
	if !ok {
		return nil, nil
	}
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	timeout := b.Timeout
	if timeout <= 0 {
		timeout = defaultScriptTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	L := newScriptState()
	defer L.Close()
	L.SetContext(ctx)
	L.SetGlobal("path", lua.LString(path))
	L.SetGlobal("name", lua.LString(filepath.Base(path)))
	L.SetGlobal("ext", lua.LString(ext))
	L.SetGlobal("size", lua.LNumber(fi.Size()))

	fn, err := L.LoadString(code)
	if err != nil {
		return nil, fmt.Errorf("load script: %w", err)
	}
	L.Push(fn)
	if err := L.PCall(0, 1, nil); err != nil {
		if ctx.Err() != nil {
			return nil, ErrScriptTimeout
		}
		return nil, fmt.Errorf("run script: %w", err)
	}
	ret := L.Get(-1)
	L.Pop(1)
	return scriptResult(ret)
}

func newScriptState() *lua.LState {
	L := lua.NewState(lua.Options{
		SkipOpenLibs:    true,
		RegistrySize:    256,
		RegistryMaxSize: scriptRegistryMax,
	})
	openLib := func(name string, f lua.LGFunction) {
		L.Push(L.NewFunction(f))
		L.Push(lua.LString(name))
		L.Call(1, 0)
	}
	openLib("base", lua.OpenBase)
	openLib("string", lua.OpenString)
	openLib("table", lua.OpenTable)
	openLib("math", lua.OpenMath)
	// base pulls in file loaders; scripts only get what they are passed.
	for _, name := range []string{"dofile", "loadfile", "require", "module"} {
		L.SetGlobal(name, lua.LNil)
	}
	return L
}

// scriptResult converts the returned table. nil means no insight; a bare
// string is taken as the caption.
func scriptResult(v lua.LValue) (*Insight, error) {
	switch x := v.(type) {
	case *lua.LNilType:
		return nil, nil
	case lua.LString:
		if s := collapseSpace(string(x)); s != "" {
			return New(nil, s), nil
		}
		return nil, nil
	case *lua.LTable:
		var highlights []string
		switch hv := x.RawGetString("highlights").(type) {
		case *lua.LTable:
			hv.ForEach(func(_, item lua.LValue) {
				if s, ok := item.(lua.LString); ok {
					highlights = append(highlights, string(s))
				}
			})
		case lua.LString:
			highlights = append(highlights, string(hv))
		}
		caption := ""
		if c, ok := x.RawGetString("caption").(lua.LString); ok {
			caption = collapseSpace(string(c))
		}
		in := New(uniqueFold(highlights, scriptHighlightLimit), caption)
		if in.Empty() {
			return nil, nil
		}
		return in, nil
	default:
		return nil, fmt.Errorf("script returned %s, want table", v.Type())
	}
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
