package insight

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHTMLBackend(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "index.html", `<!doctype html>
<html><head>
<title>  Team   Handbook </title>
<meta name="Keywords" content="onboarding, policies , handbook">
<meta name="description" content="How we work.">
</head><body>
<h1>Welcome</h1><h2>Policies</h2><h4>Ignored</h4><h3>Tools</h3>
</body></html>`)

	in, err := HTMLBackend{}.Extract(context.Background(), p)
	require.NoError(t, err)
	require.Equal(t, []string{"Team Handbook", "onboarding", "policies", "handbook", "Welcome", "Tools"}, in.Highlights)
	require.Equal(t, "How we work.", in.Caption)
}

func TestHTMLBackendEmptyDocument(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "blank.html", "<html><body><p>text only</p></body></html>")
	in, err := HTMLBackend{}.Extract(context.Background(), p)
	require.NoError(t, err)
	require.Nil(t, in)
}
