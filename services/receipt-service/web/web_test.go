package web

import (
	"bytes"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShell_Render(t *testing.T) {
	shell, err := NewShell()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, shell.Render(&buf, "/forgot-password", false))
	html := buf.String()
	assert.Contains(t, html, "<title>BillForge · Forgot password</title>")
	assert.Contains(t, html, `data-page="forgot-password"`)
	assert.NotContains(t, html, `href="/history"`)

	buf.Reset()
	require.NoError(t, shell.Render(&buf, "/", true))
	assert.Contains(t, buf.String(), `data-page="sale"`)
	assert.Contains(t, buf.String(), `href="/history"`)
}

func TestStatic(t *testing.T) {
	_, err := fs.Stat(Static(), "app.js")
	assert.NoError(t, err)
}
