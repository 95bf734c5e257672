package ui

import (
	"encoding/json"
	"html/template"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhamidi/wat/workspace"
)

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ok.wat"), []byte("(module)"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.wat"), []byte("(module (export))"), 0o644))

	ws := workspace.New(dir)
	require.NoError(t, ws.ScanAll())

	s, err := NewServer(ws)
	require.NoError(t, err)
	return s, dir
}

func TestIndex(t *testing.T) {
	s, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `<form method="post" action="/parse">`)
	assert.Contains(t, rec.Body.String(), `<option value="newline" selected>`)
}

func TestParseForm(t *testing.T) {
	s, _ := newTestServer(t)
	form := url.Values{"source": {"(module (global))"}, "implicit_close": {"always"}}
	req := httptest.NewRequest(http.MethodPost, "/parse", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "1 error")
	assert.Contains(t, body, "expected global type")
	assert.Contains(t, body, "MODULE_FIELD_GLOBAL")
	assert.Contains(t, body, `<option value="always" selected>`)
}

func TestParseJSON(t *testing.T) {
	s, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/parse", strings.NewReader(`{"source": "(module (export))"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Tree struct {
			Kind string `json:"kind"`
		} `json:"tree"`
		Diagnostics struct {
			Errors []struct {
				Code string `json:"code"`
			} `json:"errors"`
		} `json:"diagnostics"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ROOT", body.Tree.Kind)
	require.Len(t, body.Diagnostics.Errors, 2)
	assert.Equal(t, "syntax/export-name", body.Diagnostics.Errors[0].Code)
}

func TestParseInvalidPolicy(t *testing.T) {
	s, _ := newTestServer(t)
	form := url.Values{"source": {"(module)"}, "implicit_close": {"sometimes"}}
	req := httptest.NewRequest(http.MethodPost, "/parse", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFiles(t *testing.T) {
	s, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/files", nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var entries []FileEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	assert.Equal(t, []FileEntry{
		{Path: "bad.wat", Errors: 2},
		{Path: "ok.wat", Errors: 0},
	}, entries)

	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/files", nil))
	assert.Contains(t, rec.Body.String(), `<a href="/files/bad.wat">bad.wat</a>`)
}

func TestFile(t *testing.T) {
	s, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/files/bad.wat", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<h1>bad.wat</h1>")
	assert.Contains(t, rec.Body.String(), "expected export name")

	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/files/missing.wat", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStatic(t *testing.T) {
	s, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/style.css", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), ".kind")
}

func TestNoWorkspace(t *testing.T) {
	s, err := NewServer(nil)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/files", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No source files.")
}

func TestEmbeddedPartials(t *testing.T) {
	for _, name := range []string{"templates/_layout.html", "templates/_tree.html"} {
		data, err := fs.ReadFile(embeddedFS, name)
		require.NoError(t, err, name)
		assert.Contains(t, string(data), "{{define")
	}

	tmpl, err := template.New("").Funcs(template.FuncMap{
		"add":      func(a, b int) int { return a + b },
		"policies": func() []string { return nil },
		"plural":   func(n int, word string) string { return word },
	}).ParseFS(mustSub(embeddedFS, "templates"), "*.html")
	require.NoError(t, err)
	assert.NotNil(t, tmpl.Lookup("header"))
	assert.NotNil(t, tmpl.Lookup("tree"))
}

func TestRenderError(t *testing.T) {
	s, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	s.render(rec, "missing.html", nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "template error")
	assert.NotContains(t, rec.Header().Get("Content-Type"), "text/html")
}
