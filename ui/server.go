package ui

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/dhamidi/wat/format"
	"github.com/dhamidi/wat/logging"
	"github.com/dhamidi/wat/parser"
	"github.com/dhamidi/wat/syntax"
	"github.com/dhamidi/wat/workspace"
)

//go:embed static templates/*.html
var embeddedFS embed.FS

// maxSourceBytes bounds the source accepted by POST /parse.
const maxSourceBytes = 4 << 20

// Server is a syntax tree explorer. Sources are either pasted into a form
// or picked from the files of a workspace.
type Server struct {
	workspace  *workspace.Workspace
	opts       []parser.Option
	staticFS   fs.FS
	templates  *template.Template
	mux        *http.ServeMux
	templateFS fs.FS
	funcMap    template.FuncMap
	log        *log.Logger
}

// NewServer serves the files of ws, which may be nil. opts are the parser
// defaults; a form may override the implicit close policy.
func NewServer(ws *workspace.Workspace, opts ...parser.Option) (*Server, error) {
	staticFS := overlayFS("ui/static", mustSub(embeddedFS, "static"))
	templateFS := overlayFS("ui/templates", mustSub(embeddedFS, "templates"))

	funcMap := template.FuncMap{
		"add": func(a, b int) int {
			return a + b
		},
		"policies": func() []string {
			return []string{
				parser.CloseOnNewline.String(),
				parser.CloseAlways.String(),
				parser.CloseNever.String(),
			}
		},
		"plural": func(n int, word string) string {
			if n == 1 {
				return fmt.Sprintf("%d %s", n, word)
			}
			return fmt.Sprintf("%d %ss", n, word)
		},
	}

	tmpl, err := template.New("").Funcs(funcMap).ParseFS(templateFS, "*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	s := &Server{
		workspace:  ws,
		opts:       opts,
		staticFS:   staticFS,
		templates:  tmpl,
		mux:        http.NewServeMux(),
		templateFS: templateFS,
		funcMap:    funcMap,
		log:        logging.Default(),
	}

	s.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))
	s.mux.HandleFunc("POST /parse", s.handleParse)
	s.mux.HandleFunc("GET /files", s.handleFiles)
	s.mux.HandleFunc("GET /files/{path...}", s.handleFile)
	s.mux.HandleFunc("GET /{$}", s.handleIndex)

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// render reparses the templates on every request so that files below
// ui/templates take effect without a restart.
func (s *Server) render(w http.ResponseWriter, name string, data any) {
	tmpl, err := template.New("").Funcs(s.funcMap).ParseFS(s.templateFS, "*.html")
	if err != nil {
		http.Error(w, "template error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		s.log.Error("render failed", logging.FieldPath, name, logging.FieldError, err)
		http.Error(w, "template error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}

// TreeNode is the template view of a node or token.
type TreeNode struct {
	Kind     string
	Start    int
	End      int
	Text     string
	IsToken  bool
	IsTrivia bool
	IsError  bool
	Children []*TreeNode
}

// Diagnostic is the template view of a syntax error.
type Diagnostic struct {
	Start   format.Position
	Message string
	Code    string
}

type DocumentView struct {
	Path          string
	Source        string
	ImplicitClose string
	Tree          *TreeNode
	Diagnostics   []Diagnostic
}

func newTreeNode(el syntax.SyntaxElement) *TreeNode {
	r := el.TextRange()
	n := &TreeNode{
		Kind:    el.Kind().String(),
		Start:   r.Start,
		End:     r.End,
		IsError: el.Kind() == syntax.KindError,
	}
	switch el := el.(type) {
	case *syntax.SyntaxToken:
		n.IsToken = true
		n.IsTrivia = el.Kind().IsTrivia()
		n.Text = el.Text()
	case *syntax.SyntaxNode:
		for child := range el.ChildrenWithTokens() {
			n.Children = append(n.Children, newTreeNode(child))
		}
	}
	return n
}

func newDocumentView(doc *format.Document, policy string) DocumentView {
	view := DocumentView{
		Path:          doc.Path,
		Source:        doc.Source,
		ImplicitClose: policy,
		Tree:          newTreeNode(doc.Root),
	}
	for _, err := range doc.Errors {
		view.Diagnostics = append(view.Diagnostics, Diagnostic{
			Start:   doc.Position(err.Range.Start),
			Message: err.Message.String(),
			Code:    err.Code(),
		})
	}
	return view
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, "index.html", DocumentView{ImplicitClose: parser.CloseOnNewline.String()})
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxSourceBytes)

	var req struct {
		Source        string `json:"source"`
		ImplicitClose string `json:"implicit_close"`
	}
	if r.Header.Get("Content-Type") == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid JSON: "+err.Error(), http.StatusBadRequest)
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form data: "+err.Error(), http.StatusBadRequest)
			return
		}
		req.Source = r.FormValue("source")
		req.ImplicitClose = r.FormValue("implicit_close")
	}

	opts := s.opts
	if req.ImplicitClose != "" {
		policy, err := parser.ParseImplicitClose(req.ImplicitClose)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		opts = append(opts[:len(opts):len(opts)], parser.WithImplicitClose(policy))
	}

	doc := format.NewDocument("", req.Source, opts...)
	if wantsJSON(r) {
		s.writeJSON(w, doc)
		return
	}
	s.render(w, "index.html", newDocumentView(doc, req.ImplicitClose))
}

// FileEntry is a row of the file listing.
type FileEntry struct {
	Path   string
	Errors int
}

func (s *Server) handleFiles(w http.ResponseWriter, r *http.Request) {
	var entries []FileEntry
	if s.workspace != nil {
		for _, f := range s.workspace.AllFiles() {
			entries = append(entries, FileEntry{
				Path:   s.relPath(f.Path),
				Errors: len(f.Doc.Errors),
			})
		}
	}

	if wantsJSON(r) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(entries)
		return
	}
	s.render(w, "files.html", entries)
}

func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	if s.workspace == nil {
		http.Error(w, "no workspace", http.StatusNotFound)
		return
	}
	rel := filepath.FromSlash(r.PathValue("path"))
	if !filepath.IsLocal(rel) {
		http.Error(w, "invalid path", http.StatusBadRequest)
		return
	}
	f := s.workspace.GetFile(filepath.Join(s.workspace.RootDir(), rel))
	if f == nil {
		http.Error(w, "file not found", http.StatusNotFound)
		return
	}

	if wantsJSON(r) {
		s.writeJSON(w, f.Doc)
		return
	}
	view := newDocumentView(f.Doc, "")
	view.Path = s.relPath(f.Path)
	s.render(w, "file.html", view)
}

// writeJSON responds with the tree and the diagnostics report of doc.
func (s *Server) writeJSON(w http.ResponseWriter, doc *format.Document) {
	var tree, report bytes.Buffer
	if err := format.NewASTJSONEncoder(&tree).Encode(doc); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if err := format.NewJSONEncoder(&report).Encode(doc); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	body := struct {
		Tree        json.RawMessage `json:"tree"`
		Diagnostics json.RawMessage `json:"diagnostics"`
	}{
		Tree:        tree.Bytes(),
		Diagnostics: report.Bytes(),
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(body)
}

func (s *Server) relPath(path string) string {
	if rel, err := filepath.Rel(s.workspace.RootDir(), path); err == nil {
		return filepath.ToSlash(rel)
	}
	return path
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}

type overlayFSType struct {
	primary   fs.FS
	secondary fs.FS
}

func overlayFS(primaryPath string, secondary fs.FS) fs.FS {
	return &overlayFSType{
		primary:   os.DirFS(primaryPath),
		secondary: secondary,
	}
}

func (o *overlayFSType) Open(name string) (fs.File, error) {
	f, err := o.primary.Open(name)
	if err == nil {
		return f, nil
	}
	return o.secondary.Open(name)
}

func (o *overlayFSType) ReadDir(name string) ([]fs.DirEntry, error) {
	entries := make(map[string]fs.DirEntry)

	if rd, ok := o.secondary.(fs.ReadDirFS); ok {
		if list, err := rd.ReadDir(name); err == nil {
			for _, e := range list {
				entries[e.Name()] = e
			}
		}
	}

	if rd, ok := o.primary.(fs.ReadDirFS); ok {
		if list, err := rd.ReadDir(name); err == nil {
			for _, e := range list {
				entries[e.Name()] = e
			}
		}
	}

	result := make([]fs.DirEntry, 0, len(entries))
	for _, e := range entries {
		result = append(result, e)
	}
	return result, nil
}
