package workspace

import (
	"context"
	"net/url"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	_ "github.com/tliron/commonlog/simple"

	"github.com/dhamidi/wat/parser"
)

const lsName = "wat"

type LSPServer struct {
	workspace *Workspace
	handler   protocol.Handler
	server    *server.Server
	version   string
	opts      []parser.Option
	log       commonlog.Logger

	mu     sync.Mutex
	notify glsp.NotifyFunc
	cancel context.CancelFunc
}

func NewLSPServer(version string, opts ...parser.Option) *LSPServer {
	ls := &LSPServer{
		version: version,
		opts:    opts,
		log:     commonlog.GetLogger(lsName),
	}

	ls.handler = protocol.Handler{
		Initialize:                 ls.initialize,
		Initialized:                ls.initialized,
		Shutdown:                   ls.shutdown,
		SetTrace:                   ls.setTrace,
		TextDocumentDidOpen:        ls.textDocumentDidOpen,
		TextDocumentDidChange:      ls.textDocumentDidChange,
		TextDocumentDidClose:       ls.textDocumentDidClose,
		TextDocumentDidSave:        ls.textDocumentDidSave,
		TextDocumentFoldingRange:   ls.textDocumentFoldingRange,
		TextDocumentSelectionRange: ls.textDocumentSelectionRange,
		TextDocumentDocumentSymbol: ls.textDocumentDocumentSymbol,
	}

	ls.server = server.NewServer(&ls.handler, lsName, false)

	return ls
}

// ConfigureLogging routes server logs through commonlog. A nil path logs to
// stderr.
func ConfigureLogging(verbosity int, path *string) {
	commonlog.Configure(verbosity, path)
}

func (ls *LSPServer) RunStdio() error {
	return ls.server.RunStdio()
}

func (ls *LSPServer) RunTCP(address string) error {
	return ls.server.RunTCP(address)
}

func (ls *LSPServer) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	rootDir := "."
	if params.RootURI != nil && *params.RootURI != "" {
		if path, err := uriToPath(*params.RootURI); err == nil {
			rootDir = path
		}
	} else if params.RootPath != nil && *params.RootPath != "" {
		rootDir = *params.RootPath
	}

	ls.workspace = New(rootDir, ls.opts...)

	capabilities := ls.handler.CreateServerCapabilities()

	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    syncKindPtr(protocol.TextDocumentSyncKindFull),
		Save: &protocol.SaveOptions{
			IncludeText: boolPtr(true),
		},
	}

	ls.log.Infof("initialize %s", rootDir)

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &ls.version,
		},
	}, nil
}

func (ls *LSPServer) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	ls.mu.Lock()
	ls.notify = ctx.Notify
	ls.mu.Unlock()

	if err := ls.workspace.ScanAll(); err != nil {
		ls.log.Warningf("scan %s: %s", ls.workspace.RootDir(), err)
	}
	for _, f := range ls.workspace.AllFiles() {
		ls.publish(f)
	}

	watcher, err := NewFileWatcher(ls.workspace)
	if err != nil {
		ls.log.Warningf("watch %s: %s", ls.workspace.RootDir(), err)
		return nil
	}
	watcher.OnChange = func(path string, f *File) {
		if f == nil {
			ls.clear(path)
			return
		}
		ls.publish(f)
	}

	watchCtx, cancel := context.WithCancel(context.Background())
	ls.mu.Lock()
	ls.cancel = cancel
	ls.mu.Unlock()
	go watcher.Run(watchCtx)

	return nil
}

func (ls *LSPServer) shutdown(ctx *glsp.Context) error {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	if ls.cancel != nil {
		ls.cancel()
		ls.cancel = nil
	}
	protocol.SetTraceValue(protocol.TraceValueOff)
	return nil
}

func (ls *LSPServer) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (ls *LSPServer) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	f := ls.workspace.UpdateFile(path, params.TextDocument.Text, params.TextDocument.Version)
	ls.publishTo(ctx.Notify, params.TextDocument.URI, f)
	return nil
}

func (ls *LSPServer) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	if len(params.ContentChanges) > 0 {
		change := params.ContentChanges[len(params.ContentChanges)-1]
		if textChange, ok := change.(protocol.TextDocumentContentChangeEventWhole); ok {
			f := ls.workspace.UpdateFile(path, textChange.Text, params.TextDocument.Version)
			ls.publishTo(ctx.Notify, params.TextDocument.URI, f)
		}
	}
	return nil
}

func (ls *LSPServer) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	if f := ls.workspace.CloseFile(path); f != nil {
		ls.publishTo(ctx.Notify, params.TextDocument.URI, f)
		return nil
	}
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         params.TextDocument.URI,
		Diagnostics: []protocol.Diagnostic{},
	})
	return nil
}

func (ls *LSPServer) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	if params.Text == nil {
		return nil
	}
	version := int32(0)
	if f := ls.workspace.GetFile(path); f != nil {
		version = f.Version
	}
	f := ls.workspace.UpdateFile(path, *params.Text, version)
	ls.publishTo(ctx.Notify, params.TextDocument.URI, f)
	return nil
}

func (ls *LSPServer) textDocumentFoldingRange(ctx *glsp.Context, params *protocol.FoldingRangeParams) ([]protocol.FoldingRange, error) {
	f := ls.file(params.TextDocument.URI)
	if f == nil {
		return nil, nil
	}
	return FoldingRanges(f.Doc), nil
}

func (ls *LSPServer) textDocumentSelectionRange(ctx *glsp.Context, params *protocol.SelectionRangeParams) ([]protocol.SelectionRange, error) {
	f := ls.file(params.TextDocument.URI)
	if f == nil {
		return nil, nil
	}
	return SelectionRanges(f.Doc, params.Positions), nil
}

func (ls *LSPServer) textDocumentDocumentSymbol(ctx *glsp.Context, params *protocol.DocumentSymbolParams) (any, error) {
	f := ls.file(params.TextDocument.URI)
	if f == nil {
		return nil, nil
	}
	return DocumentSymbols(f.Doc), nil
}

func (ls *LSPServer) file(uri protocol.DocumentUri) *File {
	path, err := uriToPath(uri)
	if err != nil || ls.workspace == nil {
		return nil
	}
	return ls.workspace.GetFile(path)
}

// publish sends diagnostics for a file that changed outside of the editor.
func (ls *LSPServer) publish(f *File) {
	ls.mu.Lock()
	notify := ls.notify
	ls.mu.Unlock()
	if notify == nil {
		return
	}
	ls.publishTo(notify, pathToURI(f.Path), f)
}

func (ls *LSPServer) clear(path string) {
	ls.mu.Lock()
	notify := ls.notify
	ls.mu.Unlock()
	if notify == nil {
		return
	}
	notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         pathToURI(path),
		Diagnostics: []protocol.Diagnostic{},
	})
}

func (ls *LSPServer) publishTo(notify glsp.NotifyFunc, uri protocol.DocumentUri, f *File) {
	params := protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: Diagnostics(f.Doc),
	}
	if f.Open {
		version := protocol.UInteger(f.Version)
		params.Version = &version
	}
	ls.log.Debugf("publish %d diagnostics for %s", len(params.Diagnostics), uri)
	notify(protocol.ServerTextDocumentPublishDiagnostics, params)
}

func uriToPath(uri string) (string, error) {
	if strings.HasPrefix(uri, "file://") {
		parsed, err := url.Parse(uri)
		if err != nil {
			return "", err
		}
		return filepath.Clean(parsed.Path), nil
	}
	return uri, nil
}

func pathToURI(path string) protocol.DocumentUri {
	if strings.Contains(path, "://") {
		return path
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String()
}

func boolPtr(b bool) *bool {
	return &b
}

func syncKindPtr(kind protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &kind
}
