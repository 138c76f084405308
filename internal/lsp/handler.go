package lsp

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"namespacer/internal/analysis"
	"namespacer/internal/parser"
	"namespacer/internal/refactor"
	"namespacer/internal/settings"
	"namespacer/internal/syntax"
	"namespacer/internal/version"
)

// document is the per-URI state kept between a publish and a later
// code-action request.
type document struct {
	content     string
	mapper      *Mapper
	diagnostics []analysis.Diagnostic
}

// NamespacerHandler implements the LSP server handlers for the
// namespaced-storage analyzer.
type NamespacerHandler struct {
	mu        sync.RWMutex
	documents map[string]*document
	roots     []string
	settings  *settings.Store
	versions  *version.Resolver
}

// NewNamespacerHandler creates and returns a new handler instance.
func NewNamespacerHandler() *NamespacerHandler {
	return &NamespacerHandler{
		documents: make(map[string]*document),
		settings:  settings.NewStore(),
		versions:  version.NewResolver(),
	}
}

// Initialize responds to the LSP client's initialize request and
// advertises the server's capabilities.
func (h *NamespacerHandler) Initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	log.Println("LSP Initialize called")

	h.mu.Lock()
	for _, folder := range params.WorkspaceFolders {
		if path, err := uriToPath(folder.URI); err == nil {
			h.roots = append(h.roots, path)
		}
	}
	if len(h.roots) == 0 && params.RootURI != nil {
		if path, err := uriToPath(*params.RootURI); err == nil {
			h.roots = append(h.roots, path)
		}
	}
	h.mu.Unlock()

	return &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: &protocol.TextDocumentSyncOptions{
				OpenClose: ptrBool(true),
				Change:    ptrSyncKind(protocol.TextDocumentSyncKindFull),
			},
			CodeActionProvider: true,
		},
	}, nil
}

// Initialized is called after the client completes initialization.
func (h *NamespacerHandler) Initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	log.Println("Namespacer LSP Initialized")
	return nil
}

// Shutdown handles the LSP shutdown request.
func (h *NamespacerHandler) Shutdown(ctx *glsp.Context) error {
	log.Println("Namespacer LSP Shutdown")
	return nil
}

// SetTrace handles trace level changes (accepted, unused).
func (h *NamespacerHandler) SetTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	return nil
}

// TextDocumentDidOpen handles file open notifications from the editor.
func (h *NamespacerHandler) TextDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	log.Printf("Opened file: %s\n", params.TextDocument.URI)
	return h.analyzeAndPublish(ctx, params.TextDocument.URI, params.TextDocument.Text)
}

// TextDocumentDidChange handles file change notifications. The server
// requests full sync, so the last whole-document change wins.
func (h *NamespacerHandler) TextDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	content, ok := fullContent(params.ContentChanges)
	if !ok {
		return nil
	}
	return h.analyzeAndPublish(ctx, params.TextDocument.URI, content)
}

// TextDocumentDidClose handles file close notifications from the editor.
func (h *NamespacerHandler) TextDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	log.Printf("Closed file: %s\n", params.TextDocument.URI)

	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.documents, params.TextDocument.URI)

	return nil
}

// TextDocumentCodeAction returns quick fixes for the diagnostics
// overlapping the requested range.
func (h *NamespacerHandler) TextDocumentCodeAction(ctx *glsp.Context, params *protocol.CodeActionParams) (any, error) {
	h.mu.RLock()
	doc, ok := h.documents[params.TextDocument.URI]
	h.mu.RUnlock()
	if !ok {
		return nil, nil
	}

	requested := syntax.Span{
		Start: doc.mapper.OffsetFor(params.Range.Start),
		End:   doc.mapper.OffsetFor(params.Range.End),
	}

	var matched []analysis.Diagnostic
	for _, d := range doc.diagnostics {
		if touches(d.Span, requested) {
			matched = append(matched, d)
		}
	}
	if len(matched) == 0 {
		return nil, nil
	}

	fixes := refactor.BuildQuickFixes(matched, doc.content)

	kind := protocol.CodeActionKindQuickFix
	actions := make([]protocol.CodeAction, 0, len(fixes))
	for _, fix := range fixes {
		edits := make([]protocol.TextEdit, 0, len(fix.Edits))
		for _, e := range fix.Edits {
			edits = append(edits, protocol.TextEdit{
				Range:   doc.mapper.RangeFor(e.Span),
				NewText: e.NewText,
			})
		}
		converted := ConvertDiagnostics(doc.mapper, []analysis.Diagnostic{fix.Diagnostic})
		actions = append(actions, protocol.CodeAction{
			Title:       fix.Title,
			Kind:        &kind,
			Diagnostics: converted,
			Edit: &protocol.WorkspaceEdit{
				Changes: map[protocol.DocumentUri][]protocol.TextEdit{
					params.TextDocument.URI: edits,
				},
			},
		})
	}
	return actions, nil
}

func (h *NamespacerHandler) analyzeAndPublish(ctx *glsp.Context, uri string, content string) error {
	path, err := uriToPath(uri)
	if err != nil {
		return fmt.Errorf("failed to convert URI %s: %w", uri, err)
	}

	h.mu.RLock()
	roots := h.roots
	h.mu.RUnlock()

	root := rootFor(path, roots)
	cfg := h.settings.For(context.Background(), root)

	tree := parser.Parse(version.Latest(), content)
	pragma := version.Pragma(tree)
	resolved := h.versions.Infer(context.Background(), path, roots, cfg.SolidityVersion, pragma)
	if resolved != version.Latest() {
		tree = parser.Parse(resolved, content)
	}

	diags := analysis.Analyze(tree, cfg.Prefix)
	mapper := NewMapper(content)

	h.mu.Lock()
	h.documents[uri] = &document{content: content, mapper: mapper, diagnostics: diags}
	h.mu.Unlock()

	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: ConvertDiagnostics(mapper, diags),
	})
	return nil
}

// fullContent extracts the final whole-document text from a change set.
func fullContent(changes []any) (string, bool) {
	for i := len(changes) - 1; i >= 0; i-- {
		switch change := changes[i].(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			return change.Text, true
		case *protocol.TextDocumentContentChangeEventWhole:
			return change.Text, true
		case protocol.TextDocumentContentChangeEvent:
			if change.Range == nil {
				return change.Text, true
			}
		case *protocol.TextDocumentContentChangeEvent:
			if change.Range == nil {
				return change.Text, true
			}
		}
	}
	return "", false
}

// rootFor picks the workspace root containing the path, preferring the
// longest match; outside any root the document's directory stands in.
func rootFor(path string, roots []string) string {
	best := ""
	for _, root := range roots {
		cleaned := filepath.Clean(root)
		if strings.HasPrefix(path, cleaned+string(filepath.Separator)) && len(cleaned) > len(best) {
			best = cleaned
		}
	}
	if best == "" {
		return filepath.Dir(path)
	}
	return best
}

// touches reports span intersection, counting shared boundaries so a
// cursor sitting at a diagnostic's edge still gets its fix.
func touches(a, b syntax.Span) bool {
	return a.Start <= b.End && b.Start <= a.End
}

// Convert URI to platform-local file path.
func uriToPath(rawURI string) (string, error) {
	u, err := url.Parse(rawURI)
	if err != nil {
		return "", fmt.Errorf("invalid URI %s: %w", rawURI, err)
	}

	path := u.Path

	// On Windows, remove leading slash (e.g., /C:/...) -> C:/...
	if runtime.GOOS == "windows" && strings.HasPrefix(path, "/") && len(path) > 3 && path[2] == ':' {
		path = path[1:]
	}

	return filepath.FromSlash(path), nil
}

func ptrBool(b bool) *bool {
	return &b
}

func ptrSyncKind(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &k
}
