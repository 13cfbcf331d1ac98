// Package lsp implements a Language Server Protocol server for gosense.
// It serves import path and identifier completion for open Go documents.
package lsp

import (
	"log/slog"
	"os"
	"sync"

	"github.com/tliron/glsp"
	glspserver "github.com/tliron/glsp/server"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/gosense/gosense/internal/completion"
	"github.com/gosense/gosense/internal/logging"
)

const serverName = "gosense-lsp"

// Version is reported in the initialize result.
const Version = "0.1.0"

// TriggerCharacters open completion inside import paths.
var TriggerCharacters = []string{`"`, "/", "."}

// Server is the gosense language server.
type Server struct {
	handler protocol.Handler
	glspSrv *glspserver.Server
	docs    *DocumentStore
	engine  *completion.Engine
	logger  *slog.Logger

	rootMu   sync.RWMutex
	rootPath string

	// exitFn is called on the LSP exit notification. Defaults to os.Exit.
	exitFn func(int)
}

// Option configures the LSP server.
type Option func(*Server)

// WithLogger sets the server's logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// New creates a language server completing through engine.
func New(engine *completion.Engine, opts ...Option) *Server {
	s := &Server{
		docs:   NewDocumentStore(),
		engine: engine,
		logger: logging.Discard(),
		exitFn: os.Exit,
	}
	for _, o := range opts {
		o(s)
	}

	s.handler = protocol.Handler{
		Initialize:  s.initialize,
		Initialized: s.initialized,
		Shutdown:    s.shutdown,
		Exit:        s.exit,
		SetTrace:    s.setTrace,

		TextDocumentDidOpen:   s.textDocumentDidOpen,
		TextDocumentDidChange: s.textDocumentDidChange,
		TextDocumentDidClose:  s.textDocumentDidClose,

		TextDocumentCompletion: s.textDocumentCompletion,
	}

	s.glspSrv = glspserver.NewServer(&s.handler, serverName, false)
	return s
}

// RunStdio starts the server using stdio transport.
func (s *Server) RunStdio() error {
	return s.glspSrv.RunStdio()
}

// RunTCP starts the server listening on the given address.
func (s *Server) RunTCP(addr string) error {
	return s.glspSrv.RunTCP(addr)
}

// initialize handles the LSP initialize request.
func (s *Server) initialize(_ *glsp.Context, params *protocol.InitializeParams) (any, error) {
	s.rootMu.Lock()
	if params.RootURI != nil {
		s.rootPath = uriToPath(*params.RootURI)
	} else if params.RootPath != nil {
		s.rootPath = *params.RootPath
	}
	s.rootMu.Unlock()

	capabilities := s.handler.CreateServerCapabilities()

	syncKind := protocol.TextDocumentSyncKindFull
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    &syncKind,
	}
	capabilities.CompletionProvider = &protocol.CompletionOptions{
		TriggerCharacters: TriggerCharacters,
	}

	version := Version
	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    serverName,
			Version: &version,
		},
	}, nil
}

func (s *Server) initialized(_ *glsp.Context, _ *protocol.InitializedParams) error {
	s.rootMu.RLock()
	root := s.rootPath
	s.rootMu.RUnlock()
	s.logger.Info("lsp initialized", "root", root)
	return nil
}

func (s *Server) shutdown(_ *glsp.Context) error {
	return nil
}

// exit handles the LSP exit notification by terminating the process.
func (s *Server) exit(_ *glsp.Context) error {
	s.exitFn(0)
	return nil
}

// setTrace handles the $/setTrace notification (required by some clients).
func (s *Server) setTrace(_ *glsp.Context, _ *protocol.SetTraceParams) error {
	return nil
}

func (s *Server) textDocumentDidOpen(_ *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	s.docs.Open(params.TextDocument.URI, params.TextDocument.Version, params.TextDocument.Text)
	s.logger.Debug("document opened", "uri", params.TextDocument.URI, "open", s.docs.Len())
	return nil
}

func (s *Server) textDocumentDidChange(_ *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	for _, change := range params.ContentChanges {
		switch c := change.(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			s.docs.Change(params.TextDocument.URI, params.TextDocument.Version, c.Text)
		case protocol.TextDocumentContentChangeEvent:
			// Full sync was negotiated; a ranged edit means a client bug.
			s.logger.Warn("ignoring incremental change", "uri", params.TextDocument.URI)
		}
	}
	return nil
}

func (s *Server) textDocumentDidClose(_ *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	s.docs.Close(params.TextDocument.URI)
	s.logger.Debug("document closed", "uri", params.TextDocument.URI, "open", s.docs.Len())
	return nil
}

func boolPtr(b bool) *bool {
	return &b
}
