package main

import (
	"log"
	"os"

	"github.com/tliron/commonlog"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"namespacer/internal/lsp"
)

const lsName = "namespacer" // Name identifier for the language server

var (
	version = "0.1.0"        // Server version
	handler protocol.Handler // Protocol handler instance (wired up below)
)

func main() {
	// Configure debug logging (1 = debug level, nil = default logger)
	commonlog.Configure(1, nil)

	namespacerHandler := lsp.NewNamespacerHandler()

	// Wire up the handler with specific LSP method implementations
	handler = protocol.Handler{
		Initialize:             namespacerHandler.Initialize,
		Initialized:            namespacerHandler.Initialized,
		Shutdown:               namespacerHandler.Shutdown,
		SetTrace:               namespacerHandler.SetTrace,
		TextDocumentDidOpen:    namespacerHandler.TextDocumentDidOpen,
		TextDocumentDidClose:   namespacerHandler.TextDocumentDidClose,
		TextDocumentDidChange:  namespacerHandler.TextDocumentDidChange,
		TextDocumentCodeAction: namespacerHandler.TextDocumentCodeAction,
	}

	s := server.NewServer(&handler, lsName, false)

	log.Println("Starting namespacer LSP server...")

	// Serve over standard input/output, the transport editors expect
	err := s.RunStdio()
	if err != nil {
		log.Println("Error starting namespacer LSP server:", err)
		os.Exit(1)
	}
}
