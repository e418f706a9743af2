package main

import (
	"context"
	"io"
	"log"
	"os"

	"github.com/minicc/minic/server"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
)

// stdinStdout wraps stdin and stdout into a single ReadWriteCloser.
type stdinStdout struct {
	io.Reader
	io.Writer
}

func (s stdinStdout) Close() error {
	return nil
}

func main() {
	// Redirect logs to file to avoid corrupting the LSP protocol stream on stdout.
	logFile, err := os.OpenFile("/tmp/minic-lsp.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err == nil {
		log.SetOutput(logFile)

		defer func() {
			if err := logFile.Close(); err != nil {
				log.Printf("Failed to close log file: %v", err)
			}
		}()
	}

	log.SetFlags(log.Lshortfile | log.Ldate | log.Ltime)

	rwc := stdinStdout{
		Reader: os.Stdin,
		Writer: os.Stdout,
	}
	conn := jsonrpc2.NewConn(jsonrpc2.NewStream(rwc))

	srv := server.New()

	srv.DiagnosticCallback = func(uri string, diagnostics []protocol.Diagnostic) {
		if err := conn.Notify(context.Background(), "textDocument/publishDiagnostics", &protocol.PublishDiagnosticsParams{
			URI:         protocol.DocumentURI(uri),
			Diagnostics: diagnostics,
		}); err != nil {
			log.Printf("Failed to publish diagnostics: %v", err)
		}
	}

	handler := protocol.ServerHandler(srv, nil)

	ctx := context.Background()
	conn.Go(ctx, handler)

	<-conn.Done()

	if err := conn.Err(); err != nil {
		log.Printf("Connection error: %v", err)
		os.Exit(1)
	}
}
