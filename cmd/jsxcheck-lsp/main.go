package main

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	"github.com/pipe01/jsxcheck/errors"
	"github.com/pipe01/jsxcheck/internal/check"
	"github.com/pipe01/jsxcheck/internal/config"
	"github.com/pipe01/jsxcheck/internal/report"
	"github.com/pipe01/jsxcheck/internal/workspace"
	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	_ "github.com/tliron/commonlog/simple"
)

const lsName = "jsxcheck"

var version string = "0.0.1"
var handler protocol.Handler

var log = commonlog.GetLogger("jsxcheck.lsp")

var (
	documentsMu sync.Mutex
	documents   = map[string]string{}

	reportOpts report.Options
)

func main() {
	wd, _ := os.Getwd()

	cfg, err := config.Load(wd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %s\n", err)
		os.Exit(1)
	}

	commonlog.Configure(1+cfg.Verbosity, nil)

	reportOpts = report.Options{
		Track: cfg.Track,
	}

	protocol.SetTraceValue(protocol.TraceValueMessage)

	handler = protocol.Handler{
		Initialize:  initialize,
		Initialized: initialized,
		Shutdown:    shutdown,
		SetTrace:    setTrace,
		TextDocumentDidOpen: func(context *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
			documentsMu.Lock()
			documents[params.TextDocument.URI] = params.TextDocument.Text
			documentsMu.Unlock()

			return handleDocument(context, params.TextDocument.URI)
		},
		TextDocumentDidChange: func(context *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
			documentsMu.Lock()
			content, ok := documents[params.TextDocument.URI]
			if !ok {
				documentsMu.Unlock()
				return nil
			}

			for _, change := range params.ContentChanges {
				switch change := change.(type) {
				case protocol.TextDocumentContentChangeEventWhole:
					content = change.Text

				case protocol.TextDocumentContentChangeEvent:
					startIndex, endIndex := change.Range.IndexesIn(content)
					content = content[:startIndex] + change.Text + content[endIndex:]
				}
			}

			documents[params.TextDocument.URI] = content
			documentsMu.Unlock()

			return handleDocument(context, params.TextDocument.URI)
		},
		TextDocumentDidClose: func(context *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
			documentsMu.Lock()
			delete(documents, params.TextDocument.URI)
			documentsMu.Unlock()

			context.Notify(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
				URI:         params.TextDocument.URI,
				Diagnostics: []protocol.Diagnostic{},
			})
			return nil
		},
	}

	server := server.NewServer(&handler, lsName, false)

	server.RunStdio()
}

func handleDocument(context *glsp.Context, docURI string) error {
	url, err := url.Parse(docURI)
	if err != nil {
		return fmt.Errorf("parse document uri: %w", err)
	}
	if url.Scheme != "file" {
		return fmt.Errorf("invalid document uri scheme %q", url.Scheme)
	}

	documentsMu.Lock()
	contents, ok := documents[docURI]
	documentsMu.Unlock()
	if !ok {
		return nil
	}

	fileName := filepath.Base(url.Path)
	ws := workspace.New(filepath.Dir(url.Path), check.Options{Functions: true})

	diag := []protocol.Diagnostic{}

	res, err := ws.LoadWithContents(fileName, []byte(contents))
	if err != nil {
		log.Warningf("failed to check %q: %s", docURI, err)

		if serr, ok := errors.Situate(err); ok {
			diag = append(diag, protocol.Diagnostic{
				Range: protocol.Range{
					Start: pos(contents, serr.At()),
					End:   pos(contents, serr.At()),
				},
				Severity: ptr(protocol.DiagnosticSeverityError),
				Source:   ptr(lsName),
				Message:  serr.Unwrap().Error(),
			})
		} else {
			diag = append(diag, protocol.Diagnostic{
				Severity: ptr(protocol.DiagnosticSeverityError),
				Source:   ptr(lsName),
				Message:  err.Error(),
			})
		}
	} else {
		diag = toProtocol(res, contents, reportOpts)
	}

	context.Notify(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         docURI,
		Diagnostics: diag,
	})

	return nil
}

func initialize(context *glsp.Context, params *protocol.InitializeParams) (any, error) {
	capabilities := handler.CreateServerCapabilities()

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &version,
		},
	}, nil
}

func initialized(context *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

func shutdown(context *glsp.Context) error {
	protocol.SetTraceValue(protocol.TraceValueOff)
	return nil
}

func setTrace(context *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}
