// Package server provides a thin JSON request adapter over net/http for
// exposing registration operations to local tooling. It is boundary glue:
// request bodies are parsed as JSON, an injected handler produces a JSON
// response, and the reply always carries a permissive CORS header.
package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/pointalign/pointalign/pkg/errors"
	"github.com/pointalign/pointalign/pkg/log"
)

// HandlerFunc processes one decoded JSON request message and returns a value
// to serialise as the response body. Returning nil means "not handled" and
// yields a 404, mirroring the embedded-server convention this adapter
// replaces.
type HandlerFunc func(req *http.Request, msg map[string]any) any

// RequestHandler dispatches GET and POST requests to per-path handler
// functions. Responses are always 200 OK with a permissive CORS header and a
// text/plain content type; malformed JSON bodies are logged and treated as an
// empty message rather than rejected, so sloppy clients still get an answer.
type RequestHandler struct {
	routes map[string]HandlerFunc
}

// NewRequestHandler builds a handler serving the given path→function table.
func NewRequestHandler(routes map[string]HandlerFunc) *RequestHandler {
	return &RequestHandler{routes: routes}
}

func (h *RequestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	fn, ok := h.routes[r.URL.Path]
	if !ok {
		http.NotFound(w, r)
		return
	}

	slog.Debug("request",
		"path", r.URL.Path,
		"method", r.Method,
		"content_length", r.ContentLength,
	)

	msg := h.readInputMessage(r)

	var out any
	err := errors.SafeExecute("server.HandlerFunc", func() error {
		out = fn(r, msg)
		return nil
	})
	if err != nil {
		slog.Error("handler panicked", log.ErrAttr(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	if out == nil {
		http.NotFound(w, r)
		return
	}

	answer, err := json.Marshal(out)
	if err != nil {
		slog.Error("response serialisation failed", log.ErrAttr(errors.WithStack(err)))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(answer)
}

// readInputMessage decodes the request body as a JSON object. Empty bodies
// and parse failures both produce an empty message; the failure is logged,
// never surfaced to the client.
func (h *RequestHandler) readInputMessage(r *http.Request) map[string]any {
	msg := map[string]any{}
	if r.Body == nil {
		return msg
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		slog.Warn("reading request body failed", log.ErrAttr(err))
		return msg
	}
	if len(body) == 0 {
		return msg
	}
	if err := json.Unmarshal(body, &msg); err != nil {
		slog.Warn("received unknown message",
			"body", string(body),
			log.ErrAttr(err),
		)
		return map[string]any{}
	}
	return msg
}
