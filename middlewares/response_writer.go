package middlewares

import (
	"bufio"
	"net"
	"net/http"
	"sync"
)

// responseWriter runs hooks right before the status line goes out, so
// middlewares can still add headers after the handler has started.
type responseWriter struct {
	http.ResponseWriter
	beforeWrite []func()
	status      int
	written     bool
	mu          sync.Mutex
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, status: http.StatusOK}
}

// OnBeforeWrite registers fn to run once, before the first WriteHeader or Write.
func (w *responseWriter) OnBeforeWrite(fn func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.beforeWrite = append(w.beforeWrite, fn)
}

// start marks the response written and returns the pending hooks.
func (w *responseWriter) start(code int) ([]func(), bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.written {
		return nil, false
	}
	w.written = true
	w.status = code
	hooks := w.beforeWrite
	w.beforeWrite = nil
	return hooks, true
}

func (w *responseWriter) WriteHeader(code int) {
	hooks, first := w.start(code)
	if !first {
		return
	}
	for _, fn := range hooks {
		fn()
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *responseWriter) Write(b []byte) (int, error) {
	if hooks, first := w.start(http.StatusOK); first {
		for _, fn := range hooks {
			fn()
		}
		w.ResponseWriter.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

// Flush finishes pending hooks before flushing, since a flush commits headers.
func (w *responseWriter) Flush() {
	if hooks, first := w.start(http.StatusOK); first {
		for _, fn := range hooks {
			fn()
		}
		w.ResponseWriter.WriteHeader(http.StatusOK)
	}
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (w *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if h, ok := w.ResponseWriter.(http.Hijacker); ok {
		return h.Hijack()
	}
	return nil, nil, http.ErrNotSupported
}

// Written reports whether the status line has been sent.
func (w *responseWriter) Written() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.written
}

// Commit runs pending hooks without writing. Used when the handler
// returned without writing anything; net/http then sends 200 itself.
func (w *responseWriter) Commit() {
	hooks, first := w.start(http.StatusOK)
	if !first {
		return
	}
	for _, fn := range hooks {
		fn()
	}
}

func (w *responseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
