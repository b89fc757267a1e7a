// Package testutil provides HTTP test servers that stream chunked responses.
package testutil

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

// Request is a request received by a ChunkServer.
type Request struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
}

// ChunkServer writes a fixed sequence of chunks, flushing after each one.
type ChunkServer struct {
	*httptest.Server

	Status int           // response status; 200 when zero
	Delay  time.Duration // pause between chunks

	mu       sync.Mutex
	chunks   []string
	requests []Request
}

// NewChunkServer starts a server replying with chunks and closes it when t ends.
func NewChunkServer(t testing.TB, chunks ...string) *ChunkServer {
	t.Helper()
	s := &ChunkServer{chunks: chunks}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

func (s *ChunkServer) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	s.mu.Lock()
	s.requests = append(s.requests, Request{
		Method: r.Method,
		Path:   r.URL.Path,
		Header: r.Header.Clone(),
		Body:   body,
	})
	chunks := s.chunks
	status := s.Status
	delay := s.Delay
	s.mu.Unlock()

	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.WriteHeader(status)
	flusher, _ := w.(http.Flusher)

	for i, chunk := range chunks {
		if i > 0 && delay > 0 {
			select {
			case <-r.Context().Done():
				return
			case <-time.After(delay):
			}
		}
		if _, err := io.WriteString(w, chunk); err != nil {
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
	}
}

// Requests returns the requests received so far.
func (s *ChunkServer) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}
