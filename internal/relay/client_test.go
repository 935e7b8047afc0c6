package relay

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClientProcess(t *testing.T) {
	rendered := []byte("\x89PNG\r\n\x1a\nrendered image")
	var gotBody []byte
	var gotContentType string

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "image/png")
		w.Write(rendered)
	}))
	defer upstream.Close()

	client := NewClient(upstream.URL, 5*time.Second)

	sketch := []byte("sketch bytes")
	got, err := client.Process(context.Background(), sketch)
	if err != nil {
		t.Fatalf("Process error: %v", err)
	}
	if !bytes.Equal(got, rendered) {
		t.Fatalf("expected rendered bytes back, got %q", got)
	}
	if !bytes.Equal(gotBody, sketch) {
		t.Fatalf("expected sketch bytes relayed upstream, got %q", gotBody)
	}
	if gotContentType != "image/png" {
		t.Fatalf("expected image/png content type, got %s", gotContentType)
	}
}

func TestClientProcess_UpstreamError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "render failed", http.StatusInternalServerError)
	}))
	defer upstream.Close()

	client := NewClient(upstream.URL, 5*time.Second)

	if _, err := client.Process(context.Background(), []byte("sketch")); !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}

func TestClientProcess_UpstreamDown(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	upstream.Close() // connection refused from here on

	client := NewClient(upstream.URL, time.Second)

	if _, err := client.Process(context.Background(), []byte("sketch")); !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}
