package provider

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"spendlens/internal/pipeline"
	"spendlens/pkg/config"

	"go.uber.org/zap"
)

func newVisionServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *VisionRecognizer) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	r := NewVisionRecognizer(&config.VisionConfig{
		BaseURL: srv.URL,
		APIKey:  "test-key",
		Timeout: 5 * time.Second,
	}, zap.NewNop())
	return srv, r
}

func TestVisionRecognize(t *testing.T) {
	_, r := newVisionServer(t, func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path != "/images:annotate" {
			t.Errorf("path = %q, want /images:annotate", req.URL.Path)
		}
		if req.URL.Query().Get("key") != "test-key" {
			t.Errorf("key = %q, want test-key", req.URL.Query().Get("key"))
		}

		var body annotateRequest
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if len(body.Requests) != 1 {
			t.Fatalf("requests = %d, want 1", len(body.Requests))
		}
		if got := body.Requests[0].Image.Source.ImageURI; got != "https://example.com/r.jpg" {
			t.Errorf("imageUri = %q", got)
		}
		if got := body.Requests[0].Features[0].Type; got != "TEXT_DETECTION" {
			t.Errorf("feature type = %q, want TEXT_DETECTION", got)
		}

		json.NewEncoder(w).Encode(map[string]interface{}{
			"responses": []map[string]interface{}{{
				"textAnnotations": []map[string]interface{}{{
					"description": "LUIGI'S\nTOTAL 42.50",
				}},
			}},
		})
	})

	raw, err := r.Recognize(context.Background(), "https://example.com/r.jpg")
	if err != nil {
		t.Fatalf("Recognize() failed: %v", err)
	}
	if raw.Text != "LUIGI'S\nTOTAL 42.50" {
		t.Errorf("Text = %q", raw.Text)
	}
}

func TestVisionRecognizeNoAnnotations(t *testing.T) {
	_, r := newVisionServer(t, func(w http.ResponseWriter, req *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"responses": []map[string]interface{}{{}},
		})
	})

	raw, err := r.Recognize(context.Background(), "https://example.com/blank.png")
	if err != nil {
		t.Fatalf("Recognize() failed: %v", err)
	}
	if !raw.Empty() {
		t.Errorf("Text = %q, want empty", raw.Text)
	}
}

func TestVisionRecognizeUpstreamError(t *testing.T) {
	_, r := newVisionServer(t, func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error": "backend unavailable"}`))
	})

	_, err := r.Recognize(context.Background(), "https://example.com/r.jpg")
	if err == nil {
		t.Fatal("Recognize() succeeded, want failure")
	}
	perr, ok := err.(*pipeline.PipelineError)
	if !ok {
		t.Fatalf("error type = %T, want *pipeline.PipelineError", err)
	}
	if perr.Kind != pipeline.KindRecognitionFailed {
		t.Errorf("Kind = %s, want %s", perr.Kind, pipeline.KindRecognitionFailed)
	}
	if !strings.Contains(perr.Detail, "503") {
		t.Errorf("Detail = %q, want upstream status included", perr.Detail)
	}
}

func TestVisionRecognizeContextCancelled(t *testing.T) {
	_, r := newVisionServer(t, func(w http.ResponseWriter, req *http.Request) {
		// Drain the body so the server can detect the client disconnect
		// and cancel the request context; otherwise Close deadlocks.
		io.Copy(io.Discard, req.Body)
		<-req.Context().Done()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := r.Recognize(ctx, "https://example.com/r.jpg")
	if err == nil {
		t.Fatal("Recognize() succeeded, want timeout failure")
	}
	perr, ok := err.(*pipeline.PipelineError)
	if !ok {
		t.Fatalf("error type = %T, want *pipeline.PipelineError", err)
	}
	if perr.Kind != pipeline.KindRecognitionFailed {
		t.Errorf("Kind = %s, want %s", perr.Kind, pipeline.KindRecognitionFailed)
	}
}
