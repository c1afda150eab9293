package e2e

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/TheAryan77/soyabean-api/internal/artifact"
	"github.com/TheAryan77/soyabean-api/internal/classifier"
	"github.com/TheAryan77/soyabean-api/pkg/types"
)

// TestE2E_FetchThenClassify covers a cold start: the artifact is downloaded
// once, a restart reuses it, and the API classifies an uploaded leaf.
func TestE2E_FetchThenClassify(t *testing.T) {
	remote, hits := modelRemote(t, []byte("onnx-bytes"))
	modelPath := filepath.Join(t.TempDir(), "models", "leaf.onnx")
	f := &artifact.Fetcher{Client: remote.Client()}

	res, err := f.Ensure(context.Background(), remote.URL+"/leaf.onnx", modelPath)
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if !res.Downloaded || res.Bytes != int64(len("onnx-bytes")) {
		t.Fatalf("unexpected result: %+v", res)
	}
	res, err = f.Ensure(context.Background(), remote.URL+"/leaf.onnx", modelPath)
	if err != nil || res.Downloaded {
		t.Fatalf("second ensure should be a no-op: %+v err=%v", res, err)
	}
	if n := hits.Load(); n != 1 {
		t.Fatalf("remote hit %d times, want 1", n)
	}
	if b, err := os.ReadFile(modelPath); err != nil || string(b) != "onnx-bytes" {
		t.Fatalf("artifact content=%q err=%v", b, err)
	}

	model := &fixedModel{probs: []float32{0.01, 0.02, 0.03, 0.04, 0.05, 0.8, 0.05}}
	srv := newServer(t, model, modelPath)

	resp, body := httpGet(t, srv.URL+"/health")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health status=%d", resp.StatusCode)
	}
	var health types.HealthResponse
	if err := json.Unmarshal(body, &health); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if health.Status != "healthy" || health.ModelPath != modelPath {
		t.Fatalf("health=%+v", health)
	}

	resp, body = postFile(t, srv.URL+"/predict", "image", "leaf.png", pngBytes(t, 32, 20))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("predict status=%d body=%s", resp.StatusCode, body)
	}
	var pred types.PredictResponse
	if err := json.Unmarshal(body, &pred); err != nil {
		t.Fatalf("decode predict: %v", err)
	}
	if pred.Class != "Frogeye Leaf Spot" || len(pred.Predictions) != classifier.NumCategories {
		t.Fatalf("predict=%+v", pred)
	}
	if model.calls.Load() != 1 {
		t.Fatalf("model calls=%d", model.calls.Load())
	}
}

func TestE2E_DegradedService(t *testing.T) {
	srv := newServer(t, nil, "missing.onnx")

	resp, body := httpGet(t, srv.URL+"/health")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health status=%d", resp.StatusCode)
	}
	var health types.HealthResponse
	if err := json.Unmarshal(body, &health); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if health.Status != "degraded" {
		t.Fatalf("health=%+v", health)
	}

	resp, body = postFile(t, srv.URL+"/predict", "image", "leaf.png", pngBytes(t, 8, 8))
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("predict status=%d body=%s", resp.StatusCode, body)
	}

	// the diagnostic endpoint works without a model
	resp, body = postFile(t, srv.URL+"/test-upload", "photo", "leaf.png", []byte("x"))
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("test-upload status=%d", resp.StatusCode)
	}
	var echo types.UploadErrorResponse
	if err := json.Unmarshal(body, &echo); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(echo.FilesReceived) != 1 || echo.FilesReceived[0] != "photo" {
		t.Fatalf("files_received=%v", echo.FilesReceived)
	}
}

func TestE2E_ConcurrentPredictions(t *testing.T) {
	model := &fixedModel{probs: []float32{0.9, 0.02, 0.02, 0.02, 0.02, 0.01, 0.01}}
	srv := newServer(t, model, "leaf.onnx")
	img := pngBytes(t, 16, 16)

	const n = 8
	errc := make(chan error, n)
	for i := 0; i < n; i++ {
		go func() {
			resp, body, err := doPost(srv.URL+"/predict", "image", "leaf.jpg", img)
			if err != nil {
				errc <- err
				return
			}
			if resp.StatusCode != http.StatusOK {
				errc <- &statusErr{code: resp.StatusCode, body: string(body)}
				return
			}
			errc <- nil
		}()
	}
	for i := 0; i < n; i++ {
		if err := <-errc; err != nil {
			t.Fatal(err)
		}
	}
	if got := model.calls.Load(); got != n {
		t.Fatalf("model calls=%d want %d", got, n)
	}
}

type statusErr struct {
	code int
	body string
}

func (e *statusErr) Error() string { return http.StatusText(e.code) + ": " + e.body }
