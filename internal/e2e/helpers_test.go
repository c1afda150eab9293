package e2e

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/TheAryan77/soyabean-api/internal/classifier"
	"github.com/TheAryan77/soyabean-api/internal/httpapi"
)

// fixedModel returns the same distribution for every input.
type fixedModel struct {
	probs []float32
	calls atomic.Int32
}

func (m *fixedModel) Predict(_ context.Context, input []float32) ([]float32, error) {
	m.calls.Add(1)
	return append([]float32(nil), m.probs...), nil
}

func (m *fixedModel) Close() error { return nil }

// modelRemote serves body as a model artifact and counts requests.
func modelRemote(t *testing.T, body []byte) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func newServer(t *testing.T, m classifier.Model, modelPath string) *httptest.Server {
	t.Helper()
	var svc *httpapi.ModelService
	if m == nil {
		svc = httpapi.NewModelService(nil, modelPath)
	} else {
		clf, err := classifier.New(m)
		if err != nil {
			t.Fatalf("classifier: %v", err)
		}
		svc = httpapi.NewModelService(clf, modelPath)
	}
	srv := httptest.NewServer(httpapi.NewMux(svc))
	t.Cleanup(srv.Close)
	return srv
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: 40, G: 150, B: 60, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func postFile(t *testing.T, url, field, filename string, data []byte) (*http.Response, []byte) {
	t.Helper()
	resp, b, err := doPost(url, field, filename, data)
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp, b
}

// doPost uploads data as a single file part. It is safe to call from
// goroutines other than the test's own.
func doPost(url, field, filename string, data []byte) (*http.Response, []byte, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile(field, filename)
	if err != nil {
		return nil, nil, err
	}
	if _, err := fw.Write(data); err != nil {
		return nil, nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, nil, err
	}
	resp, err := http.Post(url, mw.FormDataContentType(), &body)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	return resp, b, err
}

func httpGet(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp, b
}
