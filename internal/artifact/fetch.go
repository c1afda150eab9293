package artifact

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/TheAryan77/soyabean-api/internal/common/fsutil"
)

var downloadsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "soyabean",
		Subsystem: "artifact",
		Name:      "downloads_total",
		Help:      "Model artifact acquisitions by result (cached, downloaded, error)",
	},
	[]string{"result"},
)

func init() {
	prometheus.MustRegister(downloadsTotal)
}

// Result describes what Ensure did.
type Result struct {
	Path       string
	Downloaded bool
	Bytes      int64
	Duration   time.Duration
}

// StatusError is returned when the remote answers with a non-2xx status.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.Code)
}

// Fetcher downloads model artifacts over HTTP.
type Fetcher struct {
	Client *http.Client
}

var defaultFetcher = &Fetcher{Client: &http.Client{Timeout: 10 * time.Minute}}

// Ensure is a shorthand for the default fetcher's Ensure.
func Ensure(ctx context.Context, url, path string) (Result, error) {
	return defaultFetcher.Ensure(ctx, url, path)
}

// Ensure guarantees that a model file exists at path. When one is already
// there it returns immediately without touching the network.
func (f *Fetcher) Ensure(ctx context.Context, url, path string) (Result, error) {
	log := zerolog.Ctx(ctx)
	res := Result{Path: path}
	if fsutil.FileExists(path) {
		downloadsTotal.WithLabelValues("cached").Inc()
		log.Debug().Str("path", path).Msg("model artifact present, skipping download")
		return res, nil
	}
	if strings.TrimSpace(url) == "" {
		downloadsTotal.WithLabelValues("error").Inc()
		return res, fmt.Errorf("model missing at %s and no download url configured", path)
	}

	src := DirectURL(url)
	log.Info().Str("url", src).Str("path", path).Msg("downloading model artifact")
	start := time.Now()
	n, err := f.download(ctx, src, path)
	res.Duration = time.Since(start)
	if err != nil {
		downloadsTotal.WithLabelValues("error").Inc()
		return res, err
	}
	res.Downloaded = true
	res.Bytes = n
	downloadsTotal.WithLabelValues("downloaded").Inc()
	log.Info().Str("path", path).Int64("bytes", n).Dur("dur", res.Duration).Msg("model artifact downloaded")
	return res, nil
}

func (f *Fetcher) download(ctx context.Context, url, path string) (int64, error) {
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, &StatusError{URL: url, Code: resp.StatusCode}
	}
	// Drive answers quota and permission problems with an HTML page and a 200.
	if mt, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type")); mt == "text/html" {
		return 0, fmt.Errorf("fetch %s: remote returned an HTML page instead of a model file", url)
	}
	// nothing touches the disk until the body has at least one byte
	body := bufio.NewReader(resp.Body)
	if _, err := body.Peek(1); err != nil {
		if errors.Is(err, io.EOF) {
			return 0, fmt.Errorf("fetch %s: empty response body", url)
		}
		return 0, fmt.Errorf("fetch %s: %w", url, err)
	}
	return fsutil.WriteFileAtomic(path, body, 0o644)
}
