package httpapi

import (
	"context"
	"errors"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/TheAryan77/soyabean-api/internal/classifier"
	"github.com/TheAryan77/soyabean-api/internal/vision"
	"github.com/TheAryan77/soyabean-api/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	// Ready reports whether a model is loaded.
	Ready() bool
	ModelPath() string
	Classify(ctx context.Context, input []float32) (classifier.Prediction, error)
}

func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, metrics, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(MetricsMiddleware)
	r.Use(recoverJSON)
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: orDefault(corsAllowedOrigins, []string{"*"}),
			AllowedMethods: orDefault(corsAllowedMethods, []string{"GET", "POST", "OPTIONS"}),
			AllowedHeaders: orDefault(corsAllowedHeaders, []string{"Content-Type"}),
			MaxAge:         300,
		}))
	}

	h := &handlers{svc: svc}
	r.Get("/health", h.health)
	r.Post("/predict", h.predict)
	r.Post("/test-upload", h.testUpload)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("loading"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)
	return r
}

// recoverJSON turns a handler panic into the generic JSON 500, so clients
// never see an empty or partial body.
func recoverJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			l := reqLogger(r)
			l.Error().Interface("panic", rec).Bytes("stack", debug.Stack()).Msg("handler panic")
			if r.Header.Get("Connection") != "Upgrade" {
				writeJSONError(w, http.StatusInternalServerError, internalErrorMessage)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func orDefault(v, def []string) []string {
	if len(v) == 0 {
		return def
	}
	return v
}

// statusClientClosedRequest is nginx's code for a client that disconnected
// before the response was ready.
const statusClientClosedRequest = 499

type handlers struct {
	svc Service
}

// health godoc
//
//	@Summary	Service health
//	@Tags		health
//	@Produce	json
//	@Success	200	{object}	types.HealthResponse
//	@Router		/health [get]
func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	resp := types.HealthResponse{
		Status:    "healthy",
		Message:   "Server is running. Model is loaded",
		ModelPath: h.svc.ModelPath(),
	}
	if !h.svc.Ready() {
		resp.Status = "degraded"
		resp.Message = "Server is running. Model is not loaded"
	}
	writeJSON(w, http.StatusOK, resp)
}

// predict godoc
//
//	@Summary	Classify a leaf image
//	@Tags		inference
//	@Accept		multipart/form-data
//	@Produce	json
//	@Param		image	formData	file	true	"Leaf image (.png, .jpg, .jpeg, .gif)"
//	@Success	200	{object}	types.PredictResponse
//	@Failure	400	{object}	types.ErrorResponse
//	@Failure	413	{object}	types.ErrorResponse
//	@Failure	500	{object}	types.ErrorResponse
//	@Failure	503	{object}	types.ErrorResponse
//	@Router		/predict [post]
func (h *handlers) predict(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status, err := h.doPredict(w, r)
	logEnd(r, status, start, err)
}

func (h *handlers) doPredict(w http.ResponseWriter, r *http.Request) (int, error) {
	if !h.svc.Ready() {
		return fail(w, errModelUnavailable)
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	form, err := readUploads(r)
	if err != nil {
		if errors.Is(err, errMalformedMultipart) {
			return fail(w, badRequest("malformed", "Malformed multipart body"))
		}
		return fail(w, err)
	}

	img, apiErr := selectImage(form)
	if apiErr != nil {
		return fail(w, apiErr)
	}

	tensor, err := vision.Preprocess(img.Data)
	if err != nil {
		return fail(w, badRequest("preprocess", err.Error()))
	}

	ctx, cancel := joinContexts(serverBaseCtx, r.Context())
	defer cancel()
	if inferTimeout > 0 {
		var tcancel context.CancelFunc
		ctx, tcancel = context.WithTimeout(ctx, inferTimeout)
		defer tcancel()
	}
	pred, err := h.svc.Classify(ctx, tensor)
	if err != nil {
		if r.Context().Err() != nil {
			// client went away: no body, but the status still reaches metrics
			w.WriteHeader(statusClientClosedRequest)
			return statusClientClosedRequest, err
		}
		var he HTTPError
		if errors.As(err, &he) {
			return fail(w, he)
		}
		writeJSONError(w, http.StatusInternalServerError, internalErrorMessage)
		return http.StatusInternalServerError, err
	}

	writeJSON(w, http.StatusOK, types.PredictResponse{
		Success:     true,
		Class:       pred.Class,
		Confidence:  float64(pred.Confidence),
		Predictions: pred.Map(),
	})
	return http.StatusOK, nil
}

// fail writes err as a JSON error. Messages of typed errors are client-safe;
// anything else is replaced with the generic internal message.
func fail(w http.ResponseWriter, err error) (int, error) {
	status := statusOf(err)
	var ae *apiError
	if errors.As(err, &ae) && ae.reason != "" {
		countRejection(ae.reason)
	}
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		writeJSONError(w, status, internalErrorMessage)
		return status, err
	}
	writeJSONError(w, status, err.Error())
	return status, err
}

// testUpload godoc
//
//	@Summary	Echo an upload without running inference
//	@Tags		debug
//	@Accept		multipart/form-data
//	@Produce	json
//	@Param		image	formData	file	true	"Any file"
//	@Success	200	{object}	types.UploadEchoResponse
//	@Failure	400	{object}	types.UploadErrorResponse
//	@Failure	500	{object}	types.ErrorResponse
//	@Router		/test-upload [post]
func (h *handlers) testUpload(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	l := reqLogger(r)
	l.Debug().Str("content_type", r.Header.Get("Content-Type")).Msg("test-upload received")

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	form, err := readUploads(r)
	if err != nil {
		// diagnostic endpoint: read failures are reported verbatim
		status := statusOf(err)
		writeJSONError(w, status, err.Error())
		logEnd(r, status, start, err)
		return
	}
	l.Debug().Strs("files", form.fileFields()).Msg("test-upload parsed")

	img, ok := form.file("image")
	if !ok {
		countRejection("no_image_field")
		writeJSON(w, http.StatusBadRequest, types.UploadErrorResponse{
			ErrorResponse: types.ErrorResponse{Error: "No image field in request", Code: http.StatusBadRequest},
			FilesReceived: form.fileFields(),
			ContentType:   r.Header.Get("Content-Type"),
		})
		logEnd(r, http.StatusBadRequest, start, nil)
		return
	}
	writeJSON(w, http.StatusOK, types.UploadEchoResponse{
		Success:     true,
		Filename:    img.Filename,
		ContentType: img.ContentType,
		Size:        int64(len(img.Data)),
	})
	logEnd(r, http.StatusOK, start, nil)
}
