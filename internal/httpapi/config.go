package httpapi

import "time"

const defaultMaxUploadBytes int64 = 16 << 20

// maxUploadBytes caps the request body of multipart endpoints.
var maxUploadBytes = defaultMaxUploadBytes

// SetMaxUploadBytes configures the maximum multipart body size.
func SetMaxUploadBytes(n int64) {
	if n <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
		return
	}
	maxUploadBytes = n
}

// inferTimeout bounds a single forward pass. Zero disables it.
var inferTimeout time.Duration

// SetInferTimeoutSeconds sets the inference timeout in seconds (0 disables).
func SetInferTimeoutSeconds(sec int64) {
	if sec < 0 {
		sec = 0
	}
	inferTimeout = time.Duration(sec) * time.Second
}

// CORS configuration. If disabled, no CORS middleware is added.
var (
	corsEnabled        bool
	corsAllowedOrigins []string
	corsAllowedMethods []string
	corsAllowedHeaders []string
)

// SetCORSOptions configures CORS behavior for the HTTP server.
func SetCORSOptions(enabled bool, origins, methods, headers []string) {
	corsEnabled = enabled
	corsAllowedOrigins = append([]string(nil), origins...)
	corsAllowedMethods = append([]string(nil), methods...)
	corsAllowedHeaders = append([]string(nil), headers...)
}
