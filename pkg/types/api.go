package types

// HealthResponse is returned by GET /health. The status code is always 200;
// a missing model shows up as status "degraded".
type HealthResponse struct {
	// Either "healthy" or "degraded".
	// example: healthy
	Status string `json:"status" example:"healthy"`
	// Human readable summary.
	// example: Server is running. Model is loaded
	Message string `json:"message" example:"Server is running. Model is loaded"`
	// Configured local path of the model artifact.
	// example: model_2_new_dataset.onnx
	ModelPath string `json:"model_path" example:"model_2_new_dataset.onnx"`
}

// PredictResponse is returned by POST /predict on success.
type PredictResponse struct {
	// Always true on success.
	// example: true
	Success bool `json:"success" example:"true"`
	// Predicted category.
	// example: Frogeye Leaf Spot
	Class string `json:"class" example:"Frogeye Leaf Spot"`
	// Probability of the predicted category, unrounded.
	// example: 0.9312
	Confidence float64 `json:"confidence" example:"0.9312"`
	// Probability for every category.
	Predictions map[string]float64 `json:"predictions"`
}

// UploadEchoResponse is returned by POST /test-upload when an image part is present.
type UploadEchoResponse struct {
	// example: true
	Success bool `json:"success" example:"true"`
	// example: leaf.jpg
	Filename string `json:"filename" example:"leaf.jpg"`
	// Content type declared by the client for the part.
	// example: image/jpeg
	ContentType string `json:"content_type" example:"image/jpeg"`
	// Size of the uploaded part in bytes.
	// example: 48213
	Size int64 `json:"size" example:"48213"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: No files in request
	Error string `json:"error" example:"No files in request"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}

// UploadErrorResponse is the 400 body of POST /test-upload; it lists what the
// server actually received to help debug client form encoding.
type UploadErrorResponse struct {
	ErrorResponse
	// File field names present in the request, in order.
	// example: ["photo"]
	FilesReceived []string `json:"files_received" example:"photo"`
	// Request Content-Type header.
	// example: multipart/form-data; boundary=X
	ContentType string `json:"content_type" example:"multipart/form-data; boundary=X"`
}
