package httpapi

import (
	"context"

	"github.com/TheAryan77/soyabean-api/internal/classifier"
)

// ModelService backs the HTTP API with a loaded classifier. A nil classifier
// means no model is resident: /health reports degraded and /predict 503s.
type ModelService struct {
	clf       *classifier.Classifier
	modelPath string
}

// NewModelService returns a Service for clf, which may be nil.
func NewModelService(clf *classifier.Classifier, modelPath string) *ModelService {
	return &ModelService{clf: clf, modelPath: modelPath}
}

func (s *ModelService) Ready() bool       { return s.clf != nil }
func (s *ModelService) ModelPath() string { return s.modelPath }

func (s *ModelService) Classify(ctx context.Context, input []float32) (classifier.Prediction, error) {
	if s.clf == nil {
		return classifier.Prediction{}, errModelUnavailable
	}
	return s.clf.Classify(ctx, input)
}
