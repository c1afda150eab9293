package classifier

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	predictionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "soyabean",
			Subsystem: "classifier",
			Name:      "predictions_total",
			Help:      "Predictions served, by winning category",
		},
		[]string{"class"},
	)

	inferenceDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "soyabean",
			Subsystem: "classifier",
			Name:      "inference_duration_seconds",
			Help:      "Time spent in the model forward pass",
			Buckets:   prometheus.DefBuckets,
		},
	)
)

func init() {
	prometheus.MustRegister(predictionsTotal, inferenceDuration)
}

// Model is a loaded network: one input tensor in, one probability vector out.
type Model interface {
	Predict(ctx context.Context, input []float32) ([]float32, error)
	Close() error
}

// outputWidther is implemented by models that know their output width
// before the first call.
type outputWidther interface {
	OutputWidth() int
}

// Prediction is the result of classifying one image.
type Prediction struct {
	Class         string
	Index         int
	Confidence    float32
	Probabilities []float32
}

// Map returns every category with its probability.
func (p Prediction) Map() map[string]float64 {
	out := make(map[string]float64, len(p.Probabilities))
	for i, v := range p.Probabilities {
		if i < NumCategories {
			out[Categories[i]] = float64(v)
		}
	}
	return out
}

// Classifier maps a model's output vector onto Categories.
type Classifier struct {
	model Model
}

// New wraps m. If m reports its output width, it must equal NumCategories.
func New(m Model) (*Classifier, error) {
	if m == nil {
		return nil, fmt.Errorf("nil model")
	}
	if ow, ok := m.(outputWidther); ok && ow.OutputWidth() != NumCategories {
		return nil, outputMismatch(ow.OutputWidth())
	}
	return &Classifier{model: m}, nil
}

// Classify runs one forward pass and picks the most probable category.
// Ties go to the lower index.
func (c *Classifier) Classify(ctx context.Context, input []float32) (Prediction, error) {
	start := time.Now()
	probs, err := c.model.Predict(ctx, input)
	inferenceDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return Prediction{}, fmt.Errorf("inference failed: %w", err)
	}
	if len(probs) != NumCategories {
		return Prediction{}, outputMismatch(len(probs))
	}
	best := Argmax(probs)
	p := Prediction{
		Class:         Categories[best],
		Index:         best,
		Confidence:    probs[best],
		Probabilities: probs,
	}
	predictionsTotal.WithLabelValues(p.Class).Inc()
	return p, nil
}

// Close releases the underlying model.
func (c *Classifier) Close() error { return c.model.Close() }

// Argmax returns the index of the largest value, the first one on ties.
// It returns -1 for an empty slice.
func Argmax(v []float32) int {
	if len(v) == 0 {
		return -1
	}
	best := 0
	for i := 1; i < len(v); i++ {
		if v[i] > v[best] {
			best = i
		}
	}
	return best
}
