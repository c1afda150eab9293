package classifier

import (
	"context"
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/TheAryan77/soyabean-api/internal/vision"
)

// ONNXOptions configures LoadONNX.
type ONNXOptions struct {
	// LibraryPath points at libonnxruntime; empty uses the platform default.
	LibraryPath string
	// IntraOpThreads caps per-call parallelism; 0 lets onnxruntime decide.
	IntraOpThreads int
}

var envMu sync.Mutex

// ONNXModel runs the leaf classifier with onnxruntime. The session is shared
// by all requests; tensors are allocated per call.
type ONNXModel struct {
	session    *ort.DynamicAdvancedSession
	inputName  string
	outputName string
	width      int

	mu     sync.RWMutex
	closed bool
}

// LoadONNX opens the model at path and checks that its input matches the
// preprocessing output and its output matches Categories.
func LoadONNX(path string, opts ONNXOptions) (*ONNXModel, error) {
	if err := initEnvironment(opts.LibraryPath); err != nil {
		return nil, err
	}

	inputs, outputs, err := ort.GetInputOutputInfo(path)
	if err != nil {
		return nil, fmt.Errorf("read model io info %s: %w", path, err)
	}
	if len(inputs) != 1 || len(outputs) != 1 {
		return nil, fmt.Errorf("model %s: want 1 input and 1 output, got %d and %d", path, len(inputs), len(outputs))
	}
	in, out := inputs[0], outputs[0]
	if err := checkInputShape(in.Dimensions); err != nil {
		return nil, fmt.Errorf("model %s input %q: %w", path, in.Name, err)
	}
	width, err := outputWidth(out.Dimensions)
	if err != nil {
		return nil, fmt.Errorf("model %s output %q: %w", path, out.Name, err)
	}
	if width != NumCategories {
		return nil, fmt.Errorf("model %s: %w", path, outputMismatch(width))
	}

	so, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("session options: %w", err)
	}
	defer so.Destroy()
	if opts.IntraOpThreads > 0 {
		if err := so.SetIntraOpNumThreads(opts.IntraOpThreads); err != nil {
			return nil, fmt.Errorf("set intra-op threads: %w", err)
		}
	}

	session, err := ort.NewDynamicAdvancedSession(path, []string{in.Name}, []string{out.Name}, so)
	if err != nil {
		return nil, fmt.Errorf("create onnx session: %w", err)
	}
	return &ONNXModel{
		session:    session,
		inputName:  in.Name,
		outputName: out.Name,
		width:      width,
	}, nil
}

// Names returns the graph's input and output tensor names.
func (m *ONNXModel) Names() (input, output string) { return m.inputName, m.outputName }

// OutputWidth is the number of values Predict returns.
func (m *ONNXModel) OutputWidth() int { return m.width }

// Predict runs a single forward pass over a (1,224,224,3) tensor.
func (m *ONNXModel) Predict(ctx context.Context, input []float32) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if want := vision.Width * vision.Height * vision.Channels; len(input) != want {
		return nil, fmt.Errorf("input has %d values, want %d", len(input), want)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}

	inT, err := ort.NewTensor(ort.NewShape(vision.Shape[:]...), input)
	if err != nil {
		return nil, fmt.Errorf("input tensor: %w", err)
	}
	defer inT.Destroy()
	outT, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(m.width)))
	if err != nil {
		return nil, fmt.Errorf("output tensor: %w", err)
	}
	defer outT.Destroy()

	if err := m.session.Run([]ort.Value{inT}, []ort.Value{outT}); err != nil {
		return nil, err
	}
	return append([]float32(nil), outT.GetData()...), nil
}

// Close destroys the session and the onnxruntime environment.
func (m *ONNXModel) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	err := m.session.Destroy()
	envMu.Lock()
	defer envMu.Unlock()
	if ort.IsInitialized() {
		if derr := ort.DestroyEnvironment(); err == nil {
			err = derr
		}
	}
	return err
}

func initEnvironment(lib string) error {
	envMu.Lock()
	defer envMu.Unlock()
	if ort.IsInitialized() {
		return nil
	}
	if lib != "" {
		ort.SetSharedLibraryPath(lib)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return fmt.Errorf("initialize onnxruntime: %w", err)
	}
	return nil
}
