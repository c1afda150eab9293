package classifier

import (
	"fmt"

	"github.com/TheAryan77/soyabean-api/internal/vision"
)

// checkInputShape accepts (N,224,224,3) where any dimension may be dynamic
// (<= 0) and a fixed batch must be 1.
func checkInputShape(dims []int64) error {
	if len(dims) != len(vision.Shape) {
		return fmt.Errorf("rank %d, want %d (NHWC)", len(dims), len(vision.Shape))
	}
	if dims[0] > 1 {
		return fmt.Errorf("fixed batch size %d, want 1 or dynamic", dims[0])
	}
	for i := 1; i < len(dims); i++ {
		if dims[i] > 0 && dims[i] != vision.Shape[i] {
			return fmt.Errorf("shape %v, want %v", dims, vision.Shape)
		}
	}
	return nil
}

// outputWidth returns the class dimension of a (N,C) output. The batch
// dimension must be 1 or dynamic to match the (1,C) tensor Predict allocates.
func outputWidth(dims []int64) (int, error) {
	if len(dims) != 2 {
		return 0, fmt.Errorf("rank %d, want 2 (N,C)", len(dims))
	}
	if dims[0] > 1 {
		return 0, fmt.Errorf("fixed batch size %d, want 1 or dynamic", dims[0])
	}
	w := dims[1]
	if w <= 0 {
		return 0, fmt.Errorf("class dimension is dynamic")
	}
	return int(w), nil
}
