package classifier

import "testing"

func TestCheckInputShape(t *testing.T) {
	ok := [][]int64{{1, 224, 224, 3}, {-1, 224, 224, 3}, {-1, -1, -1, 3}}
	for _, d := range ok {
		if err := checkInputShape(d); err != nil {
			t.Fatalf("%v: %v", d, err)
		}
	}
	bad := [][]int64{{1, 3, 224, 224}, {224, 224, 3}, {4, 224, 224, 3}}
	for _, d := range bad {
		if err := checkInputShape(d); err == nil {
			t.Fatalf("%v: expected error", d)
		}
	}
}

func TestOutputWidth(t *testing.T) {
	for _, d := range [][]int64{{-1, 7}, {1, 7}} {
		if w, err := outputWidth(d); err != nil || w != 7 {
			t.Fatalf("%v: w=%d err=%v", d, w, err)
		}
	}
	if _, err := outputWidth([]int64{1, -1}); err == nil {
		t.Fatalf("expected dynamic width error")
	}
	if _, err := outputWidth([]int64{1, 7, 1}); err == nil {
		t.Fatalf("expected rank error")
	}
}

// Predict allocates a (1, C) output tensor, so a bare (C) output or a fixed
// batch above one cannot be served.
func TestOutputWidth_RejectsShapesPredictCannotFill(t *testing.T) {
	for _, d := range [][]int64{{7}, {4, 7}, {}} {
		if _, err := outputWidth(d); err == nil {
			t.Fatalf("%v: expected error", d)
		}
	}
}
