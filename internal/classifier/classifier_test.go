package classifier

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeModel struct {
	out    []float32
	err    error
	width  int
	closed bool
}

func (f *fakeModel) Predict(context.Context, []float32) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return append([]float32(nil), f.out...), nil
}
func (f *fakeModel) Close() error { f.closed = true; return nil }

type widthModel struct {
	fakeModel
}

func (w *widthModel) OutputWidth() int { return w.width }

func TestCategoriesContract(t *testing.T) {
	require.Equal(t, 7, NumCategories)
	assert.Equal(t, "Healty", Categories[0])
	assert.Equal(t, "Target Leaf Spot", Categories[6])
	seen := map[string]bool{}
	for _, c := range Categories {
		assert.False(t, seen[c], "duplicate category %q", c)
		seen[c] = true
	}
	assert.True(t, IsCategory("Rust"))
	assert.False(t, IsCategory("rust"))
}

func TestClassify(t *testing.T) {
	probs := []float32{0.05, 0.1, 0.02, 0.6, 0.13, 0.07, 0.03}
	c, err := New(&fakeModel{out: probs})
	require.NoError(t, err)

	p, err := c.Classify(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "Bacterial Pustule", p.Class)
	assert.Equal(t, 3, p.Index)
	assert.Equal(t, float32(0.6), p.Confidence)

	m := p.Map()
	require.Len(t, m, NumCategories)
	var sum, max float64
	for _, cat := range Categories {
		v, ok := m[cat]
		require.True(t, ok, cat)
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
		sum += v
		max = math.Max(max, v)
	}
	assert.InDelta(t, 1.0, sum, 1e-5)
	assert.Equal(t, float64(p.Confidence), max)
}

func TestClassify_TieGoesToFirst(t *testing.T) {
	c, err := New(&fakeModel{out: []float32{0.1, 0.3, 0.3, 0.1, 0.1, 0.05, 0.05}})
	require.NoError(t, err)
	p, err := c.Classify(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Index)
	assert.Equal(t, "Yellow Mosaic", p.Class)
}

func TestClassify_OutputMismatch(t *testing.T) {
	c, err := New(&fakeModel{out: []float32{0.5, 0.5}})
	require.NoError(t, err)
	_, err = c.Classify(context.Background(), nil)
	assert.ErrorIs(t, err, ErrOutputMismatch)
}

func TestClassify_ModelError(t *testing.T) {
	boom := errors.New("boom")
	c, err := New(&fakeModel{err: boom})
	require.NoError(t, err)
	_, err = c.Classify(context.Background(), nil)
	assert.ErrorIs(t, err, boom)
}

func TestNew_ChecksDeclaredWidth(t *testing.T) {
	_, err := New(&widthModel{fakeModel{width: 5}})
	assert.ErrorIs(t, err, ErrOutputMismatch)

	_, err = New(&widthModel{fakeModel{width: NumCategories}})
	assert.NoError(t, err)

	_, err = New(nil)
	assert.Error(t, err)
}

func TestClose(t *testing.T) {
	m := &fakeModel{}
	c, err := New(m)
	require.NoError(t, err)
	require.NoError(t, c.Close())
	assert.True(t, m.closed)
}

func TestArgmax(t *testing.T) {
	assert.Equal(t, -1, Argmax(nil))
	assert.Equal(t, 0, Argmax([]float32{1}))
	assert.Equal(t, 2, Argmax([]float32{-3, -2, -1}))
}
