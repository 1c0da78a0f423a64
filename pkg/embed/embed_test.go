package embed

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCosineIdenticalVectors(t *testing.T) {
	v := []float32{1, 2, 3}
	assert.InDelta(t, 1.0, cosine(v, v), 1e-5)
}

func TestCosineOrthogonalVectors(t *testing.T) {
	a := []float32{1, 0}
	b := []float32{0, 1}
	assert.InDelta(t, 0.0, cosine(a, b), 1e-6)
}

func TestCosineMismatchedLengthReturnsZero(t *testing.T) {
	assert.Equal(t, float32(0), cosine([]float32{1, 2}, []float32{1}))
}

func TestCosineZeroVectorReturnsZero(t *testing.T) {
	assert.Equal(t, float32(0), cosine([]float32{0, 0}, []float32{1, 1}))
}

func TestNormalizeProducesUnitVector(t *testing.T) {
	v := []float32{3, 4}
	normalize(v)
	mag := math.Sqrt(float64(v[0])*float64(v[0]) + float64(v[1])*float64(v[1]))
	assert.InDelta(t, 1.0, mag, 1e-5)
}

func TestNormalizeZeroVectorIsNoop(t *testing.T) {
	v := []float32{0, 0, 0}
	normalize(v)
	assert.Equal(t, []float32{0, 0, 0}, v)
}

func TestClipTruncatesByRuneCount(t *testing.T) {
	assert.Equal(t, "hello", clip("hello world", 5))
	assert.Equal(t, "안녕", clip("안녕하세요", 2))
}

func TestClipShorterThanLimitIsUnchanged(t *testing.T) {
	assert.Equal(t, "hi", clip("  hi  ", 10))
}

func TestDedupePreservesFirstOccurrenceOrder(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, dedupe([]string{"a", "b", "a", "c", "b"}))
}

func TestNonEmptyDropsBlankAndWhitespaceEntries(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, nonEmpty([]string{" a ", "", "  ", "b"}))
}

func TestSqrtMatchesMathSqrt(t *testing.T) {
	assert.InDelta(t, math.Sqrt(16), sqrt(16), 1e-9)
	assert.InDelta(t, math.Sqrt(2), sqrt(2), 1e-9)
	assert.Equal(t, float64(0), sqrt(-1))
}

func TestComputeSimilarityParsesJSONVectors(t *testing.T) {
	a := []byte(`[1,0,0]`)
	b := []byte(`[1,0,0]`)
	assert.InDelta(t, 1.0, ComputeSimilarity(a, b), 1e-5)
}

func TestComputeSimilarityMalformedJSONReturnsZero(t *testing.T) {
	assert.Equal(t, float32(0), ComputeSimilarity([]byte(`not json`), []byte(`[1,0]`)))
}
