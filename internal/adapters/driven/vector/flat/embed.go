package flat

import (
	"math"
	"strings"
	"unicode/utf16"
)

// DefaultDimension is the embedding width.
const DefaultDimension = 384

// Embed projects text onto a fixed-width bag-of-words vector. Each
// whitespace token is hashed with a 32-bit rolling hash over its UTF-16
// code units (h = h*31 + c) into bucket |h| mod dim, weighted by term
// frequency, and the vector is L2-normalised. Empty text yields the zero
// vector.
func Embed(text string, dim int) []float32 {
	if dim <= 0 {
		dim = DefaultDimension
	}
	vec := make([]float64, dim)

	words := strings.Fields(strings.ToLower(text))
	if len(words) == 0 {
		return make([]float32, dim)
	}

	freq := make(map[string]int, len(words))
	for _, w := range words {
		freq[w]++
	}
	total := float64(len(words))
	for w, n := range freq {
		vec[bucket(w, dim)] += float64(n) / total
	}

	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	norm = math.Sqrt(norm)

	out := make([]float32, dim)
	for i, v := range vec {
		if norm > 0 {
			v /= norm
		}
		out[i] = float32(v)
	}
	return out
}

func bucket(word string, dim int) int {
	var h int32
	for _, c := range utf16.Encode([]rune(word)) {
		h = h*31 + int32(c)
	}
	abs := int64(h)
	if abs < 0 {
		abs = -abs
	}
	return int(abs % int64(dim))
}

// Cosine returns the cosine similarity of a and b, or 0 when either is
// the zero vector or their lengths differ.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
