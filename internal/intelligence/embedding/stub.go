package embedding

import (
	"context"
	"hash/fnv"
	"math"
)

// StubProvider is a deterministic in-process Provider for tests and local
// development.  Vectors are derived from an FNV hash of the input text, so
// identical texts always embed identically across runs and processes, and
// distinct texts almost always differ.
type StubProvider struct {
	Dim int

	// Fixed pins exact vectors for specific texts, overriding the hash
	// derivation.  Useful for scripting known similarity outcomes.
	Fixed map[string][]float32

	// Err, when set, is returned from every Embed call to exercise the
	// degraded-provider path.
	Err error
}

// NewStubProvider returns a StubProvider with the given dimensionality.
func NewStubProvider(dim int) *StubProvider {
	return &StubProvider{Dim: dim}
}

// Dimensions returns the stub's configured vector length.
func (s *StubProvider) Dimensions() int { return s.Dim }

// Embed derives a deterministic unit-norm-ish vector from text.
func (s *StubProvider) Embed(_ context.Context, text string) ([]float32, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if v, ok := s.Fixed[text]; ok {
		return v, nil
	}

	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	seed := h.Sum64()

	vec := make([]float32, s.Dim)
	// xorshift keeps the derivation dependency-free and reproducible.
	state := seed | 1
	for i := range vec {
		state ^= state << 13
		state ^= state >> 7
		state ^= state << 17
		vec[i] = float32(math.Sin(float64(state % 10007)))
	}
	return vec, nil
}
