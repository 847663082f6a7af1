package matching

import "math"

// CosineSimilarity returns the cosine of the angle between a and b in
// [-1, 1].  A zero-norm operand on either side yields 0.0 rather than NaN,
// which is the degraded-provider case downstream.  Mismatched lengths also
// yield 0.0: a dimensionality change mid-run means the vectors are not
// comparable.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// ClampSimilarity maps a raw cosine similarity into [0, 1] for blending:
// negative similarity contributes nothing to a combined score.
func ClampSimilarity(sim float64) float64 {
	if sim < 0 {
		return 0
	}
	if sim > 1 {
		return 1
	}
	return sim
}

// CombineScores blends a clamped similarity and a compatibility score using
// the given weights.  With both inputs and weight sum in [0, 1], the result
// is in [0, 1].
func CombineScores(similarity, compatibility, simWeight, compatWeight float64) float64 {
	return simWeight*ClampSimilarity(similarity) + compatWeight*compatibility
}
