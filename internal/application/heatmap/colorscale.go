package heatmap

// Intensity buckets for demand/supply heatmaps.  Thresholds are on the
// normalized intensity (magnitude / max magnitude in the viewport).
const (
	BucketLow      = "low"
	BucketMedium   = "medium"
	BucketHigh     = "high"
	BucketVeryHigh = "very_high"
	BucketExtreme  = "extreme"
)

// Gap buckets for the diverging demand-minus-supply scale, keyed on the
// gap ratio.  Negative ratios mean supply exceeds demand.
const (
	BucketSurplusHigh    = "surplus_high"
	BucketSurplus        = "surplus"
	BucketBalanced       = "balanced"
	BucketShortage       = "shortage"
	BucketShortageSevere = "shortage_severe"
)

// sequentialScale is a 5-class yellow-to-red ramp.
var sequentialScale = []struct {
	threshold float64
	bucket    string
	color     string
}{
	{0.2, BucketLow, "#ffffb2"},
	{0.4, BucketMedium, "#fecc5c"},
	{0.6, BucketHigh, "#fd8d3c"},
	{0.8, BucketVeryHigh, "#f03b20"},
	{1.0, BucketExtreme, "#bd0026"},
}

// divergingScale is a 5-class blue-to-red ramp over the gap ratio.
var divergingScale = []struct {
	threshold float64
	bucket    string
	color     string
}{
	{-0.5, BucketSurplusHigh, "#2c7bb6"},
	{-0.1, BucketSurplus, "#abd9e9"},
	{0.25, BucketBalanced, "#ffffbf"},
	{0.6, BucketShortage, "#fdae61"},
	{1.0, BucketShortageSevere, "#d7191c"},
}

// classifyIntensity maps a normalized intensity in [0,1] to its bucket and
// color.  Values at a threshold fall into the lower bucket.
func classifyIntensity(intensity float64) (bucket, color string) {
	for _, s := range sequentialScale {
		if intensity <= s.threshold {
			return s.bucket, s.color
		}
	}
	last := sequentialScale[len(sequentialScale)-1]
	return last.bucket, last.color
}

// classifyGap maps a gap ratio to its diverging bucket and color.
func classifyGap(ratio float64) (bucket, color string) {
	for _, s := range divergingScale {
		if ratio <= s.threshold {
			return s.bucket, s.color
		}
	}
	last := divergingScale[len(divergingScale)-1]
	return last.bucket, last.color
}

// scaleLegend returns bucket→color for inclusion in response metadata.
func scaleLegend(diverging bool) map[string]string {
	legend := make(map[string]string, 5)
	if diverging {
		for _, s := range divergingScale {
			legend[s.bucket] = s.color
		}
		return legend
	}
	for _, s := range sequentialScale {
		legend[s.bucket] = s.color
	}
	return legend
}
