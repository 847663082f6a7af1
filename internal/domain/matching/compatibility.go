// Package matching provides the pure scoring functions of the matching
// engine: rule-based AMI compatibility and vector cosine similarity.  Both
// are deterministic, perform no I/O, and return scores bounded to [0, 1].
package matching

import (
	"strconv"
	"strings"
)

const (
	// decayRangePct is the percentage-point distance at which AMI
	// compatibility decays to exactly zero.
	decayRangePct = 50.0

	// neutralScore is applied when an applicant's AMI band cannot be
	// parsed; the applicant still participates in matching rather than
	// being excluded outright.
	neutralScore = 0.5
)

// ParseAMIBand extracts the numeric percentage from an AMI band label such
// as "80%", "80", or " 80.5 % ".  The second return value is false when the
// label is not numeric.
func ParseAMIBand(band string) (float64, bool) {
	s := strings.TrimSpace(band)
	s = strings.TrimSuffix(s, "%")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

// ScoreAMI scores how well an applicant's AMI band fits a project's accepted
// [min, max] range.  Inside the range (inclusive) the score is 1.0; outside,
// it decays linearly with the percentage-point distance to the nearest bound
// and reaches 0 at 50 points.  An unparseable band yields the neutral 0.5
// with parsed=false so callers can flag it in the match breakdown.
func ScoreAMI(band string, min, max float64) (score float64, parsed bool) {
	pct, ok := ParseAMIBand(band)
	if !ok {
		return neutralScore, false
	}

	if pct >= min && pct <= max {
		return 1.0, true
	}

	var dist float64
	if pct < min {
		dist = min - pct
	} else {
		dist = pct - max
	}

	score = 1 - dist/decayRangePct
	if score < 0 {
		score = 0
	}
	return score, true
}
