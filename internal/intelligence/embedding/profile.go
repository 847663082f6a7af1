package embedding

import (
	"fmt"
	"sort"
	"strings"

	"github.com/openhaven/matchgrid/internal/domain/applicant"
	"github.com/openhaven/matchgrid/internal/domain/project"
)

// Profile synthesis is deterministic: the same record always produces the
// same text, byte for byte, so embeddings for unchanged records are
// cache-eligible.  Map entries are emitted in sorted key order for that
// reason.

// ApplicantProfile synthesizes the textual profile embedded for an
// applicant: household size, AMI band, and preference key/value pairs.
func ApplicantProfile(a *applicant.Applicant) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Household of %d seeking affordable housing.", a.HouseholdSize)
	if a.AMIBand != "" {
		fmt.Fprintf(&sb, " Income band: %s of area median income.", a.AMIBand)
	}
	appendSorted(&sb, "Preferences", a.Preferences)
	return sb.String()
}

// ProjectProfile synthesizes the textual profile embedded for a project:
// developer name, unit count, AMI range, delivery estimate, and metadata
// key/value pairs.
func ProjectProfile(p *project.Project) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Affordable housing development by %s with %d units.", p.Developer, p.UnitCount)
	fmt.Fprintf(&sb, " Accepts %.0f%% to %.0f%% of area median income.", p.AMIMin, p.AMIMax)
	if p.DeliveryEstimate != "" {
		fmt.Fprintf(&sb, " Estimated delivery: %s.", p.DeliveryEstimate)
	}
	appendSorted(&sb, "Details", p.Metadata)
	return sb.String()
}

func appendSorted(sb *strings.Builder, label string, kv map[string]string) {
	if len(kv) == 0 {
		return
	}
	keys := make([]string, 0, len(kv))
	for k := range kv {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Fprintf(sb, " %s:", label)
	for _, k := range keys {
		fmt.Fprintf(sb, " %s=%s;", k, kv[k])
	}
}
