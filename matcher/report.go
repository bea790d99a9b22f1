// Package matcher pairs sample functions to reference functions above
// a threshold, ranks and aggregates the results, and exposes the
// three-level report model of §3/§4.6.
package matcher

import "encoding/json"

// MethodMatch pairs one sample function with one reference function.
// Invariant: Similarity >= the threshold the Matcher was run with.
type MethodMatch struct {
	OldName       string  `json:"old_name"`
	ResolvedName  string  `json:"resolved_name"`
	MalwareOffset uint64  `json:"malware_offset"`
	CleanOffset   uint64  `json:"clean_offset"`
	Similarity    float64 `json:"similarity"`
}

// BinaryMatch holds every MethodMatch between one sample and one
// reference binary, plus their aggregate similarity.
type BinaryMatch struct {
	Source     string        `json:"source"`
	Dest       string        `json:"dest"`
	Similarity float64       `json:"similarity"`
	Matches    []MethodMatch `json:"matches"`
}

// CompareReport is the top-level document: one sample compared against
// an ordered list of references, sorted by descending aggregate
// similarity.
type CompareReport struct {
	SampleName string        `json:"sample_name"`
	Matches    []BinaryMatch `json:"matches"`
	// ComputeTimeMS is additive relative to §4.6's required field set —
	// see SPEC_FULL.md's Data Model expansion.
	ComputeTimeMS int64 `json:"compute_time_ms"`
}

// ToJSON serializes the report. Similarities are float64 and
// encoding/json always emits them with full precision, satisfying
// §6's "at least 6 significant digits" requirement.
func (r *CompareReport) ToJSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// FromJSON parses a report previously produced by ToJSON.
func FromJSON(data []byte) (*CompareReport, error) {
	var r CompareReport
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	return &r, nil
}
