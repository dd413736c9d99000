package paramshare

import (
	"encoding/json"
)

// Trace captures the chain of override hops applied while resolving a
// candidate namespace to its canonical form.
type Trace struct {
	Candidate string `json:"candidate"`
	Canonical string `json:"canonical"`
	Hops      []Hop  `json:"hops,omitempty"`
}

// Hop details a single override application during resolution.
type Hop struct {
	Candidate    string `json:"candidate"`
	Prefix       string `json:"prefix"`
	Target       string `json:"target"`
	SegmentIndex int    `json:"segment_index"`
}

// ToJSON serialises the trace into JSON for logging or transport helpers.
func (t Trace) ToJSON() ([]byte, error) {
	type alias Trace
	return json.Marshal(alias(t))
}

// TraceFromJSON deserialises a JSON payload that was previously generated via
// ToJSON.
func TraceFromJSON(payload []byte) (Trace, error) {
	type alias Trace
	var trace alias
	if err := json.Unmarshal(payload, &trace); err != nil {
		return Trace{}, err
	}
	return Trace(trace), nil
}
