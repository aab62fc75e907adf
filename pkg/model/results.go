package model

// Outcome summarizes a completed workload run.
type Outcome string

const (
	OutcomePass    Outcome = "pass"
	OutcomeFail    Outcome = "fail"
	OutcomeTimeout Outcome = "timeout"
	OutcomeUnknown Outcome = "unknown"
)

// TestResults is the typed result a test agent reports exactly once.
type TestResults struct {
	Outcome    Outcome `json:"outcome"`
	NumPassed  uint64  `json:"numPassed"`
	NumFailed  uint64  `json:"numFailed"`
	NumSkipped uint64  `json:"numSkipped"`
	// OtherInfo is free text for the operator reading the run, not parsed by
	// anything.
	OtherInfo string `json:"otherInfo,omitempty"`
}
