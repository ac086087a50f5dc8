package bayes

const (
	TerminatedNormalized   = "normalized"
	TerminatedQueryError   = "error_query"
	TerminatedZeroEvidence = "error_zero_evidence"
	TerminatedInvariant    = "error_invariant"
)

type EliminationTrace struct {
	QueryID    string            `json:"query_id"`
	Query      string            `json:"query"`
	Evidence   []string          `json:"evidence,omitempty"`
	Pruned     []string          `json:"pruned"`
	Order      []string          `json:"order"`
	Steps      []EliminationStep `json:"steps"`
	FinalScope []string          `json:"final_scope,omitempty"`
	Posterior  []float64         `json:"posterior,omitempty"`
	Terminated string            `json:"terminated"`
}

type EliminationStep struct {
	Variable       string   `json:"variable"`
	DurationMicros int64    `json:"duration_micros"`
	Joined         int      `json:"joined"`
	JoinedSize     int      `json:"joined_size"`
	JoinedScope    []string `json:"joined_scope"`
	ResultScope    []string `json:"result_scope"`
}
