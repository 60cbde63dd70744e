package harness

// StepRecord is the log line of one executed step.
type StepRecord struct {
	Index  int    `json:"index"`
	Op     string `json:"op"`
	Detail string `json:"detail,omitempty"`
}

// Snapshot is the disk tree captured by a snapshot step. Keys are slash
// paths; directories end in "/" and map to "".
type Snapshot struct {
	Name string            `json:"name"`
	Tree map[string]string `json:"tree"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every step and assertion matched.
	Pass bool `json:"pass"`

	// Steps logs every executed step in order.
	Steps []StepRecord `json:"steps"`

	// Errors contains mismatch messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Snapshots holds the trees captured by snapshot steps, in order.
	Snapshots []Snapshot `json:"snapshots,omitempty"`

	// Labels maps version labels (v1, v2, ...) to version IDs.
	Labels map[string]string `json:"labels,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:      true,
		Steps:     []StepRecord{},
		Errors:    []string{},
		Snapshots: []Snapshot{},
		Labels:    make(map[string]string),
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddStep records one executed step.
func (r *Result) AddStep(index int, op, detail string) {
	r.Steps = append(r.Steps, StepRecord{Index: index, Op: op, Detail: detail})
}
