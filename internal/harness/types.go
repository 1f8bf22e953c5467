package harness

// StepTrace is one compiled item within a run.
type StepTrace struct {
	// Seq numbers steps across every run of the scenario.
	Seq     int64  `json:"seq"`
	Item    string `json:"item"`
	Kind    string `json:"kind"`
	Stale   bool   `json:"stale"`
	Route   string `json:"route,omitempty"`
	Written bool   `json:"written,omitempty"`
}

// RunTrace is the observed outcome of one build.
type RunTrace struct {
	Name     string      `json:"name"`
	RunID    string      `json:"run_id,omitempty"`
	FirstRun bool        `json:"first_run"`
	Error    string      `json:"error,omitempty"`
	Order    []string    `json:"order"`
	Modified []string    `json:"modified"`
	Stale    []string    `json:"stale"`
	Written  []string    `json:"written"`
	Steps    []StepTrace `json:"steps"`
}

// Result is the outcome of a scenario.
type Result struct {
	// Pass is true when every expectation and assertion held.
	Pass bool `json:"pass"`

	// Runs holds one trace per executed build, in order.
	Runs []RunTrace `json:"runs"`

	// Errors describes every failed expectation or assertion.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Runs:   []RunTrace{},
		Errors: []string{},
	}
}

// AddError records a failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Run returns the trace of the named run.
func (r *Result) Run(name string) (RunTrace, bool) {
	for _, run := range r.Runs {
		if run.Name == name {
			return run, true
		}
	}
	return RunTrace{}, false
}
