package reconcile

// Outcome classifies what a single reconciliation did to local state.
type Outcome int

const (
	// OutcomeCreated means a new local row was written.
	OutcomeCreated Outcome = iota
	// OutcomeUpdated means an existing local row was overwritten in place.
	OutcomeUpdated
	// OutcomeSkipped means the payload was understood but intentionally not
	// applied, for example an unmatched customer under the skip policy.
	OutcomeSkipped
)

// Result aggregates outcomes across a batch.
type Result struct {
	Created int
	Updated int
	Skipped int
}

func (r *Result) Add(o Outcome) {
	switch o {
	case OutcomeCreated:
		r.Created++
	case OutcomeUpdated:
		r.Updated++
	case OutcomeSkipped:
		r.Skipped++
	}
}

// Total returns how many payloads the batch touched.
func (r Result) Total() int {
	return r.Created + r.Updated + r.Skipped
}
