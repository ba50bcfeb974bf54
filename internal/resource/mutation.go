// internal/resource/mutation.go
package resource

import "sync"

// Outcome is the tri-state result of a mutation.
type Outcome int

const (
	OutcomeIdle Outcome = iota
	OutcomeSuccess
	OutcomeError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeError:
		return "error"
	default:
		return "idle"
	}
}

// Mutation tracks one write operation: in-flight flag plus its last outcome.
// Begin clears the previous outcome, so a retried mutation starts clean.
type Mutation struct {
	mu      sync.RWMutex
	loading bool
	outcome Outcome
	err     error
}

// NewMutation creates an idle Mutation.
func NewMutation() *Mutation {
	return &Mutation{}
}

// Begin marks the mutation as in flight and clears the previous outcome.
func (m *Mutation) Begin() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loading = true
	m.outcome = OutcomeIdle
	m.err = nil
}

// Resolve records success.
func (m *Mutation) Resolve() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loading = false
	m.outcome = OutcomeSuccess
	m.err = nil
}

// Fail records failure.
func (m *Mutation) Fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loading = false
	m.outcome = OutcomeError
	m.err = err
}

// Loading reports whether the mutation is in flight.
func (m *Mutation) Loading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loading
}

// Outcome returns the last recorded outcome.
func (m *Mutation) Outcome() Outcome {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.outcome
}

// Err returns the last mutation error.
func (m *Mutation) Err() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.err
}

// Reset clears the mutation back to idle.
func (m *Mutation) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loading = false
	m.outcome = OutcomeIdle
	m.err = nil
}
