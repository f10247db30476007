package inventory

import (
	"github.com/puzpuzpuz/xsync/v3"
)

// SubmissionState is the lifecycle of one form submission.
type SubmissionState int32

const (
	StateIdle SubmissionState = iota
	StateValidating
	StateSubmitting
)

func (s SubmissionState) String() string {
	switch s {
	case StateValidating:
		return "validating"
	case StateSubmitting:
		return "submitting"
	default:
		return "idle"
	}
}

// SubmissionGuard allows one outstanding submission per form key.
type SubmissionGuard struct {
	states *xsync.MapOf[string, SubmissionState]
}

func NewSubmissionGuard() *SubmissionGuard {
	return &SubmissionGuard{states: xsync.NewMapOf[string, SubmissionState]()}
}

// Submission is an accepted submission holding its form key.
type Submission struct {
	guard *SubmissionGuard
	key   string
}

// Begin moves key from idle to validating. It fails with
// ErrSubmissionInProgress when key is not idle.
func (g *SubmissionGuard) Begin(key string) (*Submission, error) {
	if _, loaded := g.states.LoadOrStore(key, StateValidating); loaded {
		return nil, ErrSubmissionInProgress
	}
	return &Submission{guard: g, key: key}, nil
}

// State reports the current state of key.
func (g *SubmissionGuard) State(key string) SubmissionState {
	state, ok := g.states.Load(key)
	if !ok {
		return StateIdle
	}
	return state
}

// Submitting marks the submission as past validation.
func (s *Submission) Submitting() {
	s.guard.states.Store(s.key, StateSubmitting)
}

// Done returns the form to idle.
func (s *Submission) Done() {
	s.guard.states.Delete(s.key)
}
