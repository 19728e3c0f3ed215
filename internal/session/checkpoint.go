package session

import (
	"context"
	"time"

	"github.com/ruchy-lang/ruchy/internal/evaluator"
)

// Checkpoint is a deep copy of a session's root bindings and declared
// types. Restoring it does not rewind the execution counter.
type Checkpoint struct {
	Name      string
	CreatedAt time.Time

	bindings map[string]evaluator.Binding
	types    map[string]evaluator.Object
}

// Len is the number of bindings captured.
func (c *Checkpoint) Len() int { return len(c.bindings) }

func (s *Session) Checkpoint(name string) *Checkpoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.checkpoint(name)
}

func (s *Session) checkpoint(name string) *Checkpoint {
	types := make(map[string]evaluator.Object, len(s.eval.Types))
	for k, v := range s.eval.Types {
		types[k] = v
	}
	return &Checkpoint{
		Name:      name,
		CreatedAt: time.Now(),
		bindings:  evaluator.DeepCopyBindings(s.root.Snapshot()),
		types:     types,
	}
}

// Restore replaces the root bindings with those captured in cp. The
// checkpoint is copied again so it can be restored more than once.
func (s *Session) Restore(cp *Checkpoint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.restore(cp)
}

func (s *Session) restore(cp *Checkpoint) {
	s.root.Restore(evaluator.DeepCopyBindings(cp.bindings))
	types := make(map[string]evaluator.Object, len(cp.types))
	for k, v := range cp.types {
		types[k] = v
	}
	s.eval.Types = types
	s.logger.Debug("checkpoint restored", "session", s.ID, "checkpoint", cp.Name)
}

// Transaction evaluates src and rolls the session back to its prior state
// if any statement fails.
func (s *Session) Transaction(ctx context.Context, src string) *Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := s.checkpoint("transaction")
	res := s.evalSource(ctx, src)
	if !res.OK() {
		s.restore(cp)
	}
	return res
}
