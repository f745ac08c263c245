package usecase

import (
	"context"
	"fmt"
	"log"
)

// Saga runs steps that span systems without a shared transaction (object
// storage and the database). When a step fails, the compensations of the
// steps that already ran are executed in reverse order.
type Saga struct {
	steps []sagaStep
}

type sagaStep struct {
	name       string
	run        func(context.Context) error
	compensate func(context.Context) error
}

func NewSaga() *Saga {
	return &Saga{}
}

// AddStep registers run with an optional compensate.
func (s *Saga) AddStep(name string, run, compensate func(context.Context) error) {
	s.steps = append(s.steps, sagaStep{name: name, run: run, compensate: compensate})
}

func (s *Saga) Execute(ctx context.Context) error {
	for i, step := range s.steps {
		if err := step.run(ctx); err != nil {
			s.rollback(ctx, i)
			return fmt.Errorf("step '%s' failed: %w (rolled back %d steps)", step.name, err, i)
		}
	}
	return nil
}

func (s *Saga) rollback(ctx context.Context, failedAt int) {
	for i := failedAt - 1; i >= 0; i-- {
		step := s.steps[i]
		if step.compensate == nil {
			continue
		}
		if err := step.compensate(ctx); err != nil {
			log.Printf("[SAGA] compensation '%s' failed: %v", step.name, err)
		}
	}
}
