package worker

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

const (
	// SweepSchedule runs just after midnight so "today" has rolled over.
	SweepSchedule  = "5 0 * * *"
	DigestSchedule = "0 9 * * *"

	jobTimeout = 2 * time.Minute
)

type PaymentSweeper interface {
	SweepOverdue(ctx context.Context) (int64, error)
}

type DigestSender interface {
	SendOverdueDigest(ctx context.Context) error
}

// Scheduler runs the daily maintenance jobs in server local time.
type Scheduler struct {
	cron     *cron.Cron
	payments PaymentSweeper
	digest   DigestSender
}

func NewScheduler(payments PaymentSweeper, digest DigestSender) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithLocation(time.Local)),
		payments: payments,
		digest:   digest,
	}
}

func (s *Scheduler) Register() error {
	if _, err := s.cron.AddFunc(SweepSchedule, func() { s.sweepPayments(context.Background()) }); err != nil {
		return fmt.Errorf("schedule payment sweep: %w", err)
	}
	if _, err := s.cron.AddFunc(DigestSchedule, func() { s.sendDigest(context.Background()) }); err != nil {
		return fmt.Errorf("schedule overdue digest: %w", err)
	}
	return nil
}

// Start sweeps once immediately, then blocks until ctx is done and the
// running jobs have finished.
func (s *Scheduler) Start(ctx context.Context) {
	log.Printf("[CRON] scheduler started (sweep %q, digest %q)", SweepSchedule, DigestSchedule)

	s.sweepPayments(ctx)
	s.cron.Start()

	<-ctx.Done()
	<-s.cron.Stop().Done()
	log.Println("[CRON] scheduler stopped")
}

func (s *Scheduler) sweepPayments(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, jobTimeout)
	defer cancel()

	n, err := s.payments.SweepOverdue(ctx)
	if err != nil {
		log.Printf("[CRON] payment sweep failed: %v", err)
		return
	}
	if n > 0 {
		log.Printf("[CRON] %d payment(s) marked OVERDUE", n)
	}
}

func (s *Scheduler) sendDigest(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, jobTimeout)
	defer cancel()

	if err := s.digest.SendOverdueDigest(ctx); err != nil {
		log.Printf("[CRON] overdue digest failed: %v", err)
	}
}
