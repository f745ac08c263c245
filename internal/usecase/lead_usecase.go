package usecase

import (
	"time"
)

type LeadUseCase struct {
	Tx          TxManager
	Clients     ClientRepositoryInterface
	Leads       LeadRepositoryInterface
	Users       UserRepositoryInterface
	Payments    PaymentRepositoryInterface
	Notifier    Notifier
	Queue       QueueProducerInterface
	OverdueDays int
	Now         func() time.Time
}

func NewLeadUseCase(
	tx TxManager,
	clients ClientRepositoryInterface,
	leads LeadRepositoryInterface,
	users UserRepositoryInterface,
	payments PaymentRepositoryInterface,
	notifier Notifier,
	queue QueueProducerInterface,
	overdueDays int,
) *LeadUseCase {
	if overdueDays <= 0 {
		overdueDays = 7
	}
	return &LeadUseCase{
		Tx:          tx,
		Clients:     clients,
		Leads:       leads,
		Users:       users,
		Payments:    payments,
		Notifier:    notifier,
		Queue:       queue,
		OverdueDays: overdueDays,
		Now:         time.Now,
	}
}

// startOfDay is server local midnight.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
