package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/xavierca1/dreamstudio-crm/internal/entity"
	"github.com/xavierca1/dreamstudio-crm/internal/infra/queue"
)

var (
	adminRoles = []entity.Role{entity.RoleAdmin, entity.RoleSuperAdmin}
	staffRoles = []entity.Role{entity.RoleStaff, entity.RoleAdmin, entity.RoleSuperAdmin}
)

type NotificationUseCase struct {
	Repo     NotificationRepositoryInterface
	Users    UserRepositoryInterface
	Realtime RealtimePublisher
	Queue    QueueProducerInterface
	Now      func() time.Time

	// Delivered, when set, is called once per channel a notification went out on.
	Delivered func(channel string)
}

func NewNotificationUseCase(repo NotificationRepositoryInterface, users UserRepositoryInterface, realtime RealtimePublisher, queue QueueProducerInterface) *NotificationUseCase {
	return &NotificationUseCase{
		Repo:     repo,
		Users:    users,
		Realtime: realtime,
		Queue:    queue,
		Now:      time.Now,
	}
}

// Notify resolves the audience of input, then persists, pushes and
// optionally emails one notification per recipient. Delivery failures for
// one recipient do not stop the others.
func (uc *NotificationUseCase) Notify(ctx context.Context, input NotificationInput) ([]*entity.Notification, error) {
	recipients, err := uc.resolveAudience(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("resolve audience: %w", err)
	}

	var (
		created []*entity.Notification
		errs    []error
	)
	for _, u := range recipients {
		n := entity.NewNotification(u.ID, input.Content, input.Type, input.LeadID)
		n.CreatedAt = uc.Now()

		if err := uc.Repo.Create(ctx, n); err != nil {
			errs = append(errs, fmt.Errorf("persist notification for %s: %w", u.ID, err))
			continue
		}
		created = append(created, n)
		uc.delivered("db")

		if uc.Realtime != nil {
			uc.Realtime.Publish(u.ID, n)
			uc.delivered("realtime")
		}

		if input.SendEmail && uc.Queue != nil && u.Email != "" {
			subject := input.EmailSubject
			if subject == "" {
				subject = "Dream Studio notification"
			}
			job := queue.EmailJob{
				To:       u.Email,
				Subject:  subject,
				Template: queue.TemplateNotification,
				Data: map[string]string{
					"Name":    u.Name,
					"Content": input.Content,
				},
			}
			if err := uc.Queue.PublishEmail(ctx, job); err != nil {
				log.Printf("[NOTIFY] enqueue email for %s: %v", u.Email, err)
			} else {
				uc.delivered("email")
			}
		}
	}

	return created, errors.Join(errs...)
}

func (uc *NotificationUseCase) delivered(channel string) {
	if uc.Delivered != nil {
		uc.Delivered(channel)
	}
}

func (uc *NotificationUseCase) resolveAudience(ctx context.Context, input NotificationInput) ([]entity.User, error) {
	if input.UserID != "" {
		u, err := uc.Users.FindByID(ctx, input.UserID)
		if err != nil {
			return nil, err
		}
		return []entity.User{*u}, nil
	}

	roles := input.Roles
	switch {
	case input.Admins:
		roles = adminRoles
	case len(roles) == 0:
		roles = staffRoles
	}

	users, err := uc.Users.ListActiveByRoles(ctx, roles)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(users))
	out := users[:0]
	for _, u := range users {
		if seen[u.ID] {
			continue
		}
		seen[u.ID] = true
		out = append(out, u)
	}
	return out, nil
}

func (uc *NotificationUseCase) ListNotifications(ctx context.Context, userID string, unreadOnly bool, limit int) ([]entity.Notification, error) {
	_, limit = normalizePage(1, limit)
	list, err := uc.Repo.ListByUser(ctx, userID, unreadOnly, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return list, nil
}

func (uc *NotificationUseCase) MarkNotificationRead(ctx context.Context, userID, id, lng string) error {
	ok, err := uc.Repo.MarkRead(ctx, userID, id)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if !ok {
		return notFound(CodeNotificationNotFound, NormalizeLang(lng))
	}
	return nil
}
