package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xavierca1/dreamstudio-crm/internal/entity"
	"github.com/xavierca1/dreamstudio-crm/internal/infra/queue"
)

type notifyFixture struct {
	repo     *MockNotificationRepository
	users    *MockUserRepository
	realtime *MockRealtime
	queue    *MockQueueProducer
	uc       *NotificationUseCase
	channels []string
}

func newNotifyFixture() *notifyFixture {
	f := &notifyFixture{
		repo:     new(MockNotificationRepository),
		users:    new(MockUserRepository),
		realtime: new(MockRealtime),
		queue:    new(MockQueueProducer),
	}
	f.uc = NewNotificationUseCase(f.repo, f.users, f.realtime, f.queue)
	f.uc.Now = clock
	f.uc.Delivered = func(channel string) { f.channels = append(f.channels, channel) }
	return f
}

func TestNotifySingleUserWithEmail(t *testing.T) {
	f := newNotifyFixture()
	f.users.On("FindByID", mock.Anything, "u1").Return(&entity.User{ID: "u1", Name: "Omar", Email: "omar@dream.studio"}, nil)
	f.repo.On("Create", mock.Anything, mock.MatchedBy(func(n *entity.Notification) bool {
		return *n.UserID == "u1" && n.Content == "hello" && n.CreatedAt.Equal(fixedNow)
	})).Return(nil)
	f.realtime.On("Publish", "u1", mock.Anything).Return()
	f.queue.On("PublishEmail", mock.Anything, mock.MatchedBy(func(job queue.EmailJob) bool {
		return job.To == "omar@dream.studio" && job.Template == queue.TemplateNotification && job.Data["Content"] == "hello"
	})).Return(nil)

	created, err := f.uc.Notify(context.Background(), NotificationInput{UserID: "u1", Content: "hello", SendEmail: true})

	require.NoError(t, err)
	assert.Len(t, created, 1)
	assert.Equal(t, []string{"db", "realtime", "email"}, f.channels)
	f.queue.AssertExpectations(t)
	f.realtime.AssertExpectations(t)
}

func TestNotifyAdminsResolvesAdminRoles(t *testing.T) {
	f := newNotifyFixture()
	f.users.On("ListActiveByRoles", mock.Anything, []entity.Role{entity.RoleAdmin, entity.RoleSuperAdmin}).
		Return([]entity.User{{ID: "a1"}, {ID: "a2"}, {ID: "a1"}}, nil)
	f.repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.realtime.On("Publish", mock.Anything, mock.Anything).Return()

	created, err := f.uc.Notify(context.Background(), NotificationInput{Admins: true, Content: "x"})

	require.NoError(t, err)
	assert.Len(t, created, 2)
	f.realtime.AssertNumberOfCalls(t, "Publish", 2)
	f.queue.AssertNotCalled(t, "PublishEmail", mock.Anything, mock.Anything)
}

func TestNotifyDefaultsToAllStaff(t *testing.T) {
	f := newNotifyFixture()
	f.users.On("ListActiveByRoles", mock.Anything, []entity.Role{entity.RoleStaff, entity.RoleAdmin, entity.RoleSuperAdmin}).
		Return([]entity.User{{ID: "s1"}}, nil)
	f.repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.realtime.On("Publish", "s1", mock.Anything).Return()

	_, err := f.uc.Notify(context.Background(), NotificationInput{Content: "x"})

	require.NoError(t, err)
	f.users.AssertExpectations(t)
}

func TestNotifyRoleSet(t *testing.T) {
	f := newNotifyFixture()
	roles := []entity.Role{entity.RoleAccountant}
	f.users.On("ListActiveByRoles", mock.Anything, roles).Return([]entity.User{{ID: "acc"}}, nil)
	f.repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.realtime.On("Publish", "acc", mock.Anything).Return()

	created, err := f.uc.Notify(context.Background(), NotificationInput{Roles: roles, Content: "x"})

	require.NoError(t, err)
	assert.Len(t, created, 1)
}

func TestNotifyContinuesPastFailures(t *testing.T) {
	f := newNotifyFixture()
	f.users.On("ListActiveByRoles", mock.Anything, mock.Anything).
		Return([]entity.User{{ID: "a1", Email: "a1@x.com"}, {ID: "a2", Email: "a2@x.com"}}, nil)
	f.repo.On("Create", mock.Anything, mock.MatchedBy(func(n *entity.Notification) bool { return *n.UserID == "a1" })).Return(errors.New("db"))
	f.repo.On("Create", mock.Anything, mock.MatchedBy(func(n *entity.Notification) bool { return *n.UserID == "a2" })).Return(nil)
	f.realtime.On("Publish", "a2", mock.Anything).Return()
	f.queue.On("PublishEmail", mock.Anything, mock.Anything).Return(errors.New("broker down"))

	created, err := f.uc.Notify(context.Background(), NotificationInput{Admins: true, Content: "x", SendEmail: true})

	assert.Error(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, "a2", *created[0].UserID)
	assert.Equal(t, []string{"db", "realtime"}, f.channels)
}

func TestMarkNotificationReadNotOwned(t *testing.T) {
	f := newNotifyFixture()
	f.repo.On("MarkRead", mock.Anything, "u1", "n1").Return(false, nil)

	err := f.uc.MarkNotificationRead(context.Background(), "u1", "n1", "en")

	assert.Equal(t, CodeNotificationNotFound, domainCode(err))
}

func TestListNotificationsCapsLimit(t *testing.T) {
	f := newNotifyFixture()
	f.repo.On("ListByUser", mock.Anything, "u1", true, 20).Return([]entity.Notification{}, nil)

	_, err := f.uc.ListNotifications(context.Background(), "u1", true, 5000)

	require.NoError(t, err)
	f.repo.AssertExpectations(t)
}
