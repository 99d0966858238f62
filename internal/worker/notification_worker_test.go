package worker

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-mgmt-api/internal/models"
	"github.com/noah-isme/course-mgmt-api/pkg/jobs"
	"github.com/noah-isme/course-mgmt-api/pkg/mailer"
)

type mockUserLookup struct {
	user *models.User
}

func (m *mockUserLookup) FindByID(ctx context.Context, id string) (*models.User, error) {
	if m.user == nil || m.user.ID != id {
		return nil, sql.ErrNoRows
	}
	return m.user, nil
}

type mockNotificationWriter struct {
	created []*models.Notification
	fail    bool
}

func (m *mockNotificationWriter) Create(ctx context.Context, notification *models.Notification) error {
	if m.fail {
		return errors.New("insert failed")
	}
	m.created = append(m.created, notification)
	return nil
}

type mockMailer struct {
	sent []mailer.Message
	fail bool
}

func (m *mockMailer) Send(ctx context.Context, msg mailer.Message) error {
	if m.fail {
		return errors.New("smtp unavailable")
	}
	m.sent = append(m.sent, msg)
	return nil
}

func testUser() *models.User {
	return &models.User{ID: "fac-1", FirstName: "Dana", Email: "dana@example.com", Role: models.RoleFacilitator}
}

func TestHandleReminderPersistsAndMails(t *testing.T) {
	store := &mockNotificationWriter{}
	mail := &mockMailer{}
	w := NewNotificationWorker(&mockUserLookup{user: testUser()}, store, mail, nil, nil)

	err := w.Handle(context.Background(), jobs.Envelope{
		ID:     "job-1",
		Type:   models.JobFacilitatorLogReminder,
		UserID: "fac-1",
		Data:   map[string]interface{}{"week": float64(12), "year": float64(2026)},
	})
	require.NoError(t, err)

	require.Len(t, store.created, 1)
	n := store.created[0]
	assert.Equal(t, "fac-1", n.UserID)
	assert.Equal(t, "Weekly Activity Log Reminder", n.Title)
	assert.Equal(t, models.NotificationReminder, n.Type)
	assert.Contains(t, n.Message, "week 12")
	assert.NotEmpty(t, n.Metadata)

	require.Len(t, mail.sent, 1)
	assert.Equal(t, "dana@example.com", mail.sent[0].To)
	assert.Equal(t, n.Title, mail.sent[0].Subject)
}

func TestHandleManagerAlertNamesFacilitator(t *testing.T) {
	store := &mockNotificationWriter{}
	manager := &models.User{ID: "mgr-1", FirstName: "Mia", Email: "mia@example.com", Role: models.RoleManager}
	w := NewNotificationWorker(&mockUserLookup{user: manager}, store, &mockMailer{}, nil, nil)

	err := w.Handle(context.Background(), jobs.Envelope{
		Type:   models.JobManagerAlert,
		UserID: "mgr-1",
		Data: map[string]interface{}{
			"week":             float64(12),
			"facilitator_name": "Dana Osei",
		},
	})
	require.NoError(t, err)

	require.Len(t, store.created, 1)
	assert.Equal(t, "Missing Activity Log", store.created[0].Title)
	assert.Contains(t, store.created[0].Message, "Dana Osei")
	assert.Equal(t, models.NotificationAlert, store.created[0].Type)
}

func TestHandleDropsUnknownRecipient(t *testing.T) {
	store := &mockNotificationWriter{}
	w := NewNotificationWorker(&mockUserLookup{}, store, &mockMailer{}, nil, nil)

	err := w.Handle(context.Background(), jobs.Envelope{
		Type:   models.JobFacilitatorLogReminder,
		UserID: "ghost",
	})
	require.NoError(t, err)
	assert.Empty(t, store.created)
}

func TestHandleDropsUnknownJobType(t *testing.T) {
	store := &mockNotificationWriter{}
	w := NewNotificationWorker(&mockUserLookup{user: testUser()}, store, &mockMailer{}, nil, nil)

	err := w.Handle(context.Background(), jobs.Envelope{Type: "promo_blast", UserID: "fac-1"})
	require.NoError(t, err)
	assert.Empty(t, store.created)
}

func TestHandleReturnsErrorForRetry(t *testing.T) {
	w := NewNotificationWorker(&mockUserLookup{user: testUser()}, &mockNotificationWriter{fail: true}, &mockMailer{}, nil, nil)

	err := w.Handle(context.Background(), jobs.Envelope{
		Type:   models.JobFacilitatorLogReminder,
		UserID: "fac-1",
	})
	require.Error(t, err)

	mail := &mockMailer{fail: true}
	w = NewNotificationWorker(&mockUserLookup{user: testUser()}, &mockNotificationWriter{}, mail, nil, nil)
	err = w.Handle(context.Background(), jobs.Envelope{
		Type:   models.JobFacilitatorLogMissed,
		UserID: "fac-1",
	})
	require.Error(t, err)
}
