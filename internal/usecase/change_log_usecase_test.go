package usecase

import (
	"context"
	"errors"
	"testing"

	"clinic-workflow/internal/delivery/dto"
	"clinic-workflow/internal/domain/entity"
	"clinic-workflow/internal/repository/memory"
	"clinic-workflow/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newChangeLogFixture(t *testing.T) (*memory.AppointmentChangeLogRepository, *recordingDispatcher, ChangeLogUsecase) {
	t.Helper()
	repo := memory.NewAppointmentChangeLogRepository()
	dispatcher := &recordingDispatcher{}
	return repo, dispatcher, NewChangeLogUsecase(newTestLogger(), repo, dispatcher)
}

func TestChangeLogRecord_NotifiesAdmin(t *testing.T) {
	_, dispatcher, uc := newChangeLogFixture(t)

	resp, err := uc.Record(context.Background(), secretary, &dto.RecordChangeRequest{
		Kind:         "cancellation",
		PatientName:  "Omar Khalil",
		PatientEmail: "omar@example.com",
		Reason:       "Travelling",
		BeforeState:  map[string]interface{}{"date": "2026-03-12"},
	})
	require.NoError(t, err)
	assert.Equal(t, secretary.Email, resp.ChangedBy)
	assert.False(t, resp.AdminNotified)

	msgs := dispatcher.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, entity.RoleAdmin, msgs[0].Target)
	assert.Equal(t, "Appointment Cancelled", msgs[0].Title)
	assert.Contains(t, msgs[0].Message, "Omar Khalil")
	assert.Contains(t, msgs[0].Message, "Travelling")
}

func TestChangeLogRecord_RejectsUnknownKind(t *testing.T) {
	_, dispatcher, uc := newChangeLogFixture(t)

	_, err := uc.Record(context.Background(), secretary, &dto.RecordChangeRequest{Kind: "edit"})
	assert.True(t, errors.Is(err, apperror.ErrValidation))
	assert.Empty(t, dispatcher.Messages())
}

func TestChangeLogList_FiltersByKindAndSearch(t *testing.T) {
	_, _, uc := newChangeLogFixture(t)
	ctx := context.Background()
	for _, req := range []dto.RecordChangeRequest{
		{Kind: "reschedule", PatientName: "Omar Khalil", Reason: "work"},
		{Kind: "cancellation", PatientName: "Lina Saleh", PatientEmail: "lina@example.com", Reason: "Feeling better"},
		{Kind: "reschedule", PatientName: "Sami", PatientEmail: "sami@example.com", Reason: "OMAR asked to swap"},
	} {
		req := req
		_, err := uc.Record(ctx, secretary, &req)
		require.NoError(t, err)
	}

	resp, err := uc.List(ctx, admin, &dto.ChangeLogQuery{Kind: "reschedule"})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Total)
	// Newest first.
	assert.Equal(t, "Sami", resp.Changes[0].PatientName)

	resp, err = uc.List(ctx, admin, &dto.ChangeLogQuery{Search: "omar"})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Total)

	resp, err = uc.List(ctx, admin, &dto.ChangeLogQuery{Kind: "cancellation", Search: "LINA@"})
	require.NoError(t, err)
	require.Equal(t, 1, resp.Total)
	assert.Equal(t, "Lina Saleh", resp.Changes[0].PatientName)

	_, err = uc.List(ctx, labTech, nil)
	assert.True(t, errors.Is(err, apperror.ErrPermission))
}

func TestChangeLogAcknowledge_IsIdempotentAndAdminOnly(t *testing.T) {
	_, _, uc := newChangeLogFixture(t)
	ctx := context.Background()
	rec, err := uc.Record(ctx, secretary, &dto.RecordChangeRequest{Kind: "reschedule", PatientName: "Omar"})
	require.NoError(t, err)

	_, err = uc.Acknowledge(ctx, secretary, rec.ID)
	assert.True(t, errors.Is(err, apperror.ErrPermission))

	for i := 0; i < 2; i++ {
		resp, err := uc.Acknowledge(ctx, admin, rec.ID)
		require.NoError(t, err)
		assert.True(t, resp.AdminNotified)
	}

	_, err = uc.Acknowledge(ctx, admin, 404)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestFilterChanges_EmptySearchKeepsAll(t *testing.T) {
	changes := []entity.AppointmentChangeLog{{PatientName: "a"}, {PatientName: "b"}}
	assert.Len(t, FilterChanges(changes, "  "), 2)
	assert.Len(t, FilterChanges(changes, "B"), 1)
}
