package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"clinic-workflow/internal/delivery/dto"
	"clinic-workflow/internal/domain/entity"
	"clinic-workflow/internal/repository/memory"
	"clinic-workflow/internal/service"
	"clinic-workflow/pkg/apperror"
	"clinic-workflow/pkg/clock"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type deletionFixture struct {
	repo       *memory.DeletionRequestRepository
	audit      *memory.AuditLogRepository
	dispatcher *recordingDispatcher
	usecase    DeletionRequestUsecase
	user       entity.Actor
}

func newDeletionFixture(t *testing.T) *deletionFixture {
	t.Helper()
	log := newTestLogger()
	f := &deletionFixture{
		repo:       memory.NewDeletionRequestRepository(),
		audit:      memory.NewAuditLogRepository(),
		dispatcher: &recordingDispatcher{},
		user:       entity.Actor{ID: uuid.New(), Email: "maya@example.com", Role: entity.RolePatient},
	}
	f.usecase = NewDeletionRequestUsecase(log, clock.NewFixed(testNow), f.repo, f.dispatcher, service.NewAuditService(log, f.audit))
	return f
}

func TestDeletionRequestCreate_OnePendingPerUser(t *testing.T) {
	f := newDeletionFixture(t)
	ctx := context.Background()

	resp, err := f.usecase.Create(ctx, f.user, &dto.CreateDeletionRequestRequest{Reason: "moving abroad"})
	require.NoError(t, err)
	assert.Equal(t, "pending", resp.Status)
	assert.Equal(t, f.user.Email, resp.UserEmail)
	assert.Equal(t, []string{entity.RoleAdmin}, f.dispatcher.Targets())

	_, err = f.usecase.Create(ctx, f.user, &dto.CreateDeletionRequestRequest{})
	assert.True(t, errors.Is(err, apperror.ErrInvalidTransition))
}

func TestDeletionRequestReview_NotifiesRequesterAndAudits(t *testing.T) {
	f := newDeletionFixture(t)
	ctx := context.Background()
	created, err := f.usecase.Create(ctx, f.user, &dto.CreateDeletionRequestRequest{})
	require.NoError(t, err)

	resp, err := f.usecase.Review(ctx, admin, created.ID, &dto.ReviewDeletionRequestRequest{Decision: "approved"})
	require.NoError(t, err)
	assert.Equal(t, "approved", resp.Status)
	require.NotNil(t, resp.ReviewedBy)
	assert.Equal(t, admin.Email, *resp.ReviewedBy)
	require.NotNil(t, resp.ReviewedAt)
	assert.True(t, resp.ReviewedAt.Equal(testNow))

	msgs := f.dispatcher.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, f.user.Email, msgs[1].Target)
	assert.Equal(t, "Deletion Request Approved", msgs[1].Title)
	assert.Equal(t, []string{entity.AuditActionDeletionRequestReview}, f.audit.Actions())

	_, err = f.usecase.Review(ctx, admin, created.ID, &dto.ReviewDeletionRequestRequest{Decision: "declined"})
	assert.True(t, errors.Is(err, apperror.ErrInvalidTransition))

	// A new request may be filed once the previous one is resolved.
	_, err = f.usecase.Create(ctx, f.user, &dto.CreateDeletionRequestRequest{})
	assert.NoError(t, err)
}

func TestDeletionRequestReview_ConcurrentReviewsApplyOnce(t *testing.T) {
	f := newDeletionFixture(t)
	ctx := context.Background()
	created, err := f.usecase.Create(ctx, f.user, &dto.CreateDeletionRequestRequest{})
	require.NoError(t, err)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			decision := "approved"
			if i%2 == 1 {
				decision = "declined"
			}
			if _, err := f.usecase.Review(ctx, admin, created.ID, &dto.ReviewDeletionRequestRequest{Decision: decision}); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Len(t, f.audit.Actions(), 1)
}

func TestDeletionRequestReview_Validation(t *testing.T) {
	f := newDeletionFixture(t)
	ctx := context.Background()

	_, err := f.usecase.Review(ctx, secretary, uuid.New(), &dto.ReviewDeletionRequestRequest{Decision: "approved"})
	assert.True(t, errors.Is(err, apperror.ErrPermission))

	_, err = f.usecase.Review(ctx, admin, uuid.New(), &dto.ReviewDeletionRequestRequest{Decision: "maybe"})
	assert.True(t, errors.Is(err, apperror.ErrValidation))

	_, err = f.usecase.Review(ctx, admin, uuid.New(), &dto.ReviewDeletionRequestRequest{Decision: "approved"})
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestDeletionRequestList_FiltersByStatus(t *testing.T) {
	f := newDeletionFixture(t)
	ctx := context.Background()
	_, err := f.usecase.Create(ctx, f.user, &dto.CreateDeletionRequestRequest{})
	require.NoError(t, err)

	resp, err := f.usecase.List(ctx, admin, "pending")
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Total)

	resp, err = f.usecase.List(ctx, admin, "approved")
	require.NoError(t, err)
	assert.Zero(t, resp.Total)

	_, err = f.usecase.List(ctx, admin, "lost")
	assert.True(t, errors.Is(err, apperror.ErrValidation))
}
