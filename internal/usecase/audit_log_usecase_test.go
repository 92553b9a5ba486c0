package usecase

import (
	"context"
	"errors"
	"testing"

	"clinic-workflow/internal/domain/entity"
	"clinic-workflow/internal/repository/memory"
	"clinic-workflow/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditLogUsecase(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewAuditLogRepository()
	for _, action := range []string{entity.AuditActionServiceRequestCreate, entity.AuditActionServiceRequestConfirm} {
		require.NoError(t, repo.Create(ctx, &entity.AuditLog{Action: action}))
	}
	uc := NewAuditLogUsecase(newTestLogger(), repo)

	list, err := uc.GetAllAuditLogs(ctx, admin, 0)
	require.NoError(t, err)
	require.Equal(t, 2, list.Total)
	assert.Equal(t, entity.AuditActionServiceRequestConfirm, list.Logs[0].Action)

	one, err := uc.GetAuditLog(ctx, admin, list.Logs[1].ID)
	require.NoError(t, err)
	assert.Equal(t, entity.AuditActionServiceRequestCreate, one.Action)

	_, err = uc.GetAuditLog(ctx, admin, 99)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))

	_, err = uc.GetAllAuditLogs(ctx, secretary, 10)
	assert.True(t, errors.Is(err, apperror.ErrPermission))
}
