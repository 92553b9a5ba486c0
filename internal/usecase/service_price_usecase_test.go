package usecase

import (
	"context"
	"errors"
	"testing"

	"clinic-workflow/internal/delivery/dto"
	"clinic-workflow/internal/domain/entity"
	"clinic-workflow/internal/repository/memory"
	"clinic-workflow/internal/service"
	"clinic-workflow/pkg/apperror"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServicePriceUpsert_InvalidatesCacheAndAudits(t *testing.T) {
	log := newTestLogger()
	ctx := context.Background()
	repo := memory.NewServicePriceRepository()
	audit := memory.NewAuditLogRepository()
	pricing := newFakePricing()
	uc := NewServicePriceUsecase(log, repo, pricing, service.NewAuditService(log, audit))

	sub := " chest "
	resp, err := uc.Upsert(ctx, admin, &dto.UpsertServicePriceRequest{
		ServiceType:    "xray",
		ServiceSubtype: &sub,
		Name:           "Chest X-ray",
		Price:          decimal.RequireFromString("120.50"),
	})
	require.NoError(t, err)
	assert.Equal(t, "ILS", resp.Currency)
	require.NotNil(t, resp.ServiceSubtype)
	assert.Equal(t, "chest", *resp.ServiceSubtype)
	assert.Equal(t, []string{"xray|chest"}, pricing.invalidated)

	again, err := uc.Upsert(ctx, admin, &dto.UpsertServicePriceRequest{
		ServiceType:    "xray",
		ServiceSubtype: &sub,
		Name:           "Chest X-ray",
		Price:          decimal.RequireFromString("130"),
	})
	require.NoError(t, err)
	assert.Equal(t, resp.ID, again.ID)

	list, err := uc.List(ctx, "xray")
	require.NoError(t, err)
	require.Equal(t, 1, list.Total)
	assert.True(t, list.Prices[0].Price.Equal(decimal.RequireFromString("130")))
	assert.Equal(t, []string{entity.AuditActionServicePriceUpsert, entity.AuditActionServicePriceUpsert}, audit.Actions())
}

func TestServicePriceUpsert_Rejections(t *testing.T) {
	log := newTestLogger()
	uc := NewServicePriceUsecase(log, memory.NewServicePriceRepository(), newFakePricing(), service.NewAuditService(log, memory.NewAuditLogRepository()))
	ctx := context.Background()

	_, err := uc.Upsert(ctx, secretary, &dto.UpsertServicePriceRequest{ServiceType: "lab", Name: "Panel"})
	assert.True(t, errors.Is(err, apperror.ErrPermission))

	_, err = uc.Upsert(ctx, admin, &dto.UpsertServicePriceRequest{ServiceType: "lab", Name: "Panel", Price: decimal.RequireFromString("-5")})
	assert.True(t, errors.Is(err, apperror.ErrValidation))

	_, err = uc.List(ctx, "mri")
	assert.True(t, errors.Is(err, apperror.ErrValidation))
}
