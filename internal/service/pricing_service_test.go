package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"clinic-workflow/internal/domain/entity"
	"clinic-workflow/internal/repository/memory"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedPrice(t *testing.T, repo *memory.ServicePriceRepository, serviceType entity.ServiceType, subtype string, price string) {
	t.Helper()
	var sub *string
	if subtype != "" {
		sub = &subtype
	}
	require.NoError(t, repo.Upsert(context.Background(), &entity.ServicePrice{
		ServiceType:    serviceType,
		ServiceSubtype: sub,
		Name:           "Blood panel",
		NameAr:         "فحص دم",
		Price:          decimal.RequireFromString(price),
		Currency:       "ILS",
	}))
}

func TestPricingService_CachesLookups(t *testing.T) {
	mr, client := newTestRedis(t)
	repo := memory.NewServicePriceRepository()
	seedPrice(t, repo, entity.ServiceTypeLab, "cbc", "120.50")

	svc := NewPricingService(repo, client, time.Minute, newTestLogger())
	ctx := context.Background()

	price, err := svc.Lookup(ctx, entity.ServiceTypeLab, "cbc")
	require.NoError(t, err)
	require.NotNil(t, price)
	assert.Equal(t, "Blood panel", price.Name)
	assert.True(t, price.Price.Equal(decimal.RequireFromString("120.50")))
	assert.True(t, mr.Exists(priceKey(entity.ServiceTypeLab, "cbc")))

	again, err := svc.Lookup(ctx, entity.ServiceTypeLab, "cbc")
	require.NoError(t, err)
	assert.Equal(t, "فحص دم", again.NameAr)
	assert.Equal(t, 1, repo.Calls, "second lookup is served from Redis")

	svc.Invalidate(ctx, entity.ServiceTypeLab, "cbc")
	assert.False(t, mr.Exists(priceKey(entity.ServiceTypeLab, "cbc")))
}

func TestPricingService_MissingEntryIsNil(t *testing.T) {
	_, client := newTestRedis(t)
	svc := NewPricingService(memory.NewServicePriceRepository(), client, time.Minute, newTestLogger())

	price, err := svc.Lookup(context.Background(), entity.ServiceTypeXRay, "chest")
	require.NoError(t, err)
	assert.Nil(t, price)
}

func TestPricingService_RepositoryErrorIsReturned(t *testing.T) {
	_, client := newTestRedis(t)
	repo := memory.NewServicePriceRepository()
	repo.Err = errors.New("relation \"service_prices\" does not exist")
	svc := NewPricingService(repo, client, time.Minute, newTestLogger())

	_, err := svc.Lookup(context.Background(), entity.ServiceTypeLab, "")
	assert.Error(t, err)
}

func TestPricingService_ConcurrentLookupsAgree(t *testing.T) {
	_, client := newTestRedis(t)
	repo := memory.NewServicePriceRepository()
	seedPrice(t, repo, entity.ServiceTypeAudiometry, "", "80")
	svc := NewPricingService(repo, client, time.Minute, newTestLogger())

	var wg sync.WaitGroup
	results := make([]*entity.ServicePrice, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = svc.Lookup(context.Background(), entity.ServiceTypeAudiometry, "")
		}(i)
	}
	wg.Wait()

	for _, price := range results {
		require.NotNil(t, price)
		assert.True(t, price.Price.Equal(decimal.NewFromInt(80)))
	}
}

type contextCheckingPrices struct {
	*memory.ServicePriceRepository
}

func (r contextCheckingPrices) FindByTypeAndSubtype(ctx context.Context, serviceType entity.ServiceType, subtype string) (*entity.ServicePrice, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.ServicePriceRepository.FindByTypeAndSubtype(ctx, serviceType, subtype)
}

func TestPricingService_SharedLoadIgnoresCallerCancellation(t *testing.T) {
	mr, client := newTestRedis(t)
	repo := memory.NewServicePriceRepository()
	seedPrice(t, repo, entity.ServiceTypeLab, "cbc", "120.50")
	svc := NewPricingService(contextCheckingPrices{repo}, client, time.Minute, newTestLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	price, err := svc.Lookup(ctx, entity.ServiceTypeLab, "cbc")
	require.NoError(t, err)
	require.NotNil(t, price)
	assert.True(t, mr.Exists(priceKey(entity.ServiceTypeLab, "cbc")))
}
