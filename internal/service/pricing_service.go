package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"clinic-workflow/internal/domain/entity"
	"clinic-workflow/internal/domain/repository"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

const RedisPriceKeyPrefix = "service_price:"

// PricingService resolves catalog entries with a Redis cache-aside in front of
// the service_prices table.
type PricingService interface {
	// Lookup returns the catalog entry for (serviceType, subtype) or nil when
	// the catalog has none.
	Lookup(ctx context.Context, serviceType entity.ServiceType, subtype string) (*entity.ServicePrice, error)
	Invalidate(ctx context.Context, serviceType entity.ServiceType, subtype string)
}

type pricingService struct {
	priceRepo   repository.ServicePriceRepository
	redisClient *redis.Client
	ttl         time.Duration
	log         *logrus.Logger
	group       singleflight.Group
}

func NewPricingService(priceRepo repository.ServicePriceRepository, redisClient *redis.Client, ttl time.Duration, log *logrus.Logger) PricingService {
	return &pricingService{
		priceRepo:   priceRepo,
		redisClient: redisClient,
		ttl:         ttl,
		log:         log,
	}
}

func priceKey(serviceType entity.ServiceType, subtype string) string {
	return fmt.Sprintf("%s%s:%s", RedisPriceKeyPrefix, serviceType, subtype)
}

func (s *pricingService) Lookup(ctx context.Context, serviceType entity.ServiceType, subtype string) (*entity.ServicePrice, error) {
	key := priceKey(serviceType, subtype)

	cached, err := s.redisClient.Get(ctx, key).Bytes()
	if err == nil {
		var price entity.ServicePrice
		if err := json.Unmarshal(cached, &price); err == nil {
			return &price, nil
		}
		s.log.Debugf("Discarding undecodable cached price %s", key)
	} else if !errors.Is(err, redis.Nil) {
		s.log.Debugf("Failed to read cached price %s: %+v", key, err)
	}

	// Concurrent misses for the same key share one database query.
	// The load is detached from the caller so one cancelled request does not
	// fail the others waiting on the same key.
	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), redisOpTimeout)
		defer cancel()

		price, err := s.priceRepo.FindByTypeAndSubtype(loadCtx, serviceType, subtype)
		if err != nil || price == nil {
			return price, err
		}
		if payload, err := json.Marshal(price); err == nil {
			if err := s.redisClient.Set(loadCtx, key, payload, s.ttl).Err(); err != nil {
				s.log.Debugf("Failed to cache price %s: %+v", key, err)
			}
		}
		return price, nil
	})
	if err != nil {
		return nil, fmt.Errorf("lookup price %s: %w", key, err)
	}
	price, _ := v.(*entity.ServicePrice)
	return price, nil
}

func (s *pricingService) Invalidate(ctx context.Context, serviceType entity.ServiceType, subtype string) {
	if err := s.redisClient.Del(ctx, priceKey(serviceType, subtype)).Err(); err != nil {
		s.log.Warnf("Failed to invalidate cached price: %+v", err)
	}
}
