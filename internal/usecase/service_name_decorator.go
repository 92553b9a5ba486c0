package usecase

import (
	"context"

	"clinic-workflow/internal/domain/entity"
	"clinic-workflow/internal/service"

	"github.com/sirupsen/logrus"
)

// serviceNameDecorator fills ServiceName/ServiceNameAr from the price catalog.
// Lookup failures leave the names empty; they never fail the read.
type serviceNameDecorator struct {
	pricing service.PricingService
	log     *logrus.Logger
}

func (d *serviceNameDecorator) decorate(ctx context.Context, requests []entity.ServiceRequest) {
	if d.pricing == nil {
		return
	}

	type key struct {
		serviceType entity.ServiceType
		subtype     string
	}
	seen := make(map[key]*entity.ServicePrice)

	for i := range requests {
		r := &requests[i]
		k := key{r.ServiceType, r.Subtype()}
		price, ok := seen[k]
		if !ok {
			var err error
			price, err = d.pricing.Lookup(ctx, r.ServiceType, k.subtype)
			if err != nil {
				d.log.Debugf("Failed to resolve service name for %s/%s: %+v", k.serviceType, k.subtype, err)
			}
			seen[k] = price
		}
		if price != nil {
			r.ServiceName = price.Name
			r.ServiceNameAr = price.NameAr
		}
	}
}

func (d *serviceNameDecorator) decorateOne(ctx context.Context, r *entity.ServiceRequest) {
	rows := []entity.ServiceRequest{*r}
	d.decorate(ctx, rows)
	r.ServiceName = rows[0].ServiceName
	r.ServiceNameAr = rows[0].ServiceNameAr
}
