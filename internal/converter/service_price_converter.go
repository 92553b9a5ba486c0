package converter

import (
	"clinic-workflow/internal/delivery/dto"
	"clinic-workflow/internal/domain/entity"
)

func ServicePriceToResponse(p *entity.ServicePrice) *dto.ServicePriceResponse {
	if p == nil {
		return nil
	}

	return &dto.ServicePriceResponse{
		ID:             p.ID,
		ServiceType:    string(p.ServiceType),
		ServiceSubtype: p.ServiceSubtype,
		Name:           p.Name,
		NameAr:         p.NameAr,
		Price:          p.Price,
		Currency:       p.Currency,
		UpdatedAt:      p.UpdatedAt,
	}
}

func ServicePricesToResponses(prices []entity.ServicePrice) []dto.ServicePriceResponse {
	responses := make([]dto.ServicePriceResponse, len(prices))
	for i := range prices {
		responses[i] = *ServicePriceToResponse(&prices[i])
	}
	return responses
}
