package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request DTOs

type UpsertServicePriceRequest struct {
	ServiceType    string          `json:"service_type" validate:"required,oneof=xray ultrasound lab audiometry"`
	ServiceSubtype *string         `json:"service_subtype,omitempty" validate:"omitempty,max=100"`
	Name           string          `json:"name" validate:"required,min=2,max=255"`
	NameAr         string          `json:"name_ar" validate:"omitempty,max=255"`
	Price          decimal.Decimal `json:"price"`
	Currency       string          `json:"currency" validate:"omitempty,len=3"`
}

// Response DTOs

type ServicePriceResponse struct {
	ID             uuid.UUID       `json:"id"`
	ServiceType    string          `json:"service_type"`
	ServiceSubtype *string         `json:"service_subtype,omitempty"`
	Name           string          `json:"name"`
	NameAr         string          `json:"name_ar"`
	Price          decimal.Decimal `json:"price"`
	Currency       string          `json:"currency"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

type ServicePriceListResponse struct {
	Prices []ServicePriceResponse `json:"prices"`
	Total  int                    `json:"total"`
}
