package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ServicePrice is one catalog entry keyed by (service_type, service_subtype).
type ServicePrice struct {
	ID             uuid.UUID       `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	ServiceType    ServiceType     `gorm:"type:varchar(20);not null" json:"service_type"`
	ServiceSubtype *string         `gorm:"type:varchar(100)" json:"service_subtype,omitempty"`
	Name           string          `gorm:"type:varchar(255);not null" json:"name"`
	NameAr         string          `gorm:"type:varchar(255)" json:"name_ar"`
	Price          decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Currency       string          `gorm:"type:varchar(3);not null;default:'ILS'" json:"currency"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (ServicePrice) TableName() string {
	return "service_prices"
}

// ServiceName is the display decoration attached to a request on read.
type ServiceName struct {
	Name     string          `json:"name"`
	NameAr   string          `json:"name_ar"`
	Price    decimal.Decimal `json:"price"`
	Currency string          `json:"currency"`
}

// Locale selects which catalog name is displayed.
type Locale string

const (
	LocaleEnglish Locale = "en"
	LocaleArabic  Locale = "ar"
)

func ParseLocale(s string) Locale {
	if Locale(s) == LocaleArabic {
		return LocaleArabic
	}
	return LocaleEnglish
}
