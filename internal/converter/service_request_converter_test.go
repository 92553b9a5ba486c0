package converter

import (
	"testing"

	"clinic-workflow/internal/domain/entity"

	"github.com/stretchr/testify/assert"
)

func TestServiceRequestToResponse_DisplayNameFollowsLocale(t *testing.T) {
	paid := entity.PaymentStatusPaid
	r := &entity.ServiceRequest{
		ID:            7,
		ServiceType:   entity.ServiceTypeLab,
		ServiceName:   "Blood count",
		ServiceNameAr: "تعداد الدم",
		PaymentStatus: &paid,
		Status:        entity.ServiceRequestStatusSecretaryConfirmed,
	}

	en := ServiceRequestToResponse(r, entity.LocaleEnglish)
	ar := ServiceRequestToResponse(r, entity.LocaleArabic)

	assert.Equal(t, "Blood count", en.DisplayName)
	assert.Equal(t, "تعداد الدم", ar.DisplayName)
	assert.Equal(t, "lab", en.ServiceType)
	assert.Equal(t, "secretary_confirmed", en.Status)
	if assert.NotNil(t, en.PaymentStatus) {
		assert.Equal(t, "paid", *en.PaymentStatus)
	}
}

func TestServiceRequestToResponse_ArabicFallsBackToEnglish(t *testing.T) {
	r := &entity.ServiceRequest{ServiceName: "Chest X-ray"}

	assert.Equal(t, "Chest X-ray", ServiceRequestToResponse(r, entity.LocaleArabic).DisplayName)
	assert.Nil(t, ServiceRequestToResponse(nil, entity.LocaleEnglish))
}
