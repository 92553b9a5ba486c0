package converter

import (
	"clinic-workflow/internal/delivery/dto"
	"clinic-workflow/internal/domain/entity"
)

// ServiceRequestToResponse converts a ServiceRequest entity to its DTO.
// DisplayName picks the catalog name for locale, falling back to English.
func ServiceRequestToResponse(r *entity.ServiceRequest, locale entity.Locale) *dto.ServiceRequestResponse {
	if r == nil {
		return nil
	}

	resp := &dto.ServiceRequestResponse{
		ID:                   r.ID,
		PatientID:            r.PatientID,
		PatientEmail:         r.PatientEmail,
		PatientName:          r.PatientName,
		DoctorID:             r.DoctorID,
		DoctorName:           r.DoctorName,
		ServiceType:          string(r.ServiceType),
		ServiceSubtype:       r.ServiceSubtype,
		ServiceName:          r.ServiceName,
		ServiceNameAr:        r.ServiceNameAr,
		DisplayName:          displayName(r.ServiceName, r.ServiceNameAr, locale),
		Price:                r.Price,
		Currency:             r.Currency,
		Status:               string(r.Status),
		Notes:                r.Notes,
		SecretaryConfirmedAt: r.SecretaryConfirmedAt,
		SecretaryConfirmedBy: r.SecretaryConfirmedBy,
		CompletedAt:          r.CompletedAt,
		CreatedAt:            r.CreatedAt,
		UpdatedAt:            r.UpdatedAt,
	}
	if r.PaymentStatus != nil {
		ps := string(*r.PaymentStatus)
		resp.PaymentStatus = &ps
	}
	return resp
}

func ServiceRequestsToResponses(requests []entity.ServiceRequest, locale entity.Locale) []dto.ServiceRequestResponse {
	responses := make([]dto.ServiceRequestResponse, len(requests))
	for i := range requests {
		responses[i] = *ServiceRequestToResponse(&requests[i], locale)
	}
	return responses
}

func displayName(en, ar string, locale entity.Locale) string {
	if locale == entity.LocaleArabic && ar != "" {
		return ar
	}
	return en
}
