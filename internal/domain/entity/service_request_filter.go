package entity

import "github.com/google/uuid"

// ServiceRequestFilter is a domain-level filter for querying service requests.
// Used by repository layer to avoid coupling with delivery DTOs.
type ServiceRequestFilter struct {
	ServiceType *ServiceType
	StatusIn    []ServiceRequestStatus
	PatientID   *uuid.UUID
}

// DepartmentQueueFilter returns the worklist filter of one department.
func DepartmentQueueFilter(t ServiceType) *ServiceRequestFilter {
	statuses := make([]ServiceRequestStatus, len(DepartmentQueueStatuses))
	copy(statuses, DepartmentQueueStatuses)
	return &ServiceRequestFilter{
		ServiceType: &t,
		StatusIn:    statuses,
	}
}
