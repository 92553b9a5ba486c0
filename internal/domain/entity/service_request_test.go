package entity

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestServiceType_EveryTypeHasDepartmentRole(t *testing.T) {
	want := map[ServiceType]string{
		ServiceTypeXRay:       "X Ray",
		ServiceTypeUltrasound: "Ultrasound",
		ServiceTypeLab:        "Lab",
		ServiceTypeAudiometry: "Audiometry",
	}
	for _, st := range AllServiceTypes {
		role, ok := st.DepartmentRole()
		assert.True(t, ok, "missing role for %s", st)
		assert.Equal(t, want[st], role)
	}

	_, ok := ServiceType("mri").DepartmentRole()
	assert.False(t, ok)
}

func TestIsKnownRole_CoversDepartmentRoles(t *testing.T) {
	for _, st := range AllServiceTypes {
		role, _ := st.DepartmentRole()
		assert.True(t, IsKnownRole(role), role)
	}
	assert.True(t, IsKnownRole(RoleSecretary))
	assert.False(t, IsKnownRole("lab"))
}

func TestServiceRequestStatus_RankIsDefinedForAll(t *testing.T) {
	seen := map[int]bool{}
	for _, s := range AllServiceRequestStatuses {
		r := s.Rank()
		assert.GreaterOrEqual(t, r, 0, s)
		assert.False(t, seen[r], "duplicate rank for %s", s)
		seen[r] = true
	}
	assert.False(t, ServiceRequestStatus("archived").Valid())
}

func TestDepartmentQueueStatuses_ExcludePending(t *testing.T) {
	assert.NotContains(t, DepartmentQueueStatuses, ServiceRequestStatusPending)
	assert.NotContains(t, DepartmentQueueStatuses, ServiceRequestStatusCancelled)
	assert.Len(t, DepartmentQueueStatuses, 4)
}

func TestServiceRequest_RequiresPayment(t *testing.T) {
	r := &ServiceRequest{}
	assert.False(t, r.RequiresPayment())

	r.Price = decimal.NewNullDecimal(decimal.Zero)
	assert.False(t, r.RequiresPayment())

	r.Price = decimal.NewNullDecimal(decimal.RequireFromString("0.01"))
	assert.True(t, r.RequiresPayment())
}

func TestStatusPatch_ColumnsAndApply(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	by := "desk@clinic.test"
	p := &StatusPatch{Status: ServiceRequestStatusSecretaryConfirmed, SecretaryConfirmedAt: &at, SecretaryConfirmedBy: &by}

	cols := p.Columns()
	assert.Equal(t, ServiceRequestStatusSecretaryConfirmed, cols["status"])
	assert.Equal(t, at, cols["secretary_confirmed_at"])
	assert.Equal(t, by, cols["secretary_confirmed_by"])
	assert.NotContains(t, cols, "completed_at")

	r := &ServiceRequest{Status: ServiceRequestStatusPending}
	p.Apply(r)
	assert.Equal(t, ServiceRequestStatusSecretaryConfirmed, r.Status)
	assert.Equal(t, at, *r.SecretaryConfirmedAt)
	assert.Nil(t, r.CompletedAt)
}
