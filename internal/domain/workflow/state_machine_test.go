package workflow

import (
	"errors"
	"testing"
	"time"

	"clinic-workflow/internal/domain/entity"
	"clinic-workflow/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	now       = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	secretary = entity.Actor{ID: uuid.New(), Email: "desk@clinic.test", Role: entity.RoleSecretary}
	admin     = entity.Actor{ID: uuid.New(), Email: "admin@clinic.test", Role: entity.RoleAdmin}
	xrayTech  = entity.Actor{ID: uuid.New(), Email: "xray@clinic.test", Role: entity.RoleXRay}
	labTech   = entity.Actor{ID: uuid.New(), Email: "lab@clinic.test", Role: entity.RoleLab}
	doctor    = entity.Actor{ID: uuid.New(), Email: "dr@clinic.test", Role: entity.RoleDoctor}
)

func newRequest(t entity.ServiceType, status entity.ServiceRequestStatus, price *float64) *entity.ServiceRequest {
	r := &entity.ServiceRequest{
		ID:           42,
		PatientEmail: "patient@clinic.test",
		ServiceType:  t,
		Status:       status,
	}
	if price != nil {
		r.Price = decimal.NewNullDecimal(decimal.NewFromFloat(*price))
	}
	return r
}

func ptr(f float64) *float64 { return &f }

func TestDecide_ConfirmPaymentBranching(t *testing.T) {
	tests := []struct {
		name    string
		price   *float64
		want    entity.ServiceRequestStatus
		notices []Notice
	}{
		{
			name:  "positive price requires payment",
			price: ptr(50),
			want:  entity.ServiceRequestStatusPaymentRequired,
			notices: []Notice{
				{Audience: AudiencePatient, Event: NoticePaymentRequired},
			},
		},
		{
			name:  "fractional price requires payment",
			price: ptr(0.5),
			want:  entity.ServiceRequestStatusPaymentRequired,
			notices: []Notice{
				{Audience: AudiencePatient, Event: NoticePaymentRequired},
			},
		},
		{
			name:  "zero price confirms directly",
			price: ptr(0),
			want:  entity.ServiceRequestStatusSecretaryConfirmed,
			notices: []Notice{
				{Audience: AudiencePatient, Event: NoticeConfirmed},
				{Audience: AudienceDepartment, Event: NoticeNewRequest},
			},
		},
		{
			name:  "absent price confirms directly",
			price: nil,
			want:  entity.ServiceRequestStatusSecretaryConfirmed,
			notices: []Notice{
				{Audience: AudiencePatient, Event: NoticeConfirmed},
				{Audience: AudienceDepartment, Event: NoticeNewRequest},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := newRequest(entity.ServiceTypeXRay, entity.ServiceRequestStatusPending, tt.price)

			d, err := Decide(req, ActionConfirm, secretary, now)
			require.NoError(t, err)

			assert.Equal(t, entity.ServiceRequestStatusPending, d.From)
			assert.Equal(t, tt.want, d.To)
			assert.Equal(t, tt.want, d.Patch.Status)
			require.NotNil(t, d.Patch.SecretaryConfirmedAt)
			assert.Equal(t, now, *d.Patch.SecretaryConfirmedAt)
			require.NotNil(t, d.Patch.SecretaryConfirmedBy)
			assert.Equal(t, secretary.Email, *d.Patch.SecretaryConfirmedBy)
			assert.Nil(t, d.Patch.CompletedAt)
			assert.Equal(t, tt.notices, d.Notices)
		})
	}
}

func TestDecide_ConfirmOnlyFromPending(t *testing.T) {
	for _, status := range entity.AllServiceRequestStatuses {
		if status == entity.ServiceRequestStatusPending {
			continue
		}
		req := newRequest(entity.ServiceTypeLab, status, nil)

		d, err := Decide(req, ActionConfirm, admin, now)

		assert.Nil(t, d, status)
		assert.True(t, errors.Is(err, apperror.ErrInvalidTransition), "status %s", status)
	}
}

func TestDecide_ConfirmPaymentRequiresPaid(t *testing.T) {
	req := newRequest(entity.ServiceTypeXRay, entity.ServiceRequestStatusPaymentRequired, ptr(50))

	_, err := Decide(req, ActionConfirmPayment, secretary, now)
	assert.True(t, errors.Is(err, apperror.ErrInvalidTransition))

	failed := entity.PaymentStatusFailed
	req.PaymentStatus = &failed
	_, err = Decide(req, ActionConfirmPayment, secretary, now)
	assert.True(t, errors.Is(err, apperror.ErrInvalidTransition))

	paid := entity.PaymentStatusPaid
	req.PaymentStatus = &paid
	d, err := Decide(req, ActionConfirmPayment, secretary, now)
	require.NoError(t, err)
	assert.Equal(t, entity.ServiceRequestStatusSecretaryConfirmed, d.To)
	assert.Nil(t, d.Patch.SecretaryConfirmedAt, "confirmation timestamp is written once, on Confirm")
	assert.Equal(t, []Notice{
		{Audience: AudiencePatient, Event: NoticePaymentConfirmed},
		{Audience: AudienceDepartment, Event: NoticeReadyForProcessing},
	}, d.Notices)
}

func TestDecide_StartWorkSources(t *testing.T) {
	allowed := map[entity.ServiceRequestStatus]bool{
		entity.ServiceRequestStatusSecretaryConfirmed: true,
		entity.ServiceRequestStatusPaymentRequired:    true,
	}
	for _, status := range entity.AllServiceRequestStatuses {
		req := newRequest(entity.ServiceTypeXRay, status, nil)
		d, err := Decide(req, ActionStartWork, xrayTech, now)
		if allowed[status] {
			require.NoError(t, err, status)
			assert.Equal(t, entity.ServiceRequestStatusInProgress, d.To)
		} else {
			assert.True(t, errors.Is(err, apperror.ErrInvalidTransition), "status %s", status)
		}
	}
}

func TestDecide_CompleteSetsCompletedAt(t *testing.T) {
	req := newRequest(entity.ServiceTypeLab, entity.ServiceRequestStatusInProgress, nil)

	d, err := Decide(req, ActionComplete, labTech, now)
	require.NoError(t, err)

	assert.Equal(t, entity.ServiceRequestStatusCompleted, d.To)
	require.NotNil(t, d.Patch.CompletedAt)
	assert.Equal(t, now, *d.Patch.CompletedAt)
	assert.Equal(t, []Notice{{Audience: AudiencePatient, Event: NoticeCompleted}}, d.Notices)

	req.Status = entity.ServiceRequestStatusSecretaryConfirmed
	_, err = Decide(req, ActionComplete, labTech, now)
	assert.True(t, errors.Is(err, apperror.ErrInvalidTransition))
}

func TestDecide_CancelFromNonTerminal(t *testing.T) {
	for _, status := range entity.AllServiceRequestStatuses {
		req := newRequest(entity.ServiceTypeUltrasound, status, nil)
		d, err := Decide(req, ActionCancel, secretary, now)
		if status.IsTerminal() {
			assert.True(t, errors.Is(err, apperror.ErrInvalidTransition), "status %s", status)
			continue
		}
		require.NoError(t, err, status)
		assert.Equal(t, entity.ServiceRequestStatusCancelled, d.To)
	}
}

func TestDecide_Permissions(t *testing.T) {
	pending := newRequest(entity.ServiceTypeLab, entity.ServiceRequestStatusPending, nil)
	_, err := Decide(pending, ActionConfirm, doctor, now)
	assert.True(t, errors.Is(err, apperror.ErrPermission))

	_, err = Decide(pending, ActionConfirm, labTech, now)
	assert.True(t, errors.Is(err, apperror.ErrPermission))

	confirmed := newRequest(entity.ServiceTypeLab, entity.ServiceRequestStatusSecretaryConfirmed, nil)
	_, err = Decide(confirmed, ActionStartWork, xrayTech, now)
	assert.True(t, errors.Is(err, apperror.ErrPermission), "x-ray staff cannot start lab work")

	_, err = Decide(confirmed, ActionStartWork, admin, now)
	assert.True(t, errors.Is(err, apperror.ErrPermission))

	_, err = Decide(confirmed, ActionStartWork, labTech, now)
	assert.NoError(t, err)
}

func TestDecide_DecisionsFollowGraph(t *testing.T) {
	actors := []entity.Actor{secretary, xrayTech}
	paid := entity.PaymentStatusPaid

	for _, status := range entity.AllServiceRequestStatuses {
		for _, action := range AllActions {
			for _, actor := range actors {
				req := newRequest(entity.ServiceTypeXRay, status, ptr(10))
				req.PaymentStatus = &paid
				d, err := Decide(req, action, actor, now)
				if err != nil {
					continue
				}
				assert.True(t, Allowed(d.From, d.To), "%s: %s -> %s", action, d.From, d.To)
				assert.Greater(t, d.To.Rank(), d.From.Rank(), "%s must move forward", action)
			}
		}
	}
}

func TestAllowed_NoBackwardEdges(t *testing.T) {
	assert.False(t, Allowed(entity.ServiceRequestStatusInProgress, entity.ServiceRequestStatusSecretaryConfirmed))
	assert.False(t, Allowed(entity.ServiceRequestStatusCompleted, entity.ServiceRequestStatusCancelled))
	assert.False(t, Allowed(entity.ServiceRequestStatusCancelled, entity.ServiceRequestStatusPending))
	assert.True(t, Allowed(entity.ServiceRequestStatusPending, entity.ServiceRequestStatusPaymentRequired))
}
