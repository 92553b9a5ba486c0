package validator

import (
	"errors"
	"testing"

	"clinic-workflow/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Email string `json:"patient_email" validate:"required,email"`
	Kind  string `json:"kind" validate:"required,oneof=reschedule cancellation"`
	ID    string `json:"doctor_id" validate:"required,uuid"`
}

func TestCheckReportsJSONFieldNames(t *testing.T) {
	v := NewValidator()

	err := v.Check("create thing", &sample{Email: "nope", Kind: "other", ID: "42"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrValidation))

	var appErr *apperror.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "patient_email must be a valid email address", appErr.Fields["patient_email"])
	assert.Equal(t, "kind must be one of: reschedule, cancellation", appErr.Fields["kind"])
	assert.Equal(t, "doctor_id must be a valid UUID", appErr.Fields["doctor_id"])
}

func TestCheckPassesValidInput(t *testing.T) {
	v := NewValidator()

	err := v.Check("create thing", &sample{
		Email: "a@clinic.test",
		Kind:  "reschedule",
		ID:    "6f1c2f4e-8a1b-4c3d-9e2f-0a1b2c3d4e5f",
	})
	assert.NoError(t, err)
}
