package appointment

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mzansicare/booking-api/internal/model"
	apperrors "github.com/mzansicare/booking-api/pkg/errors"
)

func TestCanTransition(t *testing.T) {
	allowed := []struct {
		from, to model.AppointmentStatus
	}{
		{model.AppointmentStatusPending, model.AppointmentStatusConfirmed},
		{model.AppointmentStatusPending, model.AppointmentStatusCancelled},
		{model.AppointmentStatusPending, model.AppointmentStatusRescheduled},
		{model.AppointmentStatusConfirmed, model.AppointmentStatusCancelled},
		{model.AppointmentStatusConfirmed, model.AppointmentStatusCompleted},
		{model.AppointmentStatusConfirmed, model.AppointmentStatusNoShow},
		{model.AppointmentStatusConfirmed, model.AppointmentStatusRescheduled},
	}
	for _, tt := range allowed {
		assert.True(t, CanTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}

	denied := []struct {
		from, to model.AppointmentStatus
	}{
		{model.AppointmentStatusPending, model.AppointmentStatusCompleted},
		{model.AppointmentStatusPending, model.AppointmentStatusNoShow},
		{model.AppointmentStatusCancelled, model.AppointmentStatusPending},
		{model.AppointmentStatusCancelled, model.AppointmentStatusConfirmed},
		{model.AppointmentStatusCompleted, model.AppointmentStatusCancelled},
		{model.AppointmentStatusNoShow, model.AppointmentStatusConfirmed},
		{model.AppointmentStatusRescheduled, model.AppointmentStatusPending},
		{model.AppointmentStatusRescheduled, model.AppointmentStatusConfirmed},
	}
	for _, tt := range denied {
		assert.False(t, CanTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestTransitionAppendsHistory(t *testing.T) {
	actor := uuid.New()
	created := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	apt := &model.Appointment{
		Status:        model.AppointmentStatusPending,
		StatusHistory: InitialHistory(actor, created),
	}

	confirmedAt := created.Add(time.Hour)
	require.NoError(t, Transition(apt, model.AppointmentStatusConfirmed, actor, "", confirmedAt))
	assert.Equal(t, model.AppointmentStatusConfirmed, apt.Status)
	assert.Equal(t, confirmedAt, apt.UpdatedAt)
	require.Len(t, apt.StatusHistory, 2)

	cancelledAt := created.Add(2 * time.Hour)
	require.NoError(t, Transition(apt, model.AppointmentStatusCancelled, actor, "patient request", cancelledAt))
	require.Len(t, apt.StatusHistory, 3)

	// Earlier entries are never rewritten, and the last entry always
	// matches the current status.
	assert.Equal(t, model.AppointmentStatusPending, apt.StatusHistory[0].Status)
	assert.Equal(t, model.AppointmentStatusConfirmed, apt.StatusHistory[1].Status)
	last := apt.StatusHistory.Last()
	require.NotNil(t, last)
	assert.Equal(t, apt.Status, last.Status)
	assert.Equal(t, "patient request", last.Reason)
	assert.Equal(t, actor, last.ActorID)
}

func TestTransitionRejectedLeavesAppointmentUntouched(t *testing.T) {
	actor := uuid.New()
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	apt := &model.Appointment{
		Status:        model.AppointmentStatusPending,
		StatusHistory: InitialHistory(actor, now),
	}

	err := Transition(apt, model.AppointmentStatusCompleted, actor, "", now.Add(time.Hour))
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrInvalidTransition, apperrors.CodeOf(err))
	assert.Equal(t, model.AppointmentStatusPending, apt.Status)
	assert.Len(t, apt.StatusHistory, 1)
}

func TestInitialHistory(t *testing.T) {
	actor := uuid.New()
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	history := InitialHistory(actor, now)
	require.Len(t, history, 1)
	assert.Equal(t, model.AppointmentStatusPending, history[0].Status)
	assert.Equal(t, actor, history[0].ActorID)
	assert.Equal(t, now, history[0].Timestamp)
}
