package appointment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextStatus(t *testing.T) {
	next, ok := NextStatus(StatusConfirmed)
	assert.True(t, ok)
	assert.Equal(t, StatusInChair, next)

	next, ok = NextStatus(StatusInChair)
	assert.True(t, ok)
	assert.Equal(t, StatusCompleted, next)
}

func TestNextStatusTerminality(t *testing.T) {
	// COMPLETED is terminal, PENDING is payment-gated, and an unknown
	// status (e.g. a deleted/cancelled appointment) has no transition.
	for _, s := range []Status{StatusCompleted, StatusPending, Status("CANCELLED"), Status("")} {
		_, ok := NextStatus(s)
		assert.False(t, ok, "status %q must have no next", s)
	}
}

func TestStatusLookups(t *testing.T) {
	for _, s := range []Status{StatusPending, StatusConfirmed, StatusInChair, StatusCompleted} {
		assert.True(t, IsValid(s))
		assert.NotEmpty(t, Label(s))
		assert.NotEmpty(t, Color(s))
	}

	assert.False(t, IsValid(Status("CANCELLED")))
	assert.Empty(t, Label(Status("CANCELLED")))
}
