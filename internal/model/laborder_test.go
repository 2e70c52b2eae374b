package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLabOrderTransitions(t *testing.T) {
	cases := []struct {
		from, to LabOrderStatus
		allowed  bool
	}{
		{LabOrderStatusDraft, LabOrderStatusSubmitted, true},
		{LabOrderStatusDraft, LabOrderStatusAcknowledged, false},
		{LabOrderStatusSubmitted, LabOrderStatusAcknowledged, true},
		{LabOrderStatusAcknowledged, LabOrderStatusInProgress, true},
		{LabOrderStatusInProgress, LabOrderStatusCompleted, true},
		{LabOrderStatusCompleted, LabOrderStatusShipped, true},
		{LabOrderStatusShipped, LabOrderStatusDelivered, true},
		{LabOrderStatusShipped, LabOrderStatusReceived, true},
		{LabOrderStatusShipped, LabOrderStatusPatientPickup, true},
		{LabOrderStatusShipped, LabOrderStatusCancelled, false}, // in transit, too late
		{LabOrderStatusPatientPickup, LabOrderStatusPickedUp, true},
		{LabOrderStatusDelivered, LabOrderStatusReceived, false},
		{LabOrderStatusPickedUp, LabOrderStatusDraft, false},
	}

	for _, c := range cases {
		assert.Equal(t, c.allowed, c.from.CanTransition(c.to), "%s -> %s", c.from, c.to)
	}
}

func TestLabOrderCancellableBeforeShipping(t *testing.T) {
	for _, s := range []LabOrderStatus{
		LabOrderStatusDraft,
		LabOrderStatusSubmitted,
		LabOrderStatusAcknowledged,
		LabOrderStatusInProgress,
		LabOrderStatusCompleted,
	} {
		assert.True(t, s.CanTransition(LabOrderStatusCancelled), "%s should be cancellable", s)
	}
}

func TestLabOrderTerminal(t *testing.T) {
	for _, s := range []LabOrderStatus{
		LabOrderStatusDelivered,
		LabOrderStatusReceived,
		LabOrderStatusPickedUp,
		LabOrderStatusCancelled,
	} {
		assert.True(t, s.Terminal(), "%s should be terminal", s)
	}
	assert.False(t, LabOrderStatusPatientPickup.Terminal())
	assert.False(t, LabOrderStatusShipped.Terminal())
}

func TestRemakeTransitions(t *testing.T) {
	assert.True(t, RemakeStatusRequested.CanTransition(RemakeStatusAcknowledged))
	assert.True(t, RemakeStatusInspected.CanTransition(RemakeStatusCompleted))
	assert.False(t, RemakeStatusRequested.CanTransition(RemakeStatusShipped))
	assert.False(t, RemakeStatusCompleted.CanTransition(RemakeStatusCancelled))
	assert.True(t, RemakeStatusCompleted.Terminal())
	assert.True(t, RemakeStatusCancelled.Terminal())
}
