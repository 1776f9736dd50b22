package notification

import (
	"testing"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecutionAssignedTask_PreservesEventIdentity(t *testing.T) {
	event := newAssignedEvent(uuid.New(), uuid.New())

	task, err := NewExecutionAssignedTask(PayloadFromEvent(event))
	require.NoError(t, err)
	assert.Equal(t, TaskVendorExecutionAssigned, task.Type())

	payload, err := ParseExecutionAssignedPayload(task)
	require.NoError(t, err)
	rebuilt, err := payload.Event()
	require.NoError(t, err)

	assert.Equal(t, event.EventID(), rebuilt.EventID())
	assert.Equal(t, event.EventType(), rebuilt.EventType())
	assert.Equal(t, event.PurchaseOrderID, rebuilt.AggregateID())
	assert.Equal(t, event.VendorID, rebuilt.VendorID)
	assert.Equal(t, "J00042-ACME.1", rebuilt.ExecutionID)
	assert.True(t, event.OccurredAt().Equal(rebuilt.OccurredAt()))
}

func TestExecutionAssignedPayload_InvalidID(t *testing.T) {
	payload := PayloadFromEvent(newAssignedEvent(uuid.New(), uuid.New()))
	payload.VendorID = "not-a-uuid"

	_, err := payload.Event()
	assert.Error(t, err)
}

func TestParseExecutionAssignedPayload_Malformed(t *testing.T) {
	_, err := ParseExecutionAssignedPayload(asynq.NewTask(TaskVendorExecutionAssigned, []byte("{")))
	assert.Error(t, err)
}
