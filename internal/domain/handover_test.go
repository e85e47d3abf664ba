package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandoverTask_HappyPath(t *testing.T) {
	task := NewHandoverTask("task-1", "book-1", HandoverCodeExchange, "请温柔对待这本书")
	assert.Equal(t, HandoverForm, task.State)
	assert.False(t, task.Committed())

	require.NoError(t, task.Confirm())
	assert.Equal(t, HandoverProcessing, task.State)
	assert.False(t, task.Committed())

	require.NoError(t, task.Complete("BT-7391"))
	assert.Equal(t, HandoverSuccess, task.State)
	assert.Equal(t, "BT-7391", task.Credential)
	assert.True(t, task.Committed())
}

func TestHandoverTask_InvalidTransitions(t *testing.T) {
	task := NewHandoverTask("task-1", "book-1", HandoverDropOff, "")

	// Cannot complete straight from Form.
	assert.Error(t, task.Complete("locker-3"))

	require.NoError(t, task.Confirm())
	// Confirm is not re-entrant.
	assert.Error(t, task.Confirm())

	require.NoError(t, task.Complete("locker-3"))
	// Terminal state: nothing moves from Success.
	assert.Error(t, task.Confirm())
	assert.Error(t, task.Complete("locker-4"))
}

func TestHandoverTask_InvalidMethod(t *testing.T) {
	task := NewHandoverTask("task-1", "book-1", HandoverMethod("pigeon"), "")
	assert.Error(t, task.Confirm())
	assert.Equal(t, HandoverForm, task.State, "failed confirm must not advance state")
}

func TestHandoverMethod_Valid(t *testing.T) {
	assert.True(t, HandoverCodeExchange.Valid())
	assert.True(t, HandoverDropOff.Valid())
	assert.False(t, HandoverMethod("").Valid())
	assert.False(t, HandoverMethod("mail").Valid())
}

func TestBookStatus_Valid(t *testing.T) {
	assert.True(t, BookAvailable.Valid())
	assert.True(t, BookTraveling.Valid())
	assert.True(t, BookReserved.Valid())
	assert.False(t, BookStatus("lost").Valid())
}
