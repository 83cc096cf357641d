package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelFor(t *testing.T) {
	assert.Equal(t, 1, LevelFor(0))
	assert.Equal(t, 1, LevelFor(499))
	assert.Equal(t, 2, LevelFor(500))
	assert.Equal(t, 3, LevelFor(1000))

	// Negative balances never drop below level 1
	assert.Equal(t, 1, LevelFor(-300))
}

func TestAssignmentStatusIsActive(t *testing.T) {
	assert.True(t, AssignmentAssigned.IsActive())
	assert.True(t, AssignmentConfirmed.IsActive())
	assert.True(t, AssignmentCompleted.IsActive())

	assert.False(t, AssignmentNoShow.IsActive())
	assert.False(t, AssignmentSwapped.IsActive())
	assert.False(t, AssignmentCancelled.IsActive())
}
