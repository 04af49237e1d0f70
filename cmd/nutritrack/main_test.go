package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nutritrack/internal/nutrition"
)

func TestRootCommands(t *testing.T) {
	root := newRootCmd()
	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["serve"])
	assert.True(t, names["migrate"])
	assert.True(t, names["goals"])
}

func TestGoalsCommand(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"goals", "--weight", "70", "--height", "175", "--age", "25", "--sex", "male"})

	require.NoError(t, root.Execute())

	var goals nutrition.Goals
	require.NoError(t, json.Unmarshal(out.Bytes(), &goals))
	assert.Equal(t, 2594, goals.DailyCalories)
	assert.Equal(t, 162, goals.DailyProtein)
	assert.Equal(t, 324, goals.DailyCarbs)
	assert.Equal(t, 72, goals.DailyFat)
}

func TestGoalsCommandRejectsMissingProfile(t *testing.T) {
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"goals", "--weight", "70"})
	assert.Error(t, root.Execute())
}
