package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opaline-dev/troupe/internal/state"
)

func TestCoderPrompt(t *testing.T) {
	messages := Coder("Implement add(a, b).", "", "")
	require.Len(t, messages, 2)
	assert.Equal(t, state.KindSystem, messages[0].Kind)
	assert.Equal(t, state.KindHuman, messages[1].Kind)
	assert.Contains(t, messages[1].Content, "## Task\nImplement add(a, b).")
	assert.NotContains(t, messages[1].Content, "## Existing Code")
	assert.NotContains(t, messages[1].Content, "## Reviewer Feedback")
}

func TestCoderPromptWithFeedback(t *testing.T) {
	messages := Coder("task", "func add() {}", "fix the math")
	body := messages[1].Content
	assert.Contains(t, body, "## Existing Code")
	assert.Contains(t, body, "func add() {}")
	assert.Contains(t, body, "## Reviewer Feedback (MUST ADDRESS)")
	assert.Contains(t, body, "fix the math")
}

func TestReviewerPrompt(t *testing.T) {
	messages := Reviewer("func add() {}", "task", 2, "previous notes")
	require.Len(t, messages, 2)
	body := messages[1].Content
	assert.Contains(t, body, "Iteration 2")
	assert.Contains(t, body, "## Previous Feedback")
	assert.Contains(t, body, "APPROVED")
	assert.Contains(t, body, "CHANGES_REQUESTED")
}

func TestTesterPrompt(t *testing.T) {
	messages := Tester("func add() {}", "task")
	require.Len(t, messages, 2)
	assert.Contains(t, messages[1].Content, "## Code to Test")
}

func TestOrchestratorPrompt(t *testing.T) {
	messages := Orchestrator("task", []string{"coder", "reviewer"}, "No plan created yet.")
	require.Len(t, messages, 2)
	assert.Contains(t, messages[0].Content, "1. [agent] description")
	assert.Contains(t, messages[1].Content, "coder, reviewer")
	assert.Contains(t, messages[1].Content, "## Current State")
}
