// Package prompt builds the message lists handed to the reasoning engine.
// Each builder pins the wire format its role parses back out of the
// response (fenced code blocks, APPROVED/CHANGES_REQUESTED verdicts,
// numbered "[role] task" plan lines).
package prompt

import (
	"fmt"
	"strings"

	"github.com/opaline-dev/troupe/internal/state"
)

const coderSystem = `You are an expert software engineer. Write code that exactly fulfills
the given requirements. Return complete, working code with no placeholders.
Output ONLY the code, wrapped in a markdown code block.`

const reviewerSystem = `You are a senior code reviewer. Review the code for correctness and
completeness against the requirements. Start your response with your
decision: APPROVED or CHANGES_REQUESTED. If CHANGES_REQUESTED, list the
specific issues that must be fixed. Be concise and actionable.`

const testerSystem = `You are a quality assurance engineer. Write focused, deterministic
tests covering the happy path and edge cases. Output only the test code,
wrapped in a markdown code block.`

const orchestratorSystem = `You are a project orchestrator managing a team of specialized agents.
Break the task into ordered sub-tasks and assign each to an agent.
Output the plan as a numbered list, one step per line, in the form:
1. [agent] description`

// Coder builds the prompt for a generation iteration. Feedback and existing
// code are optional and omitted when empty.
func Coder(task, existingCode, feedback string) []state.Message {
	var b strings.Builder
	fmt.Fprintf(&b, "## Task\n%s", task)
	if existingCode != "" {
		fmt.Fprintf(&b, "\n\n## Existing Code\n```\n%s\n```", existingCode)
	}
	if feedback != "" {
		fmt.Fprintf(&b, "\n\n## Reviewer Feedback (MUST ADDRESS)\n%s\n\nUpdate the code to address all feedback items.", feedback)
	}
	return []state.Message{
		{Content: coderSystem, Kind: state.KindSystem},
		{Content: b.String(), Kind: state.KindHuman},
	}
}

// Reviewer builds the prompt for a review pass.
func Reviewer(code, task string, iteration int, previousFeedback string) []state.Message {
	var b strings.Builder
	fmt.Fprintf(&b, "## Original Task\n%s", task)
	fmt.Fprintf(&b, "\n\n## Code to Review (Iteration %d)\n```\n%s\n```", iteration, code)
	if previousFeedback != "" {
		fmt.Fprintf(&b, "\n\n## Previous Feedback\n%s\n\nVerify that the previous feedback has been addressed.", previousFeedback)
	}
	b.WriteString("\n\n## Instructions\nOutput APPROVED if the code meets all requirements, or CHANGES_REQUESTED with specific issues to fix.")
	return []state.Message{
		{Content: reviewerSystem, Kind: state.KindSystem},
		{Content: b.String(), Kind: state.KindHuman},
	}
}

// Tester builds the prompt for test generation.
func Tester(code, task string) []state.Message {
	var b strings.Builder
	fmt.Fprintf(&b, "## Original Task\n%s", task)
	fmt.Fprintf(&b, "\n\n## Code to Test\n```\n%s\n```", code)
	b.WriteString("\n\n## Instructions\nWrite tests for this code. Output only the test code.")
	return []state.Message{
		{Content: testerSystem, Kind: state.KindSystem},
		{Content: b.String(), Kind: state.KindHuman},
	}
}

// Orchestrator builds the planning prompt.
func Orchestrator(task string, availableAgents []string, currentState string) []state.Message {
	var b strings.Builder
	fmt.Fprintf(&b, "## Task\n%s", task)
	fmt.Fprintf(&b, "\n\n## Available Agents\n%s", strings.Join(availableAgents, ", "))
	if currentState != "" {
		fmt.Fprintf(&b, "\n\n## Current State\n%s", currentState)
	}
	b.WriteString("\n\n## Instructions\nProduce or update the execution plan.")
	return []state.Message{
		{Content: orchestratorSystem, Kind: state.KindSystem},
		{Content: b.String(), Kind: state.KindHuman},
	}
}
