package state

import "fmt"

// MessageKind classifies conversation entries.
type MessageKind string

const (
	KindSystem    MessageKind = "system"
	KindHuman     MessageKind = "human"
	KindAssistant MessageKind = "assistant"
)

// Message is one entry in the append-only conversation log.
type Message struct {
	Role    string      `json:"role,omitempty"`
	Content string      `json:"content"`
	Kind    MessageKind `json:"kind"`
}

// ReviewOutcome records the reviewer's verdict on the current artifact.
type ReviewOutcome string

const (
	ReviewPending          ReviewOutcome = ""
	ReviewApproved         ReviewOutcome = "approved"
	ReviewChangesRequested ReviewOutcome = "changes_requested"
)

// ApprovalOutcome gates the executor. The executor must never run while the
// outcome is still pending.
type ApprovalOutcome string

const (
	ApprovalPending  ApprovalOutcome = "pending"
	ApprovalApproved ApprovalOutcome = "approved"
	ApprovalDenied   ApprovalOutcome = "denied"
)

// TestOutcome tracks the tester's progress on the current artifact.
type TestOutcome string

const (
	TestPending   TestOutcome = "pending"
	TestGenerated TestOutcome = "generated"
	TestPassed    TestOutcome = "passed"
	TestFailed    TestOutcome = "failed"
	TestSkipped   TestOutcome = "skipped"
)

// StepStatus enumerates plan step lifecycle states.
type StepStatus string

const (
	StepPending   StepStatus = "pending"
	StepCompleted StepStatus = "completed"
	StepFailed    StepStatus = "failed"
)

// PlanStep is one entry in the orchestrator's execution plan. Steps keep
// their insertion order for the lifetime of the plan; only Status mutates.
type PlanStep struct {
	Role   string     `json:"role"`
	Task   string     `json:"task"`
	Status StepStatus `json:"status"`
}

// Phase is the orchestrator's coarse view of plan progress.
type Phase string

const (
	PhasePlanning  Phase = "planning"
	PhaseExecuting Phase = "executing"
	PhaseCompleted Phase = "completed"
)

// State is the shared record threaded through every role invocation. One
// instance exists per workflow run; roles never mutate it directly but
// return a Patch the engine applies.
type State struct {
	Messages             []Message         `json:"messages"`
	Artifacts            map[string]string `json:"artifacts"`
	IterationCount       int               `json:"iteration_count"`
	ReviewOutcome        ReviewOutcome     `json:"review_outcome"`
	ReviewFeedback       string            `json:"review_feedback"`
	PendingAction        string            `json:"pending_action"`
	ApprovalOutcome      ApprovalOutcome   `json:"approval_outcome"`
	LastExecution        string            `json:"last_execution"`
	SkillResult          int               `json:"skill_result"`
	SkillRepairAttempted bool              `json:"skill_repair_attempted"`
	TestCode             string            `json:"test_code"`
	TestOutcome          TestOutcome       `json:"test_outcome"`
	Plan                 []PlanStep        `json:"execution_plan"`
	Phase                Phase             `json:"orchestrator_phase"`
}

// New builds the canonical initial record for a coding task.
func New(task string) *State {
	return &State{
		Messages: []Message{
			{Content: "You are a multi-role coding agent. Follow reviewer feedback.", Kind: KindSystem},
			{Content: task, Kind: KindHuman},
		},
		Artifacts:       map[string]string{},
		ReviewOutcome:   ReviewChangesRequested,
		ApprovalOutcome: ApprovalPending,
		TestOutcome:     TestPending,
		Phase:           PhasePlanning,
	}
}

// Task returns the original task text: the first human message.
func (s *State) Task() string {
	for _, msg := range s.Messages {
		if msg.Kind == KindHuman {
			return msg.Content
		}
	}
	return "No task specified"
}

// Clone returns a deep copy so checkpoints never alias live state.
func (s *State) Clone() *State {
	out := *s
	out.Messages = append([]Message(nil), s.Messages...)
	out.Artifacts = make(map[string]string, len(s.Artifacts))
	for name, content := range s.Artifacts {
		out.Artifacts[name] = content
	}
	out.Plan = append([]PlanStep(nil), s.Plan...)
	return &out
}

// Document flattens the record into a plain key/value form for display
// and logging.
func (s *State) Document() map[string]any {
	doc := map[string]any{
		"iteration_count":        s.IterationCount,
		"review_outcome":         string(s.ReviewOutcome),
		"review_feedback":        s.ReviewFeedback,
		"pending_action":         s.PendingAction,
		"approval_outcome":       string(s.ApprovalOutcome),
		"last_execution":         s.LastExecution,
		"skill_result":           s.SkillResult,
		"skill_repair_attempted": s.SkillRepairAttempted,
		"test_outcome":           string(s.TestOutcome),
		"orchestrator_phase":     string(s.Phase),
		"message_count":          len(s.Messages),
	}
	for name := range s.Artifacts {
		doc[fmt.Sprintf("artifact:%s", name)] = s.Artifacts[name]
	}
	return doc
}

// PendingSteps counts plan steps that have not completed or failed.
func (s *State) PendingSteps() int {
	count := 0
	for _, step := range s.Plan {
		if step.Status == StepPending {
			count++
		}
	}
	return count
}
