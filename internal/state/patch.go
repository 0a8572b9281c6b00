package state

// Patch is a partial update produced by a single role invocation. Every
// field is optional; nil means "leave the record alone". Merge policy per
// field: Messages append, Artifacts last-write-wins per key, Plan replaces
// wholesale (step order is fixed once written), scalars replace.
type Patch struct {
	Messages             []Message
	Artifacts            map[string]string
	IterationCount       *int
	ReviewOutcome        *ReviewOutcome
	ReviewFeedback       *string
	PendingAction        *string
	ApprovalOutcome      *ApprovalOutcome
	LastExecution        *string
	SkillResult          *int
	SkillRepairAttempted *bool
	TestCode             *string
	TestOutcome          *TestOutcome
	Plan                 []PlanStep
	Phase                *Phase
}

// IsZero reports whether the patch carries no updates at all.
func (p Patch) IsZero() bool {
	return len(p.Messages) == 0 &&
		len(p.Artifacts) == 0 &&
		p.IterationCount == nil &&
		p.ReviewOutcome == nil &&
		p.ReviewFeedback == nil &&
		p.PendingAction == nil &&
		p.ApprovalOutcome == nil &&
		p.LastExecution == nil &&
		p.SkillResult == nil &&
		p.SkillRepairAttempted == nil &&
		p.TestCode == nil &&
		p.TestOutcome == nil &&
		p.Plan == nil &&
		p.Phase == nil
}

// Apply merges the patch into the record. Iteration count never decreases,
// even if a patch carries a stale value.
func (s *State) Apply(p Patch) {
	s.Messages = append(s.Messages, p.Messages...)
	if len(p.Artifacts) > 0 {
		if s.Artifacts == nil {
			s.Artifacts = make(map[string]string, len(p.Artifacts))
		}
		for name, content := range p.Artifacts {
			s.Artifacts[name] = content
		}
	}
	if p.IterationCount != nil && *p.IterationCount > s.IterationCount {
		s.IterationCount = *p.IterationCount
	}
	if p.ReviewOutcome != nil {
		s.ReviewOutcome = *p.ReviewOutcome
	}
	if p.ReviewFeedback != nil {
		s.ReviewFeedback = *p.ReviewFeedback
	}
	if p.PendingAction != nil {
		s.PendingAction = *p.PendingAction
	}
	if p.ApprovalOutcome != nil {
		s.ApprovalOutcome = *p.ApprovalOutcome
	}
	if p.LastExecution != nil {
		s.LastExecution = *p.LastExecution
	}
	if p.SkillResult != nil {
		s.SkillResult = *p.SkillResult
	}
	if p.SkillRepairAttempted != nil {
		s.SkillRepairAttempted = *p.SkillRepairAttempted
	}
	if p.TestCode != nil {
		s.TestCode = *p.TestCode
	}
	if p.TestOutcome != nil {
		s.TestOutcome = *p.TestOutcome
	}
	if p.Plan != nil {
		s.Plan = append([]PlanStep(nil), p.Plan...)
	}
	if p.Phase != nil {
		s.Phase = *p.Phase
	}
}

// Int returns a pointer for patch literals.
func Int(v int) *int { return &v }

// Str returns a pointer for patch literals.
func Str(v string) *string { return &v }

// Bool returns a pointer for patch literals.
func Bool(v bool) *bool { return &v }

// Review returns a pointer for patch literals.
func Review(v ReviewOutcome) *ReviewOutcome { return &v }

// Approval returns a pointer for patch literals.
func Approval(v ApprovalOutcome) *ApprovalOutcome { return &v }

// Test returns a pointer for patch literals.
func Test(v TestOutcome) *TestOutcome { return &v }

// PhaseOf returns a pointer for patch literals.
func PhaseOf(v Phase) *Phase { return &v }
