package role

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/opaline-dev/troupe/internal/llm"
	"github.com/opaline-dev/troupe/internal/prompt"
	"github.com/opaline-dev/troupe/internal/state"
)

// NewCoder builds the code-generation role. With a nil provider it uses the
// deterministic fallback: a first iteration that is intentionally wrong, so
// the review loop always gets exercised, then a corrected artifact.
func NewCoder(provider llm.Provider) Role {
	b := &base{name: Coder, description: "Generates and modifies code based on requirements and feedback"}
	if provider == nil {
		b.strategy = fallbackCoder{}
	} else {
		b.strategy = llmCoder{provider: provider}
	}
	return b
}

type fallbackCoder struct{}

func (fallbackCoder) process(_ context.Context, st *state.State) (Result, error) {
	iteration := st.IterationCount
	var code, summary string
	if iteration == 0 {
		code = "func add(a, b int) int {\n\t// TODO: fix math\n\treturn a - b\n}\n"
		summary = "initial implementation"
	} else {
		code = "func add(a, b int) int {\n\treturn a + b\n}\n"
		summary = "fixed math logic"
	}
	return Result{
		Message: assistant(Coder, fmt.Sprintf("Coder: %s.", summary)),
		Patch: state.Patch{
			Artifacts:      map[string]string{DefaultArtifact: code},
			IterationCount: state.Int(iteration + 1),
		},
	}, nil
}

type llmCoder struct {
	provider llm.Provider
}

func (c llmCoder) process(ctx context.Context, st *state.State) (Result, error) {
	iteration := st.IterationCount
	feedback := ""
	if iteration > 0 {
		feedback = st.ReviewFeedback
	}
	messages := prompt.Coder(st.Task(), st.Artifacts[DefaultArtifact], feedback)
	response, err := c.provider.Invoke(ctx, messages)
	if err != nil {
		return Result{}, fmt.Errorf("role: coder: %w", err)
	}
	code := ExtractCode(response)
	summary := "initial implementation"
	if iteration > 0 {
		summary = "fixed code per feedback"
	}
	return Result{
		Message: assistant(Coder, fmt.Sprintf("Coder: %s.\n\n```\n%s\n```", summary, code)),
		Patch: state.Patch{
			Artifacts:      map[string]string{DefaultArtifact: code},
			IterationCount: state.Int(iteration + 1),
		},
		Metadata: map[string]any{"iteration": iteration + 1, "has_feedback": feedback != ""},
	}, nil
}

var codeFence = regexp.MustCompile("(?s)```(?:[a-zA-Z0-9]+)?\\s*\\n?(.*?)```")

// ExtractCode pulls the first fenced block out of a model response, or the
// trimmed response itself when no fence is present.
func ExtractCode(response string) string {
	if match := codeFence.FindStringSubmatch(response); match != nil {
		return strings.TrimSpace(match[1])
	}
	return strings.TrimSpace(response)
}
