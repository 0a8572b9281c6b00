package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	"github.com/opaline-dev/troupe/internal/state"
)

// fakeModel captures the content it was asked to generate.
type fakeModel struct {
	seen []llms.MessageContent
	resp *llms.ContentResponse
	err  error
}

func (m *fakeModel) GenerateContent(_ context.Context, messages []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	m.seen = messages
	return m.resp, m.err
}

func (m *fakeModel) Call(_ context.Context, _ string, _ ...llms.CallOption) (string, error) {
	return "", errors.New("not implemented")
}

func TestInvokeMapsMessageKinds(t *testing.T) {
	model := &fakeModel{resp: &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: "APPROVED"}},
	}}

	got, err := Wrap(model).Invoke(context.Background(), []state.Message{
		{Content: "system", Kind: state.KindSystem},
		{Content: "human", Kind: state.KindHuman},
		{Content: "assistant", Kind: state.KindAssistant},
	})
	require.NoError(t, err)
	assert.Equal(t, "APPROVED", got)

	require.Len(t, model.seen, 3)
	assert.Equal(t, llms.ChatMessageTypeSystem, model.seen[0].Role)
	assert.Equal(t, llms.ChatMessageTypeHuman, model.seen[1].Role)
	assert.Equal(t, llms.ChatMessageTypeAI, model.seen[2].Role)
}

func TestInvokeEmptyResponse(t *testing.T) {
	model := &fakeModel{resp: &llms.ContentResponse{}}
	_, err := Wrap(model).Invoke(context.Background(), []state.Message{{Content: "hi", Kind: state.KindHuman}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty response")
}

func TestInvokeModelError(t *testing.T) {
	model := &fakeModel{err: errors.New("connection refused")}
	_, err := Wrap(model).Invoke(context.Background(), []state.Message{{Content: "hi", Kind: state.KindHuman}})
	require.Error(t, err)
}

func TestInvokeWithoutModel(t *testing.T) {
	var m *Model
	_, err := m.Invoke(context.Background(), nil)
	require.Error(t, err)
}
