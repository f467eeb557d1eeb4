package conversation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chat-relay/models"
)

func TestBuildRequestPrependsSystemTurn(t *testing.T) {
	request, err := BuildRequest(nil, "hello")
	require.NoError(t, err)

	require.Len(t, request, 2)
	assert.Equal(t, models.RoleSystem, request[0].Role)
	assert.Equal(t, DefaultSystemPrompt, request[0].Content)
	assert.Equal(t, models.RoleUser, request[1].Role)
	assert.Equal(t, "hello", request[1].Content)
}

func TestBuildRequestDoesNotDoubleSystemTurn(t *testing.T) {
	prior := []models.Message{
		{Role: models.RoleSystem, Content: DefaultSystemPrompt},
		{Role: models.RoleUser, Content: "first"},
		{Role: models.RoleAssistant, Content: "reply"},
	}

	request, err := BuildRequest(prior, "second")
	require.NoError(t, err)

	require.Len(t, request, 4)
	systemCount := 0
	for _, m := range request {
		if m.Role == models.RoleSystem {
			systemCount++
		}
	}
	assert.Equal(t, 1, systemCount)
	assert.Equal(t, "second", request[3].Content)
}

func TestBuildRequestRejectsEmptyText(t *testing.T) {
	cases := []string{"", "   ", "\n\t"}
	for _, text := range cases {
		_, err := BuildRequest(nil, text)
		assert.ErrorIs(t, err, ErrEmptyMessage, "input %q", text)
	}
}

func TestBuildRequestTrimsUserText(t *testing.T) {
	request, err := BuildRequest(nil, "  hello  \n")
	require.NoError(t, err)
	assert.Equal(t, "hello", request[len(request)-1].Content)
}

func TestBuildRequestDoesNotMutateInput(t *testing.T) {
	prior := []models.Message{
		{Role: models.RoleSystem, Content: DefaultSystemPrompt},
		{Role: models.RoleUser, Content: "first"},
	}

	request, err := BuildRequest(prior, "second")
	require.NoError(t, err)

	request[1].Content = "mutated"
	assert.Equal(t, "first", prior[1].Content)
	assert.Len(t, prior, 2)
}
