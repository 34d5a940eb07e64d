package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"trpc.group/trpc-go/trpc-a2a-go/protocol"
)

func TestExtractSkillRequest(t *testing.T) {
	t.Run("plain text uses default skill", func(t *testing.T) {
		msg := protocol.Message{Parts: []protocol.Part{protocol.NewTextPart("As a user, I want to log in, so that I can work")}}
		req, err := ExtractSkillRequest(msg, "enhance-ticket")
		require.NoError(t, err)
		assert.Equal(t, "enhance-ticket", req.Skill)
		assert.Equal(t, "As a user, I want to log in, so that I can work", req.Content)
	})

	t.Run("json text selects skill", func(t *testing.T) {
		msg := protocol.Message{Parts: []protocol.Part{protocol.NewTextPart(`{"skill": "generate-tests", "content": "# Ticket"}`)}}
		req, err := ExtractSkillRequest(msg, "enhance-ticket")
		require.NoError(t, err)
		assert.Equal(t, "generate-tests", req.Skill)
		assert.Equal(t, "# Ticket", req.Content)
	})

	t.Run("data part", func(t *testing.T) {
		part := &protocol.DataPart{Type: "data", Data: map[string]interface{}{"skill": "decompose-tasks", "markdown_content": "# T"}}
		req, err := ExtractSkillRequest(protocol.Message{Parts: []protocol.Part{part}}, "enhance-ticket")
		require.NoError(t, err)
		assert.Equal(t, "decompose-tasks", req.Skill)
		assert.Equal(t, "# T", req.Content)
	})

	t.Run("empty message", func(t *testing.T) {
		_, err := ExtractSkillRequest(protocol.Message{}, "enhance-ticket")
		assert.Error(t, err)
	})
}
