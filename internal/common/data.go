package common

import (
	"encoding/json"
	"fmt"
	"strings"

	"trpc.group/trpc-go/trpc-a2a-go/protocol"

	"github.com/tuannvm/ticketsmith/internal/models"
)

// MessageText concatenates the text parts of a message
func MessageText(message protocol.Message) string {
	var texts []string
	for _, part := range message.Parts {
		if tp := asTextPart(part); tp != nil && tp.Text != "" {
			texts = append(texts, tp.Text)
		}
	}
	return strings.Join(texts, "\n")
}

// ExtractSkillRequest reads the requested skill and its content from a message.
// Data parts and JSON text parts may carry {"skill": ..., "content": ...};
// any other text is treated as content for defaultSkill.
func ExtractSkillRequest(message protocol.Message, defaultSkill string) (models.SkillRequest, error) {
	if len(message.Parts) == 0 {
		return models.SkillRequest{}, fmt.Errorf("message has no parts")
	}

	for _, part := range message.Parts {
		if dp := asDataPart(part); dp != nil && dp.Data != nil {
			raw, err := json.Marshal(dp.Data)
			if err != nil {
				continue
			}
			if req, ok := skillRequestFromJSON(raw, defaultSkill); ok {
				return req, nil
			}
		}
	}

	text := MessageText(message)
	if req, ok := skillRequestFromJSON([]byte(text), defaultSkill); ok {
		return req, nil
	}
	if strings.TrimSpace(text) == "" {
		return models.SkillRequest{}, fmt.Errorf("could not extract content from message")
	}
	return models.SkillRequest{Skill: defaultSkill, Content: text}, nil
}

func skillRequestFromJSON(raw []byte, defaultSkill string) (models.SkillRequest, bool) {
	var data map[string]interface{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return models.SkillRequest{}, false
	}
	content, ok := GetStringValue(data, "content", "markdown_content", "ticket_description")
	if !ok {
		return models.SkillRequest{}, false
	}
	skill, ok := GetStringValue(data, "skill")
	if !ok {
		skill = defaultSkill
	}
	return models.SkillRequest{Skill: skill, Content: content}, true
}

func asTextPart(part protocol.Part) *protocol.TextPart {
	switch v := part.(type) {
	case *protocol.TextPart:
		return v
	case protocol.TextPart:
		return &v
	}
	return nil
}

func asDataPart(part protocol.Part) *protocol.DataPart {
	switch v := part.(type) {
	case *protocol.DataPart:
		return v
	case protocol.DataPart:
		return &v
	}
	return nil
}
