package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/tuannvm/ticketsmith/internal/models"
)

var fixedNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func TestReadTicketFileNotFound(t *testing.T) {
	_, err := ReadTicketFile(filepath.Join(t.TempDir(), "missing.md"))
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestWriteEnhancedTicket(t *testing.T) {
	dir := t.TempDir()
	description := "As a user, I want to reset my password, so that I can log in"

	path, err := WriteEnhancedTicket(dir, description, "## Ticket body", fixedNow)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "20250314_reset_my_password.md"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "## Ticket body")
	assert.Contains(t, content, "\ndate: 2025-03-14\n")

	require.Regexp(t, `(?s)^---\n.*\n---\n\n## Ticket body$`, content)
	header := content[len("---\n") : len(content)-len("---\n\n## Ticket body")]
	var fm FrontMatter
	require.NoError(t, yaml.Unmarshal([]byte(header), &fm))
	assert.Equal(t, "Reset my password", fm.Title)
	assert.Equal(t, Date("2025-03-14"), fm.Date)
	assert.Equal(t, "JIRA ticket for 'reset my password'", fm.Summary)
	assert.Equal(t, []string{"jira", "ai", "automation"}, fm.Tags)
	assert.Equal(t, "AI Agent", fm.Author)
}

func TestWriteEnhancedTicketFallbackName(t *testing.T) {
	path, err := WriteEnhancedTicket(t.TempDir(), "Fix the login bug", "body", fixedNow)
	require.NoError(t, err)
	assert.Equal(t, "20250314_ticket.md", filepath.Base(path))
}

func TestWriteTaskBreakdown(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "ticket.md")

	path, err := WriteTaskBreakdown(source, "title: Reset Password\n", "updated", fixedNow)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "20250314_reset_password_with_tasks.md"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "updated", string(data))
}

func TestWriteTestSuite(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "generated_tests")
	suite := models.TestSuite{Outputs: models.TestOutputs{Unit: "u", Integration: "i", E2E: "e"}}

	paths, err := WriteTestSuite(dir, "reset_password", suite, fixedNow)
	require.NoError(t, err)
	require.Len(t, paths, 3)

	want := map[string]string{
		"20250314_reset_password_unit.ts":        "u",
		"20250314_reset_password_integration.ts": "i",
		"20250314_reset_password_e2e.ts":         "e",
	}
	for name, content := range want {
		data, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.Equal(t, content, string(data))
	}
}
