package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuannvm/ticketsmith/internal/guardrail"
	"github.com/tuannvm/ticketsmith/internal/llm/llmtest"
	"github.com/tuannvm/ticketsmith/internal/models"
)

const story = "As a user, I want to reset my password, so that I can log in again"

// happyFake answers every agent with a valid, passing reply
func happyFake() *llmtest.Fake {
	f := llmtest.New().
		Reply("Check if the input", `{"is_valid_ticket": true, "reasoning": "valid story"}`).
		Reply("Transform the JIRA", "## User Story\nReset password").
		Reply("Check if the final compiled", `{"is_clear_for_team": true, "reasoning": "ready"}`).
		Reply("Break down", `{"steps": ["Add reset endpoint", "Send reset email"]}`).
		Reply("Check if the ticket is clear", `{"is_clear": true, "reasoning": "clear"}`)
	for _, role := range []string{"PM", "developer", "QA", "security", "design"} {
		f.Reply("Review the JIRA ticket and provide "+role+"-", fmt.Sprintf(`{"comments": "%s looks fine"}`, role))
	}
	for _, prefix := range []string{"Generate unit", "Generate integration", "Generate end-to-end"} {
		f.On(prefix, func(instructions, input string) (string, error) {
			return fmt.Sprintf(`{"test_code": "// %s"}`, strings.Fields(instructions)[1]), nil
		})
	}
	return f
}

func TestEnhanceTicketComposesOutput(t *testing.T) {
	fake := happyFake()
	o := New(fake, nil, guardrail.PolicyAbort)

	out, err := o.EnhanceTicket(context.Background(), story)
	require.NoError(t, err)

	want := "## User Story\nReset password\n\n[perspective_comments]:\n" +
		"- [PM Agent]: PM looks fine\n" +
		"- [Developer Agent]: developer looks fine\n" +
		"- [QA Agent]: QA looks fine\n" +
		"- [Security Agent]: security looks fine\n" +
		"- [Design Agent]: design looks fine\n" +
		"\n" + FinalNotes
	assert.Equal(t, want, out)

	// Reviewers see the transformed ticket, not the raw description
	for _, c := range fake.Calls() {
		if strings.HasPrefix(c.Instructions, "Review") {
			assert.Equal(t, "## User Story\nReset password", c.Input)
		}
	}
	assert.Equal(t, 1, fake.CallsTo("Check if the final compiled"))
}

func TestEnhanceTicketOrderingProperty(t *testing.T) {
	o := New(happyFake(), nil, guardrail.PolicyAbort)

	out, err := o.EnhanceTicket(context.Background(), story)
	require.NoError(t, err)

	ticketAt := strings.Index(out, "Reset password")
	headerAt := strings.Index(out, perspectiveHeader)
	notesAt := strings.Index(out, FinalNotes)
	assert.True(t, ticketAt >= 0 && ticketAt < headerAt && headerAt < notesAt)

	last := headerAt
	for _, name := range o.Catalog().ReviewerNames() {
		at := strings.Index(out, "- ["+name+"]:")
		require.Greater(t, at, last, name)
		last = at
	}
	assert.Greater(t, notesAt, last)
}

func TestEnhanceTicketInvalidInputReturnsNothing(t *testing.T) {
	fake := happyFake().Reply("Check if the input", `{"is_valid_ticket": false, "reasoning": "not a ticket"}`)
	o := New(fake, nil, guardrail.PolicyAnnotate)

	out, err := o.EnhanceTicket(context.Background(), "hello there")
	assert.Empty(t, out)
	assert.True(t, errors.Is(err, guardrail.ErrInvalidInput))
	assert.Equal(t, 0, fake.CallsTo("Transform the JIRA"))
	assert.Equal(t, 0, fake.CallsTo("Review"))
}

func TestEnhanceTicketOutputGuardrail(t *testing.T) {
	notReady := func() *llmtest.Fake {
		return happyFake().Reply("Check if the final compiled", `{"is_clear_for_team": false, "reasoning": "vague"}`)
	}

	t.Run("abort returns nothing", func(t *testing.T) {
		out, err := New(notReady(), nil, guardrail.PolicyAbort).EnhanceTicket(context.Background(), story)
		assert.Empty(t, out)
		assert.True(t, errors.Is(err, guardrail.ErrOutputNotReady))
	})

	t.Run("annotate appends a warning", func(t *testing.T) {
		out, err := New(notReady(), nil, guardrail.PolicyAnnotate).EnhanceTicket(context.Background(), story)
		require.NoError(t, err)
		assert.Contains(t, out, FinalNotes)
		assert.Contains(t, out, "[guardrail_warning]:")
	})
}

func TestEnhanceTicketReviewerFailure(t *testing.T) {
	fake := happyFake().On("Review the JIRA ticket and provide QA-", func(string, string) (string, error) {
		return "", errors.New("rate limited")
	})

	out, err := New(fake, nil, guardrail.PolicyAbort).EnhanceTicket(context.Background(), story)
	assert.Empty(t, out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
	assert.False(t, errors.Is(err, guardrail.ErrTripwire))
}

func TestDecomposeTasks(t *testing.T) {
	o := New(happyFake(), nil, guardrail.PolicyAbort)

	result, err := o.DecomposeTasks(context.Background(), "  # Ticket\nBody\n\n")
	require.NoError(t, err)
	assert.Equal(t, []string{"Add reset endpoint", "Send reset email"}, result.Tasks)
	assert.Equal(t, "# Ticket\nBody\n\n[task_breakdown]:\n- Add reset endpoint\n- Send reset email\n", result.Output)
}

func TestDecomposeTasksEmptySteps(t *testing.T) {
	fake := happyFake().Reply("Break down", `{"steps": []}`)

	result, err := New(fake, nil, guardrail.PolicyAbort).DecomposeTasks(context.Background(), "text")
	require.NoError(t, err)
	assert.NotNil(t, result.Tasks)
	assert.Equal(t, "text\n\n[task_breakdown]:\n", result.Output)
}

func TestInsertTaskBreakdownDoesNotDeduplicate(t *testing.T) {
	once := InsertTaskBreakdown("ticket", []string{"a"})
	twice := InsertTaskBreakdown(once, []string{"a"})

	assert.Equal(t, 2, strings.Count(twice, taskHeader))
}

func TestGenerateTests(t *testing.T) {
	fake := happyFake()
	o := New(fake, nil, guardrail.PolicyAbort)

	suite, err := o.GenerateTests(context.Background(), "title: Reset Password\nbody")
	require.NoError(t, err)

	assert.Equal(t, models.TestOutputs{Unit: "// unit", Integration: "// integration", E2E: "// end-to-end"}, suite.Outputs)
	assert.Equal(t, []string{"Add reset endpoint", "Send reset email"}, suite.Tasks)
	assert.True(t, suite.Clear)

	// Generators see the ticket with its task breakdown
	for _, c := range fake.Calls() {
		if strings.HasPrefix(c.Instructions, "Generate") {
			assert.Contains(t, c.Input, "[task_breakdown]:\n- Add reset endpoint")
		}
	}
}

func TestGenerateTestsUnclearTicket(t *testing.T) {
	unclear := func() *llmtest.Fake {
		return happyFake().Reply("Check if the ticket is clear", `{"is_clear": false, "reasoning": "ambiguous"}`)
	}

	t.Run("annotate still produces three outputs", func(t *testing.T) {
		fake := unclear()
		suite, err := New(fake, nil, guardrail.PolicyAnnotate).GenerateTests(context.Background(), "ticket")
		require.NoError(t, err)
		assert.False(t, suite.Clear)
		assert.Equal(t, "ambiguous", suite.Reasoning)
		for _, key := range []string{"unit", "integration", "e2e"} {
			assert.NotEmpty(t, suite.Outputs.Get(key), key)
		}
		assert.Contains(t, suite.Ticket, "// WARNING: Ticket was marked unclear.")
		for _, c := range fake.Calls() {
			if strings.HasPrefix(c.Instructions, "Generate") {
				assert.Contains(t, c.Input, "// WARNING: Ticket was marked unclear.")
			}
		}
	})

	t.Run("abort stops before generation", func(t *testing.T) {
		fake := unclear()
		_, err := New(fake, nil, guardrail.PolicyAbort).GenerateTests(context.Background(), "ticket")
		assert.True(t, errors.Is(err, guardrail.ErrOutputNotReady))
		assert.Equal(t, 0, fake.CallsTo("Generate"))
	})
}

func TestGenerateTestsMalformedOutput(t *testing.T) {
	fake := happyFake().Reply("Generate integration", "no json here")

	_, err := New(fake, nil, guardrail.PolicyAbort).GenerateTests(context.Background(), "ticket")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Integration Test Generator")
}
