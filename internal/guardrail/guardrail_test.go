package guardrail

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuannvm/ticketsmith/internal/agents"
	"github.com/tuannvm/ticketsmith/internal/llm/llmtest"
)

func TestEnforceInputGuardrail(t *testing.T) {
	catalog := agents.DefaultCatalog()
	g := TicketInput(catalog.TicketGuardrail)

	t.Run("passes valid tickets", func(t *testing.T) {
		r := agents.NewRunner(llmtest.New().Reply("Check if the input", `{"is_valid_ticket": true, "reasoning": "looks like a story"}`))
		assert.NoError(t, g.Enforce(context.Background(), r, "As a user, I want to log in, so that I can work"))
	})

	t.Run("trips on invalid input", func(t *testing.T) {
		r := agents.NewRunner(llmtest.New().Reply("Check if the input", `{"is_valid_ticket": false, "reasoning": "a recipe"}`))
		err := g.Enforce(context.Background(), r, "two eggs, flour")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrTripwire))
		assert.True(t, errors.Is(err, ErrInvalidInput))
		assert.False(t, errors.Is(err, ErrOutputNotReady))

		var trip *TripwireError
		require.True(t, errors.As(err, &trip))
		assert.Equal(t, "a recipe", trip.Verdict.Reasoning)
		assert.Contains(t, err.Error(), "a recipe")
	})

	t.Run("malformed verdict is not a tripwire", func(t *testing.T) {
		r := agents.NewRunner(llmtest.New().Reply("Check if the input", "maybe?"))
		err := g.Enforce(context.Background(), r, "text")
		require.Error(t, err)
		assert.False(t, errors.Is(err, ErrTripwire))

		var outErr *agents.OutputError
		assert.True(t, errors.As(err, &outErr))
	})
}

func TestApplyOutputGuardrail(t *testing.T) {
	catalog := agents.DefaultCatalog()
	g := TestClarity(catalog.ClarityGuardrail)
	unclear := agents.NewRunner(llmtest.New().Reply("Check if the ticket is clear", `{"is_clear": false, "reasoning": "no acceptance criteria"}`))
	clear := agents.NewRunner(llmtest.New().Reply("Check if the ticket is clear", `{"is_clear": true, "reasoning": "fine"}`))

	t.Run("passing check returns text unchanged", func(t *testing.T) {
		out, verdict, err := g.Apply(context.Background(), clear, PolicyAbort, "ticket")
		require.NoError(t, err)
		assert.True(t, verdict.Passed)
		assert.Equal(t, "ticket", out)
	})

	t.Run("abort policy returns tripwire", func(t *testing.T) {
		out, verdict, err := g.Apply(context.Background(), unclear, PolicyAbort, "ticket")
		assert.Empty(t, out)
		assert.False(t, verdict.Passed)
		assert.True(t, errors.Is(err, ErrOutputNotReady))
	})

	t.Run("annotate policy appends warning", func(t *testing.T) {
		out, verdict, err := g.Apply(context.Background(), unclear, PolicyAnnotate, "ticket")
		require.NoError(t, err)
		assert.False(t, verdict.Passed)
		assert.Equal(t, "ticket\n\n// WARNING: Ticket was marked unclear. Some test cases below may need manual revision.\n", out)
	})
}

func TestApplyNeverAnnotatesInputGuardrails(t *testing.T) {
	catalog := agents.DefaultCatalog()
	r := agents.NewRunner(llmtest.New().Reply("Check if the input", `{"is_valid_ticket": false, "reasoning": "spam"}`))

	_, _, err := TicketInput(catalog.TicketGuardrail).Apply(context.Background(), r, PolicyAnnotate, "buy now")
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestParsePolicy(t *testing.T) {
	assert.Equal(t, PolicyAnnotate, ParsePolicy("annotate"))
	assert.Equal(t, PolicyAbort, ParsePolicy("abort"))
	assert.Equal(t, PolicyAbort, ParsePolicy(""))
}
