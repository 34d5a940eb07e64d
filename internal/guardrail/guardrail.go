// Package guardrail gates pipeline stages on pass/fail checks made by agents.
package guardrail

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/tuannvm/ticketsmith/internal/agents"
	log "github.com/tuannvm/ticketsmith/internal/logging"
)

// Kind says which side of a stage a guardrail guards
type Kind string

const (
	KindInput  Kind = "input"
	KindOutput Kind = "output"
)

// Policy decides what a failed output check does to the workflow
type Policy string

const (
	// PolicyAbort stops the workflow with a tripwire error
	PolicyAbort Policy = "abort"
	// PolicyAnnotate appends the guardrail's warning and continues
	PolicyAnnotate Policy = "annotate"
)

// ParsePolicy maps a configured value to a Policy, defaulting to PolicyAbort
func ParsePolicy(s string) Policy {
	if Policy(s) == PolicyAnnotate {
		return PolicyAnnotate
	}
	return PolicyAbort
}

var (
	// ErrTripwire matches every failed guardrail
	ErrTripwire = errors.New("guardrail tripwire triggered")
	// ErrInvalidInput matches failed input guardrails
	ErrInvalidInput = errors.New("input is not a valid ticket description")
	// ErrOutputNotReady matches failed output guardrails
	ErrOutputNotReady = errors.New("output is not clear or ready")
)

var tripsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "ticketsmith",
		Subsystem: "guardrail",
		Name:      "trips_total",
		Help:      "Total number of failed guardrail checks",
	},
	[]string{"guardrail", "kind"},
)

// Verdict is the outcome of one guardrail check
type Verdict struct {
	Passed    bool   `json:"passed"`
	Reasoning string `json:"reasoning"`
}

// TripwireError is returned when a guardrail check fails and the workflow stops
type TripwireError struct {
	Guardrail string
	Kind      Kind
	Verdict   Verdict
}

func (e *TripwireError) Error() string {
	if e.Kind == KindInput {
		return fmt.Sprintf("%s: %v: %s", e.Guardrail, ErrInvalidInput, e.Verdict.Reasoning)
	}
	return fmt.Sprintf("%s: %v: %s", e.Guardrail, ErrOutputNotReady, e.Verdict.Reasoning)
}

// Is lets errors.Is match ErrTripwire and the kind-specific sentinel
func (e *TripwireError) Is(target error) bool {
	switch target {
	case ErrTripwire:
		return true
	case ErrInvalidInput:
		return e.Kind == KindInput
	case ErrOutputNotReady:
		return e.Kind == KindOutput
	}
	return false
}

type judgeFunc func(ctx context.Context, r *agents.Runner, text string) (Verdict, error)

// Guardrail is a check implemented by an agent call
type Guardrail struct {
	Kind    Kind
	Agent   agents.Agent
	Warning string
	judge   judgeFunc
}

func newGuardrail[T any](kind Kind, agent agents.Agent, warning string, verdict func(T) Verdict) Guardrail {
	return Guardrail{
		Kind:    kind,
		Agent:   agent,
		Warning: warning,
		judge: func(ctx context.Context, r *agents.Runner, text string) (Verdict, error) {
			out, err := agents.Run[T](ctx, r, agent, text)
			if err != nil {
				return Verdict{}, err
			}
			return verdict(out), nil
		},
	}
}

// TicketInput checks that the input looks like a ticket description
func TicketInput(agent agents.Agent) Guardrail {
	return newGuardrail(KindInput, agent, "", func(c agents.TicketCheck) Verdict {
		return Verdict{Passed: c.IsValidTicket, Reasoning: c.Reasoning}
	})
}

// TicketReadiness checks that a compiled ticket is ready for the team
func TicketReadiness(agent agents.Agent) Guardrail {
	return newGuardrail(KindOutput, agent,
		"\n\n[guardrail_warning]: This ticket was marked as not clear or ready for the team. Review it before use.\n",
		func(c agents.ReadinessCheck) Verdict {
			return Verdict{Passed: c.IsClearForTeam, Reasoning: c.Reasoning}
		})
}

// TestClarity checks that a ticket is clear enough to generate tests from
func TestClarity(agent agents.Agent) Guardrail {
	return newGuardrail(KindOutput, agent,
		"\n\n// WARNING: Ticket was marked unclear. Some test cases below may need manual revision.\n",
		func(c agents.ClarityCheck) Verdict {
			return Verdict{Passed: c.IsClear, Reasoning: c.Reasoning}
		})
}

// Check runs the guardrail and returns its verdict
func (g Guardrail) Check(ctx context.Context, r *agents.Runner, text string) (Verdict, error) {
	verdict, err := g.judge(ctx, r, text)
	if err != nil {
		return Verdict{}, fmt.Errorf("guardrail %q: %w", g.Agent.Name, err)
	}
	if !verdict.Passed {
		tripsTotal.WithLabelValues(g.Agent.Name, string(g.Kind)).Inc()
		log.Warnf("Guardrail %s tripped: %s", g.Agent.Name, verdict.Reasoning)
	}
	return verdict, nil
}

// Enforce runs the guardrail and turns a failed verdict into a *TripwireError
func (g Guardrail) Enforce(ctx context.Context, r *agents.Runner, text string) error {
	verdict, err := g.Check(ctx, r, text)
	if err != nil {
		return err
	}
	if !verdict.Passed {
		return g.trip(verdict)
	}
	return nil
}

// Apply runs an output guardrail over text under the given policy.
// It returns the text to continue with, annotated with the warning when the
// check failed under PolicyAnnotate.
func (g Guardrail) Apply(ctx context.Context, r *agents.Runner, policy Policy, text string) (string, Verdict, error) {
	verdict, err := g.Check(ctx, r, text)
	if err != nil {
		return "", verdict, err
	}
	if verdict.Passed {
		return text, verdict, nil
	}
	if g.Kind == KindOutput && policy == PolicyAnnotate {
		return text + g.Warning, verdict, nil
	}
	return "", verdict, g.trip(verdict)
}

func (g Guardrail) trip(v Verdict) error {
	return &TripwireError{Guardrail: g.Agent.Name, Kind: g.Kind, Verdict: v}
}
