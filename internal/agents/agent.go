package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"github.com/tuannvm/ticketsmith/internal/common"
	"github.com/tuannvm/ticketsmith/internal/llm"
	log "github.com/tuannvm/ticketsmith/internal/logging"
)

// Agent is a named instruction set bound to calls against the text-generation service.
// An empty OutputSchema means the agent answers in free text.
type Agent struct {
	Name         string
	Description  string
	Instructions string
	OutputSchema string
}

// Structured reports whether the agent declares an output shape
func (a Agent) Structured() bool {
	return a.OutputSchema != ""
}

// OutputError reports a model reply that could not be turned into the agent's output shape
type OutputError struct {
	Agent string
	Raw   string
	Cause error
}

func (e *OutputError) Error() string {
	return fmt.Sprintf("agent %q returned malformed output: %v", e.Agent, e.Cause)
}

func (e *OutputError) Unwrap() error {
	return e.Cause
}

// Runner executes agents against an LLM client
type Runner struct {
	client llm.Client
}

// NewRunner creates a new Runner
func NewRunner(client llm.Client) *Runner {
	return &Runner{client: client}
}

// Text runs an agent and returns its raw reply
func (r *Runner) Text(ctx context.Context, agent Agent, input string) (string, error) {
	start := time.Now()
	out, err := r.client.Generate(ctx, instructionsFor(agent), input)
	observeCall(agent.Name, time.Since(start), err)
	if err != nil {
		return "", fmt.Errorf("agent %q: %w", agent.Name, err)
	}
	return out, nil
}

// Run executes a structured agent and decodes its reply into T
func Run[T any](ctx context.Context, r *Runner, agent Agent, input string) (T, error) {
	var out T
	if !agent.Structured() {
		return out, fmt.Errorf("agent %q declares no output schema", agent.Name)
	}

	log.Debugf("Running %s", agent.Name)
	raw, err := r.Text(ctx, agent, input)
	if err != nil {
		return out, err
	}

	doc, err := common.ExtractJSON(raw)
	if err != nil {
		return out, outputError(agent, raw, err)
	}
	if err := validate(agent.OutputSchema, doc); err != nil {
		return out, outputError(agent, raw, err)
	}
	if err := json.Unmarshal([]byte(doc), &out); err != nil {
		return out, outputError(agent, raw, fmt.Errorf("failed to decode output: %w", err))
	}
	return out, nil
}

func outputError(agent Agent, raw string, cause error) error {
	malformedOutputs.WithLabelValues(agent.Name).Inc()
	log.Warnf("Agent %s returned malformed output: %v", agent.Name, cause)
	return &OutputError{Agent: agent.Name, Raw: raw, Cause: cause}
}

// instructionsFor appends the output contract to the agent's instructions
func instructionsFor(agent Agent) string {
	if !agent.Structured() {
		return agent.Instructions
	}
	var sb strings.Builder
	sb.WriteString(agent.Instructions)
	sb.WriteString("\n\nRespond only with a JSON object that validates against this JSON Schema:\n")
	sb.WriteString(agent.OutputSchema)
	return sb.String()
}

func validate(schema, doc string) error {
	result, err := gojsonschema.Validate(gojsonschema.NewStringLoader(schema), gojsonschema.NewStringLoader(doc))
	if err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	if !result.Valid() {
		issues := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			issues = append(issues, desc.String())
		}
		return fmt.Errorf("output does not match schema: %s", strings.Join(issues, "; "))
	}
	return nil
}
