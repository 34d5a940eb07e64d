// Package llmtest provides a scripted llm.Client for tests.
package llmtest

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Responder produces a reply for one call
type Responder func(instructions, input string) (string, error)

// Call records one Generate invocation
type Call struct {
	Instructions string
	Input        string
}

// Fake routes each call to the responder whose key is a prefix of the instructions.
// Agent instructions are unique, so a prefix of each is enough to tell agents apart.
type Fake struct {
	mu         sync.Mutex
	responders map[string]Responder
	calls      []Call
}

// New creates an empty Fake
func New() *Fake {
	return &Fake{responders: map[string]Responder{}}
}

// On registers a responder for instructions starting with prefix
func (f *Fake) On(prefix string, r Responder) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responders[prefix] = r
	return f
}

// Reply registers a fixed reply for instructions starting with prefix
func (f *Fake) Reply(prefix, reply string) *Fake {
	return f.On(prefix, func(string, string) (string, error) { return reply, nil })
}

// Generate implements llm.Client
func (f *Fake) Generate(ctx context.Context, instructions, input string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	f.mu.Lock()
	f.calls = append(f.calls, Call{Instructions: instructions, Input: input})
	var match Responder
	longest := -1
	for prefix, r := range f.responders {
		if strings.HasPrefix(instructions, prefix) && len(prefix) > longest {
			match, longest = r, len(prefix)
		}
	}
	f.mu.Unlock()

	if match == nil {
		return "", fmt.Errorf("llmtest: no responder for instructions %q", instructions)
	}
	return match(instructions, input)
}

// Calls returns a copy of the recorded calls
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// CallsTo counts calls whose instructions start with prefix
func (f *Fake) CallsTo(prefix string) int {
	n := 0
	for _, c := range f.Calls() {
		if strings.HasPrefix(c.Instructions, prefix) {
			n++
		}
	}
	return n
}
