// Package task defines the closed set of task kinds the assistant can
// dispatch, the handler contract for their API wrappers, and a registry
// mapping kinds to handlers.
package task

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Kind identifies what category of work a prompt asks for.
type Kind string

// The closed set of task kinds. Dispatch is a table lookup on this tag,
// never runtime type inspection.
const (
	// KindMail reads or sends email via the mail API wrapper.
	KindMail Kind = "mail"

	// KindRepo queries the source-control API (commits, pull requests).
	KindRepo Kind = "repo"

	// KindCoding fetches coding problems from a problem-site API.
	KindCoding Kind = "coding"

	// KindSummary is the general fallback: summarize or answer directly.
	KindSummary Kind = "summary"
)

// Request is one unit of work handed to a handler.
type Request struct {
	Kind   Kind
	Prompt string
}

// Result is what a handler produced. Summary is an opaque outcome
// reference recorded alongside the execution; the assistant does not
// interpret it.
type Result struct {
	Summary string
}

// Handler executes one kind of task against its external API.
type Handler interface {
	Handle(ctx context.Context, req Request) (Result, error)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, req Request) (Result, error)

// Handle implements Handler.
func (f HandlerFunc) Handle(ctx context.Context, req Request) (Result, error) {
	return f(ctx, req)
}

// Registry maps task kinds to their handlers.
type Registry struct {
	mu       sync.RWMutex
	handlers map[Kind]Handler
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[Kind]Handler)}
}

// Register adds a handler for a kind. Registering the same kind twice is a
// wiring bug and returns an error.
func (r *Registry) Register(kind Kind, h Handler) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.handlers[kind]; exists {
		return fmt.Errorf("task: handler already registered for kind %q", kind)
	}
	r.handlers[kind] = h
	return nil
}

// Lookup returns the handler for a kind.
func (r *Registry) Lookup(kind Kind) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, ok := r.handlers[kind]
	return h, ok
}

// Kinds returns the registered kinds in stable order.
func (r *Registry) Kinds() []Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]Kind, 0, len(r.handlers))
	for k := range r.handlers {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// kindKeywords drive Classify. First kind whose keyword list matches wins,
// checked in declaration order.
var kindKeywords = []struct {
	kind  Kind
	words []string
}{
	{KindCoding, []string{"leetcode", "coding problem", "coding question", "algorithm problem"}},
	{KindRepo, []string{"commit", "pull request", " pr ", "branch", "repository", "repo "}},
	{KindMail, []string{"email", "e-mail", "inbox", "unread", "mail"}},
}

// Classify maps a prompt to a task kind by keyword. Prompts that match
// nothing fall back to KindSummary, the general-purpose handler.
func Classify(prompt string) Kind {
	s := " " + strings.ToLower(prompt) + " "
	for _, kk := range kindKeywords {
		for _, w := range kk.words {
			if strings.Contains(s, w) {
				return kk.kind
			}
		}
	}
	return KindSummary
}
