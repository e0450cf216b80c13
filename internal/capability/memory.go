package capability

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Handler implements one capability locally.
type Handler func(ctx context.Context, args map[string]any) (*Result, error)

// MemoryInvoker is an in-memory automation surface. It backs tests and the
// dry-run CLI path with deterministic canned behavior, and individual
// capabilities can be overridden with SetHandler.
type MemoryInvoker struct {
	handlers map[string]Handler
	calls    map[string]int
	mu       sync.Mutex
}

// NewMemoryInvoker creates a MemoryInvoker with default canned handlers.
func NewMemoryInvoker() *MemoryInvoker {
	inv := &MemoryInvoker{
		handlers: make(map[string]Handler),
		calls:    make(map[string]int),
	}

	inv.handlers["query_model"] = func(_ context.Context, args map[string]any) (*Result, error) {
		return Successful(fmt.Sprintf("Model answer for: %v", args["prompt"])), nil
	}
	inv.handlers["web_search"] = func(_ context.Context, args map[string]any) (*Result, error) {
		return Successful(fmt.Sprintf("Search results for %v", args["query"])), nil
	}
	inv.handlers["create_event"] = func(_ context.Context, args map[string]any) (*Result, error) {
		return Successful(map[string]any{
			"event_id": "evt-local",
			"text":     fmt.Sprintf("Created event %v at %v", args["title"], args["start_time"]),
		}), nil
	}
	inv.handlers["open_app"] = func(_ context.Context, args map[string]any) (*Result, error) {
		return Successful(fmt.Sprintf("Opened %v", args["app_name"])), nil
	}
	inv.handlers["play_music"] = func(_ context.Context, _ map[string]any) (*Result, error) {
		return Successful("playing"), nil
	}

	return inv
}

// SetHandler overrides the handler for one capability.
func (m *MemoryInvoker) SetHandler(capability string, h Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[capability] = h
}

// CallCount returns how many times a capability has been invoked.
func (m *MemoryInvoker) CallCount(capability string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[capability]
}

// Invoke implements Invoker.
func (m *MemoryInvoker) Invoke(ctx context.Context, capability string, args map[string]any) (*Result, error) {
	m.mu.Lock()
	m.calls[capability]++
	handler := m.handlers[capability]
	m.mu.Unlock()

	if handler != nil {
		return handler(ctx, args)
	}

	// Unhandled capabilities echo their arguments so chained plans still
	// have output to carry.
	parts := make([]string, 0, len(args))
	for k, v := range args {
		parts = append(parts, fmt.Sprintf("%s=%v", k, v))
	}
	return Successful(fmt.Sprintf("%s ok (%s)", capability, strings.Join(parts, ", "))), nil
}
