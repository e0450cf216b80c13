// Package types defines the core domain types shared across the assistant
// engine: execution plans, tasks, step results, confirmation payloads,
// classified errors and progress events.
package types
