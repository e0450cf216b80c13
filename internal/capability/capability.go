// Package capability declares the closed set of assistant capabilities the
// engine can invoke, together with the adapters that bridge to the external
// automation surface.
package capability

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Descriptor declares the static contract of one capability: which arguments
// must be present, whether it is communication-class (confirmation-gated),
// and which argument fields identify its side effect for dedup purposes.
type Descriptor struct {
	Name        string
	Description string

	// Communication marks capabilities whose invocation must be confirmed
	// by the user before execution.
	Communication bool

	// Required lists argument fields that must be present and non-empty.
	Required []string

	// FingerprintFields identify the side effect this capability creates.
	// Empty means the capability is not dedup-tracked.
	FingerprintFields []string
}

// Fingerprint derives the dedup key for the given arguments, or "" when the
// capability is not dedup-tracked.
func (d *Descriptor) Fingerprint(args map[string]any) string {
	if len(d.FingerprintFields) == 0 {
		return ""
	}
	parts := make([]string, 0, len(d.FingerprintFields)+1)
	parts = append(parts, d.Name)
	present := false
	for _, f := range d.FingerprintFields {
		v, ok := args[f]
		if ok && v != nil {
			present = true
			parts = append(parts, fmt.Sprintf("%v", v))
		} else {
			parts = append(parts, "")
		}
	}
	// 所有识别字段都缺失时无法判定副作用，放弃去重
	if !present {
		return ""
	}
	return strings.Join(parts, "|")
}

// MissingFields returns the required fields absent or blank in args, in
// declaration order.
func (d *Descriptor) MissingFields(args map[string]any) []string {
	var missing []string
	for _, f := range d.Required {
		v, ok := args[f]
		if !ok || v == nil {
			missing = append(missing, f)
			continue
		}
		if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
			missing = append(missing, f)
		}
	}
	return missing
}

// Summary renders a one-line human-readable description of a proposed
// invocation, shown on confirmation prompts.
func (d *Descriptor) Summary(args map[string]any) string {
	switch d.Name {
	case "send_message":
		return fmt.Sprintf("Send message to %v: %v", args["recipient"], args["body"])
	case "send_email":
		return fmt.Sprintf("Send email to %v with subject %q", args["to"], args["subject"])
	default:
		keys := make([]string, 0, len(args))
		for k := range args {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%v", k, args[k]))
		}
		return fmt.Sprintf("%s (%s)", strings.ReplaceAll(d.Name, "_", " "), strings.Join(parts, ", "))
	}
}

// Registry 管理能力描述符的注册和查找。
type Registry struct {
	descriptors map[string]*Descriptor
	mu          sync.RWMutex
}

// NewRegistry creates an empty capability registry.
func NewRegistry() *Registry {
	return &Registry{descriptors: make(map[string]*Descriptor)}
}

// Register adds a descriptor; registering a duplicate name is an error.
func (r *Registry) Register(d *Descriptor) error {
	if d == nil || d.Name == "" {
		return fmt.Errorf("capability descriptor must have a name")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.descriptors[d.Name]; exists {
		return fmt.Errorf("capability already registered: %s", d.Name)
	}
	r.descriptors[d.Name] = d
	return nil
}

// MustRegister registers a descriptor and panics on error.
func (r *Registry) MustRegister(d *Descriptor) {
	if err := r.Register(d); err != nil {
		panic(err)
	}
}

// Get returns the descriptor for name, or nil if unknown.
func (r *Registry) Get(name string) *Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.descriptors[name]
}

// Has reports whether name is a known capability.
func (r *Registry) Has(name string) bool {
	return r.Get(name) != nil
}

// IsCommunication reports whether name is a communication-class capability.
// Unknown capabilities are not gated.
func (r *Registry) IsCommunication(name string) bool {
	d := r.Get(name)
	return d != nil && d.Communication
}

// Names returns all registered capability names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.descriptors))
	for n := range r.descriptors {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Builtins returns a registry populated with the assistant's capability set.
func Builtins() *Registry {
	r := NewRegistry()
	r.MustRegister(&Descriptor{
		Name:          "send_message",
		Description:   "Send a chat message to a contact",
		Communication: true,
		Required:      []string{"recipient", "body"},
	})
	r.MustRegister(&Descriptor{
		Name:          "send_email",
		Description:   "Send an email",
		Communication: true,
		Required:      []string{"to", "subject", "body"},
	})
	r.MustRegister(&Descriptor{
		Name:              "create_event",
		Description:       "Create a calendar event",
		Required:          []string{"title", "start_time"},
		FingerprintFields: []string{"title", "start_time", "end_time"},
	})
	r.MustRegister(&Descriptor{
		Name:              "create_reminder",
		Description:       "Create a reminder",
		Required:          []string{"title", "time"},
		FingerprintFields: []string{"title", "time"},
	})
	r.MustRegister(&Descriptor{
		Name:        "open_app",
		Description: "Open an application",
		Required:    []string{"app_name"},
	})
	r.MustRegister(&Descriptor{
		Name:        "query_model",
		Description: "Ask the language model a question",
		Required:    []string{"prompt"},
	})
	r.MustRegister(&Descriptor{
		Name:        "web_search",
		Description: "Search the web",
		Required:    []string{"query"},
	})
	r.MustRegister(&Descriptor{
		Name:        "read_sheet",
		Description: "Read data from a spreadsheet",
		Required:    []string{"sheet"},
	})
	r.MustRegister(&Descriptor{
		Name:        "play_music",
		Description: "Control music playback",
	})
	return r
}
