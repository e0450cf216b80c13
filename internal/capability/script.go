package capability

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dop251/goja"
)

// ScriptInvoker implements capabilities as local JavaScript files: for a
// capability named create_event, <dir>/create_event.js must define a global
// function invoke(args) that returns the capability output or throws.
type ScriptInvoker struct {
	programs map[string]*goja.Program
	mu       sync.RWMutex
}

// NewScriptInvoker compiles every *.js file in dir. The file base name is
// the capability name.
func NewScriptInvoker(dir string) (*ScriptInvoker, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read script dir: %w", err)
	}

	inv := &ScriptInvoker{programs: make(map[string]*goja.Program)}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".js") {
			continue
		}
		src, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read script %s: %w", entry.Name(), err)
		}
		prog, err := goja.Compile(entry.Name(), string(src), true)
		if err != nil {
			return nil, fmt.Errorf("compile script %s: %w", entry.Name(), err)
		}
		name := strings.TrimSuffix(entry.Name(), ".js")
		inv.programs[name] = prog
	}
	return inv, nil
}

// Invoke implements Invoker. Each call runs in a fresh VM; goja runtimes are
// not goroutine-safe.
func (s *ScriptInvoker) Invoke(_ context.Context, capability string, args map[string]any) (*Result, error) {
	s.mu.RLock()
	prog, ok := s.programs[capability]
	s.mu.RUnlock()
	if !ok {
		return Failure(fmt.Sprintf("capability not found: no script for %s", capability)), nil
	}

	vm := goja.New()
	if _, err := vm.RunProgram(prog); err != nil {
		return Failure(fmt.Sprintf("script %s failed to load: %v", capability, err)), nil
	}

	fn, ok := goja.AssertFunction(vm.Get("invoke"))
	if !ok {
		return Failure(fmt.Sprintf("script %s does not define invoke(args)", capability)), nil
	}

	value, err := fn(goja.Undefined(), vm.ToValue(args))
	if err != nil {
		// A thrown value is a capability-level failure, not an adapter
		// failure.
		return Failure(fmt.Sprintf("script %s: %v", capability, err)), nil
	}

	return Successful(value.Export()), nil
}
