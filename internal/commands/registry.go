package commands

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry maps command names to commands
type Registry struct {
	commands map[string]Command
	mu       sync.RWMutex
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		commands: make(map[string]Command),
	}
}

// Register adds a command. Names are case-insensitive and unique.
func (r *Registry) Register(cmd Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := strings.ToLower(cmd.Name())
	if _, exists := r.commands[name]; exists {
		return fmt.Errorf("command %s already registered", name)
	}

	r.commands[name] = cmd
	return nil
}

// Get retrieves a command by name
func (r *Registry) Get(name string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cmd, exists := r.commands[strings.ToLower(name)]
	return cmd, exists
}

// Has checks if a command exists in the registry
func (r *Registry) Has(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// List returns all registered command names, sorted
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Execute runs the named command after checking its arity
func (r *Registry) Execute(ctx *Context) (*Response, error) {
	cmd, exists := r.Get(ctx.Command)
	if !exists {
		return NewErrorResponse(fmt.Sprintf("Unknown command /%s. Try /help.", ctx.Command)), nil
	}
	if len(ctx.Args) < cmd.MinArgs() {
		return NewErrorResponse(fmt.Sprintf("Usage: /%s %s", cmd.Name(), cmd.Usage())), nil
	}
	return cmd.Execute(ctx)
}
