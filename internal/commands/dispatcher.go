package commands

import (
	"strings"
	"sync"
)

// Dispatcher turns terminal input into commands or outgoing messages
type Dispatcher struct {
	registry      *Registry
	session       Session
	commandPrefix string

	mu     sync.Mutex
	target string
}

// NewDispatcher creates a dispatcher. Lines without the prefix are sent
// to the active conversation.
func NewDispatcher(registry *Registry, session Session, commandPrefix string) *Dispatcher {
	return &Dispatcher{
		registry:      registry,
		session:       session,
		commandPrefix: commandPrefix,
	}
}

// IsCommand checks if a line starts with the command prefix
func (d *Dispatcher) IsCommand(line string) bool {
	return strings.HasPrefix(line, d.commandPrefix)
}

// ParseCommand splits a command line into name, arguments and the raw
// remainder after the name.
func (d *Dispatcher) ParseCommand(line string) (command string, args []string, rest string) {
	if !d.IsCommand(line) {
		return "", nil, ""
	}
	line = strings.TrimSpace(strings.TrimPrefix(line, d.commandPrefix))

	name, rest, _ := strings.Cut(line, " ")
	if name == "" {
		return "", nil, ""
	}
	rest = strings.TrimSpace(rest)
	args = strings.Fields(rest)
	if args == nil {
		args = []string{}
	}
	return strings.ToLower(name), args, rest
}

// Dispatch handles one line of input. A nil response means nothing to show.
func (d *Dispatcher) Dispatch(line string) (*Response, error) {
	line = strings.TrimRight(line, "\r\n")
	if strings.TrimSpace(line) == "" {
		return nil, nil
	}

	if !d.IsCommand(line) {
		target := d.Target()
		if target == "" {
			return NewErrorResponse("No active conversation. Use /query <handle> or /join <#memo>."), nil
		}
		return nil, d.session.SendMessage(target, line)
	}

	command, args, rest := d.ParseCommand(line)
	if command == "" {
		return nil, nil
	}

	resp, err := d.registry.Execute(&Context{
		Command:    command,
		Args:       args,
		Rest:       rest,
		RawMessage: line,
		Target:     d.Target(),
	})
	if err != nil {
		return nil, err
	}
	if resp != nil {
		switch {
		case resp.SetTarget != "":
			d.SetTarget(resp.SetTarget)
		case resp.ClearTarget:
			d.SetTarget("")
		}
	}
	return resp, nil
}

// Target returns the active conversation
func (d *Dispatcher) Target() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.target
}

// SetTarget switches the active conversation
func (d *Dispatcher) SetTarget(target string) {
	d.mu.Lock()
	d.target = target
	d.mu.Unlock()
}

// GetRegistry returns the command registry
func (d *Dispatcher) GetRegistry() *Registry {
	return d.registry
}
