package core

import (
	"errors"
	"sync"

	"picoclock/protocol"
)

// CommandHandler handles a console command. The handler decodes its own
// arguments from the frame data and advances the slice past them.
type CommandHandler func(data *[]byte) error

// Command is one entry of the console dictionary
type Command struct {
	ID      uint16
	Name    string
	Format  string // argument format for the dictionary (e.g., "hour=%c minute=%c")
	Handler CommandHandler
}

// Sender writes an encoded message back to the host
type Sender interface {
	SendCommand(cmdID uint16, args func(output protocol.OutputBuffer))
}

var (
	ErrUnknownCommand    = errors.New("unknown command")
	ErrResponseNotFound  = errors.New("response not registered")
	ErrNoResponseChannel = errors.New("no response channel")
)

// CommandRegistry holds the console commands and responses. Commands have
// handlers (host to clock); responses have nil handlers (clock to host).
type CommandRegistry struct {
	mu       sync.RWMutex
	commands map[uint16]*Command
	nameToID map[string]uint16
	nextID   uint16
	sender   Sender
}

// NewCommandRegistry creates a new command registry
func NewCommandRegistry() *CommandRegistry {
	return &CommandRegistry{
		commands: make(map[uint16]*Command),
		nameToID: make(map[string]uint16),
	}
}

// Register adds a command to the registry and returns its ID. Registering
// the same name twice returns the existing ID.
func (r *CommandRegistry) Register(name string, format string, handler CommandHandler) uint16 {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id, exists := r.nameToID[name]; exists {
		return id
	}

	id := r.nextID
	r.nextID++

	r.commands[id] = &Command{
		ID:      id,
		Name:    name,
		Format:  format,
		Handler: handler,
	}
	r.nameToID[name] = id
	return id
}

// RegisterResponse registers a message sent from the clock to the host
func (r *CommandRegistry) RegisterResponse(name string, format string) uint16 {
	return r.Register(name, format, nil)
}

// GetCommand retrieves a command by ID
func (r *CommandRegistry) GetCommand(id uint16) (*Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, ok := r.commands[id]
	return cmd, ok
}

// GetCommandByName retrieves a command by name
func (r *CommandRegistry) GetCommandByName(name string) (*Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.nameToID[name]
	if !ok {
		return nil, false
	}
	return r.commands[id], true
}

// Count returns the number of registered commands and responses
func (r *CommandRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.commands)
}

// Dispatch calls the handler registered for cmdID
func (r *CommandRegistry) Dispatch(cmdID uint16, data *[]byte) error {
	cmd, ok := r.GetCommand(cmdID)
	if !ok || cmd.Handler == nil {
		return ErrUnknownCommand
	}
	return cmd.Handler(data)
}

// SetSender sets where responses are written
func (r *CommandRegistry) SetSender(s Sender) {
	r.mu.Lock()
	r.sender = s
	r.mu.Unlock()
}

// SendResponse encodes a registered response and hands it to the sender
func (r *CommandRegistry) SendResponse(name string, args func(output protocol.OutputBuffer)) error {
	cmd, ok := r.GetCommandByName(name)
	if !ok {
		return ErrResponseNotFound
	}

	r.mu.RLock()
	s := r.sender
	r.mu.RUnlock()
	if s == nil {
		return ErrNoResponseChannel
	}

	s.SendCommand(cmd.ID, args)
	return nil
}

// GetCommandsAndResponses returns "name format" to ID maps for the dictionary
func (r *CommandRegistry) GetCommandsAndResponses() (map[string]int, map[string]int) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	commands := make(map[string]int)
	responses := make(map[string]int)

	for i := uint16(0); i < r.nextID; i++ {
		cmd, ok := r.commands[i]
		if !ok {
			continue
		}
		formatStr := cmd.Name
		if cmd.Format != "" {
			formatStr = cmd.Name + " " + cmd.Format
		}
		if cmd.Handler != nil {
			commands[formatStr] = int(cmd.ID)
		} else {
			responses[formatStr] = int(cmd.ID)
		}
	}

	return commands, responses
}
