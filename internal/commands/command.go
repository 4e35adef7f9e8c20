package commands

import (
	"github.com/yourusername/pesterlink/internal/profile"
)

// Command is a slash command typed at the terminal
type Command interface {
	// Name returns the command name (without prefix)
	Name() string

	// Usage returns the argument synopsis shown on misuse
	Usage() string

	// Help returns one line of help text
	Help() string

	// MinArgs is the fewest arguments Execute accepts
	MinArgs() int

	// Execute runs the command
	Execute(ctx *Context) (*Response, error)
}

// Session is the part of the protocol client commands drive
type Session interface {
	Profile() profile.Profile
	SendMessage(target, text string) error
	SendNotice(handle, text string) error
	SendCTCP(handle, command string) error
	StartConversation(handle string, initiated bool) error
	EndConversation(handle string) error
	Block(handle string) error
	Unblock(handle string) error
	UpdateProfile(p profile.Profile) error
	UpdateMood(mood profile.Mood) error
	UpdateColor(color profile.Color, conversations ...string) error
	RequestNames(channel string) error
	RequestChannelList() error
	JoinChannel(channel string) error
	PartChannel(channel string) error
	KickUser(channel, handle, reason string) error
	SetChannelMode(channel, mode, params string) error
	InviteChum(handle, channel string) error
	Ping() error
	SetAway(away bool) error
	KillQuirks(channel, handle string) error
	GetMood(handles ...string)
}

// Context carries one parsed command line
type Context struct {
	// Command name (without prefix)
	Command string

	// Arguments split on whitespace
	Args []string

	// Everything after the command name, whitespace preserved
	Rest string

	// Raw line as typed
	RawMessage string

	// Conversation or memo plain lines currently go to
	Target string
}

// Response is what the terminal shows after a command
type Response struct {
	Message string

	// Non-empty switches the active conversation
	SetTarget string

	// Clears the active conversation
	ClearTarget bool

	IsError bool
}

// NewResponse creates a plain response
func NewResponse(message string) *Response {
	return &Response{Message: message}
}

// NewErrorResponse creates an error response
func NewErrorResponse(message string) *Response {
	return &Response{Message: message, IsError: true}
}
