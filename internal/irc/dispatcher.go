package irc

import (
	"fmt"

	ircerrors "github.com/yourusername/pesterlink/internal/errors"
	"github.com/yourusername/pesterlink/internal/output"
)

// Command identifies a supported command or numeric
type Command int

const (
	CmdUnknown Command = iota
	CmdWelcome
	CmdISupport
	CmdUModeIs
	CmdListStart
	CmdList
	CmdListEnd
	CmdChannelModeIs
	CmdNamReply
	CmdEndOfNames
	CmdCannotSendToChan
	CmdErroneousNickname
	CmdNicknameInUse
	CmdNickCollision
	CmdForbiddenChannel
	CmdInviteOnlyChan
	CmdKeyValue
	CmdNoMatchingKey
	CmdKeyNotSet
	CmdKeyNoPermission
	CmdMetadataSubOK
	CmdError
	CmdJoin
	CmdKick
	CmdMode
	CmdPart
	CmdPing
	CmdPrivmsg
	CmdNotice
	CmdQuit
	CmdInvite
	CmdNick
	CmdMetadata
	CmdTagmsg
	CmdCap

	commandCount
)

var commandTokens = map[string]Command{
	"001":      CmdWelcome,
	"005":      CmdISupport,
	"221":      CmdUModeIs,
	"321":      CmdListStart,
	"322":      CmdList,
	"323":      CmdListEnd,
	"324":      CmdChannelModeIs,
	"353":      CmdNamReply,
	"366":      CmdEndOfNames,
	"404":      CmdCannotSendToChan,
	"432":      CmdErroneousNickname,
	"433":      CmdNicknameInUse,
	"436":      CmdNickCollision,
	"448":      CmdForbiddenChannel,
	"473":      CmdInviteOnlyChan,
	"761":      CmdKeyValue,
	"766":      CmdNoMatchingKey,
	"768":      CmdKeyNotSet,
	"769":      CmdKeyNoPermission,
	"770":      CmdMetadataSubOK,
	"error":    CmdError,
	"join":     CmdJoin,
	"kick":     CmdKick,
	"mode":     CmdMode,
	"part":     CmdPart,
	"ping":     CmdPing,
	"privmsg":  CmdPrivmsg,
	"notice":   CmdNotice,
	"quit":     CmdQuit,
	"invite":   CmdInvite,
	"nick":     CmdNick,
	"metadata": CmdMetadata,
	"tagmsg":   CmdTagmsg,
	"cap":      CmdCap,
}

// LookupCommand maps a lower-case token to its Command
func LookupCommand(token string) Command {
	return commandTokens[token]
}

// HandlerFunc handles one parsed message
type HandlerFunc func(*Message) error

type route struct {
	minArgs int
	handle  HandlerFunc
}

// Dispatcher routes messages to handlers. Handler failures, including
// panics, are logged and never reach the read loop.
type Dispatcher struct {
	routes [commandCount]route
	logger output.Logger
}

// NewDispatcher creates a dispatcher with no routes
func NewDispatcher(logger output.Logger) *Dispatcher {
	return &Dispatcher{logger: logger}
}

// Register sets the handler for cmd. Messages with fewer than minArgs
// arguments are dropped before reaching it; extra arguments are allowed.
func (d *Dispatcher) Register(cmd Command, minArgs int, fn HandlerFunc) {
	if cmd <= CmdUnknown || cmd >= commandCount {
		panic(fmt.Sprintf("irc: register of invalid command %d", cmd))
	}
	d.routes[cmd] = route{minArgs: minArgs, handle: fn}
}

// Dispatch runs the handler for msg. The returned error is informational;
// it has already been logged.
func (d *Dispatcher) Dispatch(msg *Message) (err error) {
	cmd := LookupCommand(msg.Command)
	r := d.routes[cmd]
	if cmd == CmdUnknown || r.handle == nil {
		d.logger.Debug("No handler for %s %v", msg.Command, msg.Args)
		return nil
	}

	if len(msg.Args) < r.minArgs {
		err = ircerrors.NewArityError(msg.Command, r.minArgs, len(msg.Args))
		d.logger.Warning("Dropping %s from %s: %v", msg.Command, msg.Prefix, err)
		return err
	}

	defer func() {
		if rec := recover(); rec != nil {
			err = ircerrors.NewHandlerError(msg.Command, fmt.Errorf("panic: %v", rec))
			d.logger.Error("Handler for %s panicked: %v (args %q)", msg.Command, rec, msg.Args)
		}
	}()

	if herr := r.handle(msg); herr != nil {
		err = ircerrors.NewHandlerError(msg.Command, herr)
		d.logger.Warning("Handler for %s failed: %v", msg.Command, herr)
	}
	return err
}
