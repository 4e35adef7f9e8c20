package irc

import (
	"fmt"
	"strings"

	"github.com/yourusername/pesterlink/internal/events"
	"github.com/yourusername/pesterlink/internal/output"
	"github.com/yourusername/pesterlink/internal/profile"
)

// ctcpCommands is the CLIENTINFO reply
const ctcpCommands = "ACTION VERSION CLIENTINFO PING SOURCE NOQUIRKS GETMOOD"

// CTCPHandler answers CTCP queries embedded in PRIVMSG.
// Replies go out as PRIVMSG, which is what other Pesterchum clients expect.
type CTCPHandler struct {
	send     *Sender
	emit     events.Emitter
	logger   output.Logger
	version  string
	source   string
	presence string
	self     func() profile.Profile
}

// NewCTCPHandler creates a new CTCP handler
func NewCTCPHandler(send *Sender, emit events.Emitter, logger output.Logger, opts Options, self func() profile.Profile) *CTCPHandler {
	return &CTCPHandler{
		send:     send,
		emit:     emit,
		logger:   logger,
		version:  opts.Version,
		source:   opts.SourceURL,
		presence: opts.PresenceChannel,
		self:     self,
	}
}

// HandleCTCP processes a CTCP query from handle sent to target.
// It returns false when message isn't CTCP at all.
func (h *CTCPHandler) HandleCTCP(handle, target, message string) bool {
	command, args, ok := ParseCTCPMessage(message)
	if !ok {
		return false
	}

	switch command {
	case "VERSION":
		h.reply(handle, "VERSION", h.version)
	case "CLIENTINFO":
		h.reply(handle, "CLIENTINFO", ctcpCommands)
	case "PING":
		h.reply(handle, "PING", args)
	case "SOURCE":
		h.reply(handle, "SOURCE", h.source)
	case "NOQUIRKS":
		// Memo operators may switch quirks off for everyone in a channel
		if strings.HasPrefix(target, "#") {
			h.emit.Emit(events.QuirkDisable{Channel: target, Reason: args, Op: handle})
		}
	case "GETMOOD":
		mood := "MOOD >" + h.self().Mood.Value()
		h.reply(handle, mood, "")
		if err := h.send.Privmsg(h.presence, mood); err != nil {
			h.logger.Error("Failed to broadcast mood: %v", err)
		}
	default:
		h.logger.Info("Unhandled CTCP request from %s: %s", handle, command)
	}
	return true
}

func (h *CTCPHandler) reply(target, command, response string) {
	h.logger.Debug("CTCP %s reply to %s", command, target)
	if err := h.send.CTCP(target, command, response); err != nil {
		h.logger.Error("Failed to send CTCP %s reply to %s: %v", command, target, err)
	}
}

// FormatCTCPMessage formats a CTCP message with proper delimiters
func FormatCTCPMessage(command, args string) string {
	if args == "" {
		return fmt.Sprintf("\x01%s\x01", command)
	}
	return fmt.Sprintf("\x01%s %s\x01", command, args)
}

// IsCTCPMessage checks if a message is a CTCP message. The closing
// delimiter is optional; some clients leave it off.
func IsCTCPMessage(message string) bool {
	return strings.HasPrefix(message, "\x01")
}

// ParseCTCPMessage extracts the command and arguments from a CTCP message
func ParseCTCPMessage(message string) (command, args string, ok bool) {
	if !IsCTCPMessage(message) {
		return "", "", false
	}

	content := strings.TrimSuffix(message[1:], "\x01")
	parts := strings.SplitN(content, " ", 2)
	command = strings.ToUpper(parts[0])

	if len(parts) > 1 {
		args = parts[1]
	}

	return command, args, true
}
