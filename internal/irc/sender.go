package irc

import (
	"context"
	"net"
	"strings"
	"sync"
	"time"

	ircerrors "github.com/yourusername/pesterlink/internal/errors"
	"github.com/yourusername/pesterlink/internal/output"
	"github.com/yourusername/pesterlink/internal/ratelimit"
)

const writeTimeout = 30 * time.Second

var (
	lineBreaks      = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")
	normalizeBreaks = strings.NewReplacer("\r\n", "\n", "\r", "\n")
)

// FormatLine builds a wire line: args joined by spaces, then " :text" when
// text is non-empty, then CRLF.
// Line breaks inside args or text become spaces so one call is always
// exactly one command.
func FormatLine(text string, args ...string) string {
	var b strings.Builder
	for i, arg := range args {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(lineBreaks.Replace(arg))
	}
	if text != "" {
		b.WriteString(" :")
		b.WriteString(lineBreaks.Replace(text))
	}
	b.WriteString("\r\n")
	return decodeUTF8([]byte(b.String()))
}

// Sender writes commands to the server. It is safe for concurrent use;
// whole lines are written under a lock so they never interleave.
type Sender struct {
	mu      sync.Mutex
	conn    net.Conn
	ctx     context.Context
	logger  output.Logger
	limiter *ratelimit.Limiter
}

// NewSender creates a sender with no socket attached. limiter may be nil.
func NewSender(logger output.Logger, limiter *ratelimit.Limiter) *Sender {
	return &Sender{logger: logger, limiter: limiter, ctx: context.Background()}
}

// attach points the sender at conn. ctx bounds rate limiter waits.
func (s *Sender) attach(ctx context.Context, conn net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conn = conn
	s.ctx = ctx
}

func (s *Sender) detach() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conn = nil
}

// Send writes one command. text, when non-empty, is sent as the trailing
// parameter. A failed write closes the socket so the read loop notices.
func (s *Sender) Send(text string, args ...string) error {
	line := FormatLine(text, args...)

	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()
	if err := s.limiter.Wait(ctx); err != nil {
		return ircerrors.New(ircerrors.ErrorTypeConnection, "write", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		s.logger.Error("Send attempted while disconnected: %q", strings.TrimSpace(line))
		return ircerrors.ErrNotConnected
	}

	s.logger.Debug("Sending: %s", strings.TrimSpace(line))
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if _, err := s.conn.Write([]byte(line)); err != nil {
		s.logger.Error("Error while sending %q: %v", strings.TrimSpace(line), err)
		_ = s.conn.Close()
		return ircerrors.New(ircerrors.ErrorTypeConnection, "write", err)
	}
	return nil
}

// Ping checks the connection is alive
func (s *Sender) Ping(token string) error {
	return s.Send(token, "PING")
}

// Pong answers a server PING
func (s *Sender) Pong(token string) error {
	return s.Send("", "PONG", token)
}

// Nick requests a handle change
func (s *Sender) Nick(nick string) error {
	return s.Send("", "NICK", nick)
}

// User registers the connection
func (s *Sender) User(username, realname string) error {
	return s.Send(realname, "USER", username, "0", "*")
}

// Privmsg sends text to target, one line per line break in text
func (s *Sender) Privmsg(target, text string) error {
	for _, line := range strings.Split(normalizeBreaks.Replace(text), "\n") {
		if err := s.Send(line, "PRIVMSG", target); err != nil {
			return err
		}
	}
	return nil
}

// Notice sends a NOTICE
func (s *Sender) Notice(target, text string) error {
	return s.Send(text, "NOTICE", target)
}

// Names asks for a channel's member list
func (s *Sender) Names(channel string) error {
	return s.Send("", "NAMES", channel)
}

// Kick removes user from channel
func (s *Sender) Kick(channel, user, reason string) error {
	return s.Send(reason, "KICK", channel, user)
}

// Mode sets or queries modes on target
func (s *Sender) Mode(target, modes, params string) error {
	return s.Send("", "MODE", strings.TrimSpace(strings.Join([]string{target, modes, params}, " ")))
}

// CTCP sends a client-to-client query wrapped in \x01
func (s *Sender) CTCP(target, command, msg string) error {
	return s.Privmsg(target, FormatCTCPMessage(command, strings.TrimSpace(msg)))
}

// Metadata sends a METADATA subcommand
func (s *Sender) Metadata(target, subcommand string, params ...string) error {
	return s.Send("", append([]string{"METADATA", target, subcommand}, params...)...)
}

// Cap sends a capability negotiation command
func (s *Sender) Cap(subcommand string, params ...string) error {
	return s.Send("", append([]string{"CAP", subcommand}, params...)...)
}

// Join enters a channel, with an optional key
func (s *Sender) Join(channel, key string) error {
	return s.Send("", "JOIN", strings.TrimSpace(channel+" "+key))
}

// Part leaves a channel
func (s *Sender) Part(channel string) error {
	return s.Send("", "PART", channel)
}

// Invite asks nick to join channel
func (s *Sender) Invite(nick, channel string) error {
	return s.Send("", "INVITE", nick, channel)
}

// Away marks us away with text, or back when text is empty
func (s *Sender) Away(text string) error {
	return s.Send(text, "AWAY")
}

// List asks for the channel list
func (s *Sender) List() error {
	return s.Send("", "LIST")
}

// Quit ends the session
func (s *Sender) Quit(reason string) error {
	return s.Send(reason, "QUIT")
}
