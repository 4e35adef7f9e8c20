package irc

import (
	"context"
	"errors"
	"net"
	"sync"

	ircerrors "github.com/yourusername/pesterlink/internal/errors"
	"github.com/yourusername/pesterlink/internal/events"
	"github.com/yourusername/pesterlink/internal/output"
	"github.com/yourusername/pesterlink/internal/profile"
	"github.com/yourusername/pesterlink/internal/ratelimit"
	"github.com/yourusername/pesterlink/internal/splitter"
)

// Registration identity sent to every server
const registrationUser = "pcc31"

// Client is the protocol engine: it owns one connection, runs its read loop
// and turns user actions into wire commands. Everything it learns from the
// server is reported through the Emitter.
type Client struct {
	server   ServerOptions
	opts     Options
	logger   output.Logger
	emit     events.Emitter
	self     *identity
	sender   *Sender
	conn     *Connection
	dispatch *Dispatcher
	handlers *Handlers
	splitter *splitter.Splitter

	mu   sync.Mutex
	done chan struct{}
}

// NewClient creates a client for me. limiter may be nil to send unthrottled.
func NewClient(server ServerOptions, opts Options, me profile.Profile, contacts ContactList, emit events.Emitter, logger output.Logger, limiter *ratelimit.Limiter) *Client {
	if opts.ServerHost == "" {
		opts.ServerHost = server.Host
	}

	c := &Client{
		server:   server,
		logger:   logger,
		emit:     emit,
		self:     &identity{p: me},
		sender:   NewSender(logger, limiter),
		dispatch: NewDispatcher(logger),
		splitter: splitter.Default(),
	}
	c.handlers = newHandlers(opts, c.sender, emit, logger, c.self, contacts)
	c.opts = c.handlers.opts
	c.conn = NewConnection(server, logger, c.sender, func(m *Message) {
		_ = c.dispatch.Dispatch(m)
	})
	c.handlers.conn = c.conn
	c.handlers.register(c.dispatch)
	return c
}

// Connect dials the server and registers. A certificate failure is also
// reported as a CertificateError event so the caller can offer to retry
// without hostname verification.
func (c *Client) Connect(ctx context.Context) error {
	c.handlers.reset()
	if err := c.conn.Connect(ctx); err != nil {
		if ircerrors.IsCertificate(err) {
			c.emit.Emit(events.CertificateError{Host: c.server.Host, Err: err})
		}
		return err
	}
	return c.register()
}

// Attach registers over an existing connection instead of dialing
func (c *Client) Attach(ctx context.Context, nc net.Conn) error {
	c.handlers.reset()
	c.conn.Attach(ctx, nc)
	return c.register()
}

func (c *Client) register() error {
	handle := c.self.get().Handle
	c.handlers.requestedNick.Store(handle)
	if err := c.sender.Nick(handle); err != nil {
		return err
	}
	return c.sender.User(registrationUser, registrationUser)
}

// Run reads from the server until the connection ends. If it ended for any
// reason other than Disconnect, a ConnectionBroken event carries the reason.
func (c *Client) Run(ctx context.Context) error {
	err := c.conn.Run(ctx)
	if reason := c.conn.StopReason(); reason != "" {
		c.emit.Emit(events.ConnectionBroken{SessionID: c.conn.SessionID(), Reason: reason, Err: err})
	}
	return err
}

// Start connects and runs the read loop on its own goroutine. Done is closed
// when it finishes.
func (c *Client) Start(ctx context.Context) {
	done := make(chan struct{})
	c.mu.Lock()
	c.done = done
	c.mu.Unlock()

	go func() {
		defer close(done)
		if err := c.Connect(ctx); err != nil {
			if !ircerrors.IsCertificate(err) {
				c.emit.Emit(events.ConnectionBroken{Reason: ircerrors.Describe(err), Err: err})
			}
			return
		}
		_ = c.Run(ctx)
	}()
}

// Done is closed when the goroutine started by Start exits
func (c *Client) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.done == nil {
		closed := make(chan struct{})
		close(closed)
		return closed
	}
	return c.done
}

// Disconnect says goodbye and closes the connection. No ConnectionBroken
// event follows.
func (c *Client) Disconnect() {
	c.handlers.disconnect()
}

// State returns the connection's lifecycle state
func (c *Client) State() State {
	return c.conn.State()
}

// SessionID identifies the current connection
func (c *Client) SessionID() string {
	return c.conn.SessionID()
}

// Profile returns a copy of the local profile
func (c *Client) Profile() profile.Profile {
	return c.self.get()
}

// MetadataSupported reports whether moods travel over METADATA
func (c *Client) MetadataSupported() bool {
	return c.handlers.MetadataSupported()
}

// GetMood asks for the moods of handles
func (c *Client) GetMood(handles ...string) {
	c.handlers.GetMood(handles...)
}

// SendMessage pesters handle (or a memo) with text, split into lines that
// fit on the wire with color markup balanced on each.
func (c *Client) SendMessage(target, text string) error {
	lines := c.splitter.Lines(text)
	for i, line := range lines {
		if err := c.sender.Privmsg(target, line); err != nil {
			switch {
			case len(lines) == 1:
				return err
			case i == 0:
				return splitter.NewAllPartsFailed(len(lines), err)
			default:
				return splitter.NewPartialSendFailure(i, len(lines), err)
			}
		}
	}
	return nil
}

// SendNotice sends a NOTICE to handle
func (c *Client) SendNotice(handle, text string) error {
	return c.sender.Notice(handle, text)
}

// SendCTCP sends a bare CTCP query such as VERSION
func (c *Client) SendCTCP(handle, command string) error {
	return c.sender.CTCP(handle, command, "")
}

// StartConversation tells handle our color, and that we opened the window
// when initiated is true.
func (c *Client) StartConversation(handle string, initiated bool) error {
	if err := c.sender.Privmsg(handle, colorPrefix+c.self.get().Color.Cmd()); err != nil {
		return err
	}
	if initiated {
		return c.sender.Privmsg(handle, "PESTERCHUM:BEGIN")
	}
	return nil
}

// EndConversation tells handle we closed the window
func (c *Client) EndConversation(handle string) error {
	return c.sender.Privmsg(handle, "PESTERCHUM:CEASE")
}

// Block tells handle they are blocked
func (c *Client) Block(handle string) error {
	return c.sender.Privmsg(handle, "PESTERCHUM:BLOCK")
}

// Unblock tells handle they are no longer blocked
func (c *Client) Unblock(handle string) error {
	return c.sender.Privmsg(handle, "PESTERCHUM:UNBLOCK")
}

// UpdateProfile switches to p, sending whatever changed. The mood is always
// republished.
func (c *Client) UpdateProfile(p profile.Profile) error {
	old := c.self.get()
	c.self.set(p)

	if p.Handle != old.Handle {
		c.handlers.changeNick(p.Handle)
	}
	if p.Color != old.Color {
		if err := c.sender.Metadata("*", "set", "color", p.Color.Hex()); err != nil {
			return err
		}
	}
	return c.publishMood(p.Mood)
}

// UpdateMood sets our mood and announces it both ways
func (c *Client) UpdateMood(mood profile.Mood) error {
	p := c.self.get()
	p.Mood = mood
	c.self.set(p)
	return c.publishMood(mood)
}

func (c *Client) publishMood(mood profile.Mood) error {
	if err := c.sender.Metadata("*", "set", "mood", mood.Value()); err != nil {
		return err
	}
	return c.sender.Privmsg(c.opts.PresenceChannel, moodPrefix+mood.Value())
}

// UpdateColor sets our color, publishes it and tells every open conversation
func (c *Client) UpdateColor(color profile.Color, conversations ...string) error {
	p := c.self.get()
	p.Color = color
	c.self.set(p)

	if err := c.sender.Metadata("*", "set", "color", color.Hex()); err != nil {
		return err
	}
	for _, handle := range conversations {
		if err := c.sender.Privmsg(handle, colorPrefix+color.Cmd()); err != nil {
			return err
		}
	}
	return nil
}

// RequestNames asks for a memo's member list; it arrives as NamesReceived
func (c *Client) RequestNames(channel string) error {
	return c.sender.Names(channel)
}

// RequestChannelList asks for the memo list; it arrives as ChannelListReceived
func (c *Client) RequestChannelList() error {
	return c.sender.List()
}

// JoinChannel joins a memo and asks for its modes
func (c *Client) JoinChannel(channel string) error {
	c.logger.Info("Joining %s", channel)
	if err := c.sender.Join(channel, ""); err != nil {
		return err
	}
	return c.sender.Mode(channel, "", "")
}

// PartChannel leaves a memo
func (c *Client) PartChannel(channel string) error {
	c.logger.Info("Leaving %s", channel)
	return c.sender.Part(channel)
}

// KickUser removes handle from a memo
func (c *Client) KickUser(channel, handle, reason string) error {
	return c.sender.Kick(channel, handle, reason)
}

// SetChannelMode changes a memo's modes
func (c *Client) SetChannelMode(channel, mode, params string) error {
	return c.sender.Mode(channel, mode, params)
}

// InviteChum invites handle to a memo
func (c *Client) InviteChum(handle, channel string) error {
	return c.sender.Invite(handle, channel)
}

// Ping checks the server is still there
func (c *Client) Ping() error {
	return c.sender.Ping("B33")
}

// SetAway marks us idle, or back
func (c *Client) SetAway(away bool) error {
	if away {
		return c.sender.Away("Idle")
	}
	return c.sender.Away("")
}

// KillQuirks asks everyone in a memo to stop applying handle's quirks
func (c *Client) KillQuirks(channel, handle string) error {
	return c.sender.CTCP(channel, "NOQUIRKS", handle)
}

// IsNotConnected reports whether err means there was no connection to use
func IsNotConnected(err error) bool {
	return errors.Is(err, ircerrors.ErrNotConnected)
}
