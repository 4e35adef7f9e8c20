package irc

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"os"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/proxy"

	ircerrors "github.com/yourusername/pesterlink/internal/errors"
	"github.com/yourusername/pesterlink/internal/output"
)

const (
	// DefaultReadTimeout is how long a receive may block
	DefaultReadTimeout = 90 * time.Second

	readBufferSize = 1024
	dialTimeout    = 30 * time.Second
)

// State is a connection lifecycle state
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateRegistered
	StateClosing
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateRegistered:
		return "registered"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// StepResult says whether the read loop should keep going
type StepResult int

const (
	// StepMore means more data may follow
	StepMore StepResult = iota
	// StepEnd means the stream ended or the connection was stopped
	StepEnd
)

// ServerOptions describes where and how to connect
type ServerOptions struct {
	Host           string
	Port           int
	TLS            bool
	VerifyHostname bool
	CAFile         string
	Proxy          string // socks5://host:port
	ReadTimeout    time.Duration
}

// Addr returns host:port
func (o ServerOptions) Addr() string {
	return net.JoinHostPort(o.Host, strconv.Itoa(o.Port))
}

// Connection owns the socket and the read loop. Only the goroutine running
// Step or Run reads from it; writes go through the Sender.
type Connection struct {
	opts     ServerOptions
	logger   output.Logger
	sender   *Sender
	dispatch func(*Message)

	mu         sync.Mutex
	conn       net.Conn
	sessionID  string
	stopReason string
	cancel     context.CancelFunc

	state      atomic.Int32
	stopped    atomic.Bool
	registered atomic.Bool

	buf   []byte
	carry []byte
}

// NewConnection creates a connection that hands each parsed line to dispatch
func NewConnection(opts ServerOptions, logger output.Logger, sender *Sender, dispatch func(*Message)) *Connection {
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = DefaultReadTimeout
	}
	return &Connection{
		opts:     opts,
		logger:   logger,
		sender:   sender,
		dispatch: dispatch,
		buf:      make([]byte, readBufferSize),
	}
}

// Connect dials the server, upgrading to TLS when configured. Certificate
// failures come back as a Certificate ConnError so the caller can offer to
// retry without hostname verification.
func (c *Connection) Connect(ctx context.Context) error {
	c.setState(StateConnecting)
	addr := c.opts.Addr()
	c.logger.Info("Connecting to %s (tls=%v)", addr, c.opts.TLS)

	raw, err := c.dial(ctx, addr)
	if err != nil {
		c.setState(StateClosed)
		return ircerrors.New(ircerrors.ErrorTypeConnection, "dial", err)
	}

	conn := raw
	if c.opts.TLS {
		tlsConn, err := c.handshake(ctx, raw)
		if err != nil {
			_ = raw.Close()
			c.setState(StateClosed)
			if ircerrors.IsCertificate(err) {
				return ircerrors.New(ircerrors.ErrorTypeCertificate, "tls", err)
			}
			return ircerrors.New(ircerrors.ErrorTypeConnection, "tls", err)
		}
		conn = tlsConn
	}

	c.Attach(ctx, conn)
	c.logger.Success("Connected to %s [session %s]", addr, c.SessionID())
	return nil
}

// Attach adopts an already established connection
func (c *Connection) Attach(ctx context.Context, conn net.Conn) {
	ctx, cancel := context.WithCancel(ctx)

	c.mu.Lock()
	c.conn = conn
	c.sessionID = uuid.NewString()
	c.cancel = cancel
	c.stopReason = ""
	c.carry = c.carry[:0]
	c.mu.Unlock()

	c.stopped.Store(false)
	c.registered.Store(false)
	c.setState(StateConnecting)
	c.sender.attach(ctx, conn)
}

func (c *Connection) dial(ctx context.Context, addr string) (net.Conn, error) {
	d := &net.Dialer{Timeout: dialTimeout, KeepAlive: 30 * time.Second}
	if c.opts.Proxy == "" {
		return d.DialContext(ctx, "tcp", addr)
	}

	u, err := url.Parse(c.opts.Proxy)
	if err != nil {
		return nil, fmt.Errorf("invalid proxy %q: %w", c.opts.Proxy, err)
	}
	pd, err := proxy.FromURL(u, d)
	if err != nil {
		return nil, fmt.Errorf("proxy %q: %w", c.opts.Proxy, err)
	}
	c.logger.Info("Dialing through proxy %s", u.Host)
	if cd, ok := pd.(proxy.ContextDialer); ok {
		return cd.DialContext(ctx, "tcp", addr)
	}
	return pd.Dial("tcp", addr)
}

func (c *Connection) handshake(ctx context.Context, raw net.Conn) (net.Conn, error) {
	cfg, err := c.tlsConfig()
	if err != nil {
		return nil, err
	}
	tlsConn := tls.Client(raw, cfg)
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		return nil, err
	}
	return tlsConn, nil
}

// tlsConfig trusts the system roots plus CAFile. With VerifyHostname off
// the chain is still verified, only the name check is skipped.
func (c *Connection) tlsConfig() (*tls.Config, error) {
	roots, err := x509.SystemCertPool()
	if err != nil || roots == nil {
		roots = x509.NewCertPool()
	}
	if c.opts.CAFile != "" {
		pem, err := os.ReadFile(c.opts.CAFile)
		if err != nil {
			return nil, fmt.Errorf("read ca_file: %w", err)
		}
		if !roots.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("no certificates found in %s", c.opts.CAFile)
		}
	}

	cfg := &tls.Config{
		ServerName: c.opts.Host,
		RootCAs:    roots,
		MinVersion: tls.VersionTLS12,
	}
	if !c.opts.VerifyHostname {
		cfg.InsecureSkipVerify = true
		cfg.VerifyConnection = func(cs tls.ConnectionState) error {
			if len(cs.PeerCertificates) == 0 {
				return errors.New("server sent no certificate")
			}
			opts := x509.VerifyOptions{Roots: roots, Intermediates: x509.NewCertPool()}
			for _, cert := range cs.PeerCertificates[1:] {
				opts.Intermediates.AddCert(cert)
			}
			_, err := cs.PeerCertificates[0].Verify(opts)
			return err
		}
	}
	return cfg, nil
}

// Step performs one receive and dispatches every complete line it yields.
// Timeouts and socket errors are returned to the caller; a clean end of
// stream or a stopped connection returns StepEnd.
func (c *Connection) Step() (StepResult, error) {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return StepEnd, ircerrors.ErrNotConnected
	}

	_ = conn.SetReadDeadline(time.Now().Add(c.opts.ReadTimeout))
	n, err := conn.Read(c.buf)
	if c.stopped.Load() {
		return StepEnd, nil
	}

	if n > 0 {
		c.carry = append(c.carry, c.buf[:n]...)
		c.drain()
	}

	if err != nil {
		if errors.Is(err, io.EOF) {
			return StepEnd, nil
		}
		if ircerrors.IsTimeout(err) {
			return StepMore, ircerrors.New(ircerrors.ErrorTypeTimeout, "read", err)
		}
		return StepEnd, ircerrors.New(ircerrors.ErrorTypeConnection, "read", err)
	}
	return StepMore, nil
}

// drain dispatches complete lines and keeps the partial tail
func (c *Connection) drain() {
	lines := bytes.Split(c.carry, []byte("\r\n"))
	tail := lines[len(lines)-1]

	for _, raw := range lines[:len(lines)-1] {
		line := decodeUTF8(raw)
		msg, err := ParseLine(line)
		if err != nil {
			continue
		}
		c.dispatch(msg)
		if c.stopped.Load() {
			break
		}
	}

	c.carry = append(c.carry[:0], tail...)
}

// Run steps until the connection ends. Timeouts after registration are
// treated as a wake-up; anything else fatal records a stop reason.
func (c *Connection) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, c.Close)
	defer stop()

	for {
		res, err := c.Step()
		if err != nil {
			if c.stopped.Load() {
				return nil
			}
			if ircerrors.IsTimeout(err) && c.registered.Load() {
				c.logger.Debug("Read timeout on session %s, still registered", c.SessionID())
				continue
			}
			c.fail(ircerrors.Describe(err))
			return err
		}
		if res == StepEnd {
			if !c.stopped.Load() {
				c.fail("server closed the connection")
			}
			return nil
		}
	}
}

// fail records why the connection ended and closes it
func (c *Connection) fail(reason string) {
	c.SetStopReason(reason)
	c.Close()
}

// Close stops the read loop and closes the socket. It is idempotent.
func (c *Connection) Close() {
	c.stopped.Store(true)

	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	cancel := c.cancel
	c.mu.Unlock()

	if conn == nil {
		return
	}

	c.setState(StateClosing)
	c.sender.detach()
	if cancel != nil {
		cancel()
	}
	// Unblock a pending Read before closing
	if err := conn.SetDeadline(time.Now()); err != nil {
		c.logger.Debug("Error while shutting down socket, already broken? %v", err)
	}
	if err := conn.Close(); err != nil {
		c.logger.Debug("Error while closing socket, already broken? %v", err)
	}
	c.setState(StateClosed)
	c.logger.Info("Connection closed [session %s]", c.SessionID())
}

// SetRegistered marks registration complete
func (c *Connection) SetRegistered() {
	c.registered.Store(true)
	c.setState(StateRegistered)
}

// Registered reports whether the welcome numeric has been received
func (c *Connection) Registered() bool {
	return c.registered.Load()
}

// Stopped reports whether Close has been called
func (c *Connection) Stopped() bool {
	return c.stopped.Load()
}

// setState moves the lifecycle forward; it never moves back except when a
// fresh socket is attached.
func (c *Connection) setState(s State) {
	for {
		cur := State(c.state.Load())
		if s <= cur && !(s == StateConnecting && (cur == StateClosed || cur == StateDisconnected)) {
			return
		}
		if c.state.CompareAndSwap(int32(cur), int32(s)) {
			return
		}
	}
}

// State returns the current lifecycle state
func (c *Connection) State() State {
	return State(c.state.Load())
}

// SessionID identifies the current socket in logs and events
func (c *Connection) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

// SetStopReason records why the connection is ending. The first reason wins.
func (c *Connection) SetStopReason(reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopReason == "" {
		c.stopReason = reason
	}
}

// StopReason returns the recorded reason, empty for a user-initiated close
func (c *Connection) StopReason() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stopReason
}
