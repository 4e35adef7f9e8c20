package irc

import (
	"bufio"
	"context"
	"net"
	"testing"
	"time"

	"github.com/yourusername/pesterlink/internal/events"
	"github.com/yourusername/pesterlink/internal/output"
	"github.com/yourusername/pesterlink/internal/profile"
)

// fakeServer is the far end of a net.Pipe. Every line the client writes
// lands in lines.
type fakeServer struct {
	t     *testing.T
	conn  net.Conn
	lines chan string
}

func (s *fakeServer) read() {
	defer close(s.lines)
	sc := bufio.NewScanner(s.conn)
	for sc.Scan() {
		s.lines <- sc.Text()
	}
}

// expect fails unless the next line written is want
func (s *fakeServer) expect(want string) {
	s.t.Helper()
	if got := s.next(); got != want {
		s.t.Fatalf("client sent %q, want %q", got, want)
	}
}

func (s *fakeServer) next() string {
	s.t.Helper()
	select {
	case got, ok := <-s.lines:
		if !ok {
			s.t.Fatal("connection closed while waiting for a line")
		}
		return got
	case <-time.After(2 * time.Second):
		s.t.Fatal("timed out waiting for the client to send")
	}
	return ""
}

// expectQuiet fails if the client sends anything in the next moment
func (s *fakeServer) expectQuiet() {
	s.t.Helper()
	select {
	case got, ok := <-s.lines:
		if ok {
			s.t.Fatalf("client sent unexpected %q", got)
		}
	case <-time.After(50 * time.Millisecond):
	}
}

var testOptions = Options{
	Version:   "pesterlink test",
	SourceURL: "https://example.net/pesterlink",
}

func testProfile() profile.Profile {
	return *profile.New("ectoBiologist", profile.Color{R: 7, G: 21, B: 205}, profile.Mood(5))
}

// newTestClient returns a client attached to a fake server, past the
// NICK/USER handshake.
func newTestClient(t *testing.T, opts Options, contacts ...string) (*Client, *fakeServer, *events.Recorder) {
	t.Helper()
	clientSide, serverSide := net.Pipe()
	rec := &events.Recorder{}
	server := ServerOptions{Host: "irc.pesterchum.xyz", Port: 6697, ReadTimeout: time.Second}
	c := NewClient(server, opts, testProfile(), profile.NewContacts(contacts...), rec, output.NopLogger{}, nil)

	srv := &fakeServer{t: t, conn: serverSide, lines: make(chan string, 1024)}
	go srv.read()
	t.Cleanup(func() {
		c.conn.Close()
		_ = serverSide.Close()
	})

	if err := c.Attach(context.Background(), clientSide); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	srv.expect("NICK ectoBiologist")
	srv.expect("USER pcc31 0 * :pcc31")
	return c, srv, rec
}

// feed dispatches raw lines as if they had been read from the socket
func feed(t *testing.T, c *Client, lines ...string) {
	t.Helper()
	for _, line := range lines {
		msg, err := ParseLine(line)
		if err != nil {
			t.Fatalf("ParseLine(%q): %v", line, err)
		}
		_ = c.dispatch.Dispatch(msg)
	}
}

// eventsOf returns the recorded events of type T in order
func eventsOf[T events.Event](rec *events.Recorder) []T {
	var out []T
	for _, e := range rec.Events() {
		if v, ok := e.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

// netPipe returns a pipe whose server side discards everything written to it
func netPipe(t *testing.T) (net.Conn, net.Conn) {
	t.Helper()
	clientSide, serverSide := net.Pipe()
	go func() {
		buf := make([]byte, 512)
		for {
			if _, err := serverSide.Read(buf); err != nil {
				return
			}
		}
	}()
	t.Cleanup(func() { _ = clientSide.Close() })
	return clientSide, serverSide
}
