package irc

import (
	"context"
	"encoding/pem"
	"io"
	"log"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	ircerrors "github.com/yourusername/pesterlink/internal/errors"
	"github.com/yourusername/pesterlink/internal/events"
	"github.com/yourusername/pesterlink/internal/output"
	"github.com/yourusername/pesterlink/internal/profile"
)

// newTLSServer starts a TLS listener with a self-signed certificate valid
// for 127.0.0.1 and example.com. It returns the listener's port and a PEM
// file holding the certificate.
func newTLSServer(t *testing.T) (int, string) {
	t.Helper()
	srv := httptest.NewUnstartedServer(http.NotFoundHandler())
	srv.Config.ErrorLog = log.New(io.Discard, "", 0)
	srv.StartTLS()
	t.Cleanup(srv.Close)

	caFile := filepath.Join(t.TempDir(), "server.pem")
	block := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: srv.Certificate().Raw})
	if err := os.WriteFile(caFile, block, 0o600); err != nil {
		t.Fatalf("write ca file: %v", err)
	}
	return srv.Listener.Addr().(*net.TCPAddr).Port, caFile
}

func TestConnectUntrustedCertificate(t *testing.T) {
	port, _ := newTLSServer(t)
	rec := &events.Recorder{}
	server := ServerOptions{Host: "127.0.0.1", Port: port, TLS: true, VerifyHostname: true, ReadTimeout: time.Second}
	c := NewClient(server, testOptions, testProfile(), profile.NewContacts(), rec, output.NopLogger{}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := c.Connect(ctx)
	if !ircerrors.IsCertificate(err) {
		t.Fatalf("Connect() error = %v, want a certificate error", err)
	}
	if got := c.State(); got != StateClosed {
		t.Errorf("State() = %v, want closed", got)
	}

	certErrs := eventsOf[events.CertificateError](rec)
	if len(certErrs) != 1 {
		t.Fatalf("got %d CertificateError events, want 1", len(certErrs))
	}
	if certErrs[0].Host != "127.0.0.1" || certErrs[0].Err == nil {
		t.Errorf("CertificateError = %+v", certErrs[0])
	}
	if broken := eventsOf[events.ConnectionBroken](rec); len(broken) != 0 {
		t.Errorf("unexpected ConnectionBroken events: %+v", broken)
	}
}

func TestConnectTrustedCAFile(t *testing.T) {
	port, caFile := newTLSServer(t)
	c := NewConnection(ServerOptions{Host: "127.0.0.1", Port: port, TLS: true, VerifyHostname: true, CAFile: caFile},
		output.NopLogger{}, NewSender(output.NopLogger{}, nil), func(*Message) {})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.Connect(ctx); err != nil {
		t.Fatalf("Connect() = %v", err)
	}
	c.Close()
}

func TestHandshakeHostnameVerification(t *testing.T) {
	port, caFile := newTLSServer(t)

	tests := []struct {
		name           string
		caFile         string
		verifyHostname bool
		wantCertErr    bool
	}{
		{"hostname mismatch is rejected", caFile, true, true},
		{"hostname check skipped with trusted chain", caFile, false, false},
		{"chain still verified without hostname check", "", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := net.Dial("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(port)))
			if err != nil {
				t.Fatalf("dial: %v", err)
			}
			defer raw.Close()

			c := NewConnection(ServerOptions{Host: "irc.pesterchum.invalid", Port: port, TLS: true,
				VerifyHostname: tt.verifyHostname, CAFile: tt.caFile},
				output.NopLogger{}, NewSender(output.NopLogger{}, nil), func(*Message) {})

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			conn, err := c.handshake(ctx, raw)
			if tt.wantCertErr {
				if !ircerrors.IsCertificate(err) {
					t.Fatalf("handshake() error = %v, want a certificate error", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("handshake() = %v", err)
			}
			_ = conn.Close()
		})
	}
}
