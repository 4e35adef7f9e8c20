package irc

import (
	"testing"
	"time"

	"github.com/yourusername/pesterlink/internal/output"
)

func TestBaseServer(t *testing.T) {
	tests := map[string]string{
		"irc.pesterchum.xyz":    ".pesterchum.xyz",
		"a.b.example.net":       ".example.net",
		"pesterchum.xyz":        "pesterchum.xyz",
		"localhost":             "localhost",
		"irc.pesterchum.xyz.uk": ".xyz.uk",
	}
	for host, want := range tests {
		if got := BaseServer(host); got != want {
			t.Errorf("BaseServer(%q) = %q, want %q", host, got, want)
		}
	}
}

func TestClassify(t *testing.T) {
	nd := NewNetsplitDetector("irc.example.net", output.NopLogger{})

	tests := []struct {
		reason string
		want   string
	}{
		{"serverA.example.net serverB.example.net", "netsplit"},
		{"serverA.example.net", "quit"},
		{"Quit: bye", "quit"},
		{"a.example.net b.example.net c.example.net", "quit"},
	}
	for _, tt := range tests {
		if got := nd.Classify(tt.reason); got != tt.want {
			t.Errorf("Classify(%q) = %q, want %q", tt.reason, got, tt.want)
		}
	}
}

func TestNetsplitRejoinWindow(t *testing.T) {
	nd := NewNetsplitDetector("irc.example.net", output.NopLogger{})
	now := time.Date(2024, 4, 13, 12, 0, 0, 0, time.UTC)
	nd.now = func() time.Time { return now }

	nd.OnQuit("gardenGnostic", "a.example.net b.example.net")
	nd.OnQuit("tentacleTherapist", "a.example.net b.example.net")
	nd.OnQuit("turntechGodhead", "Ping timeout")
	if nd.Pending() != 2 {
		t.Fatalf("pending = %d, want 2", nd.Pending())
	}

	if !nd.OnJoin("gardenGnostic") {
		t.Error("split user rejoining not recognised")
	}
	if nd.OnJoin("turntechGodhead") {
		t.Error("ordinary quit treated as split")
	}

	now = now.Add(time.Hour)
	if nd.OnJoin("tentacleTherapist") {
		t.Error("rejoin outside the window still matched")
	}
	if nd.Pending() != 0 {
		t.Errorf("pending = %d after the window", nd.Pending())
	}
}
