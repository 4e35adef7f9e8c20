package irc

import (
	"strings"
	"sync"
	"time"

	"github.com/yourusername/pesterlink/internal/output"
)

// NetsplitDetector tells netsplit quits apart from ordinary ones and notices
// when split users come back.
//
// A netsplit QUIT reason names the two servers that lost each other, e.g.
// "irc.example.net hub.example.net", so the network's base domain appears
// exactly twice.
type NetsplitDetector struct {
	mu           sync.Mutex
	logger       output.Logger
	baseServer   string
	rejoinWindow time.Duration
	splitQuits   map[string]time.Time // nick -> quit time
	now          func() time.Time
}

// NewNetsplitDetector creates a detector for the network behind serverHost
func NewNetsplitDetector(serverHost string, logger output.Logger) *NetsplitDetector {
	return &NetsplitDetector{
		logger:       logger,
		baseServer:   BaseServer(serverHost),
		rejoinWindow: 10 * time.Minute,
		splitQuits:   make(map[string]time.Time),
		now:          time.Now,
	}
}

// BaseServer returns host from its second-to-last dot ("irc.pesterchum.xyz"
// -> ".pesterchum.xyz"). Hosts with fewer than two dots are returned whole.
func BaseServer(host string) string {
	last := strings.LastIndex(host, ".")
	if last <= 0 {
		return host
	}
	cut := strings.LastIndex(host[:last], ".")
	if cut < 0 {
		return host
	}
	return host[cut:]
}

// Classify returns "netsplit" or "quit" for a QUIT reason
func (nd *NetsplitDetector) Classify(reason string) string {
	if nd.baseServer != "" && strings.Count(reason, nd.baseServer) == 2 {
		return "netsplit"
	}
	return "quit"
}

// OnQuit classifies a quit and remembers netsplit victims
func (nd *NetsplitDetector) OnQuit(nick, reason string) string {
	kind := nd.Classify(reason)
	if kind != "netsplit" {
		return kind
	}

	nd.mu.Lock()
	defer nd.mu.Unlock()
	nd.prune()
	nd.splitQuits[nick] = nd.now()
	if len(nd.splitQuits) == 1 {
		nd.logger.Warning("Netsplit detected: %s", reason)
	}
	return kind
}

// OnJoin reports whether nick is coming back from a netsplit
func (nd *NetsplitDetector) OnJoin(nick string) bool {
	nd.mu.Lock()
	defer nd.mu.Unlock()
	nd.prune()

	if _, ok := nd.splitQuits[nick]; !ok {
		return false
	}
	delete(nd.splitQuits, nick)
	nd.logger.Info("%s rejoined after netsplit", nick)
	if len(nd.splitQuits) == 0 {
		nd.logger.Info("Netsplit recovered")
	}
	return true
}

// Pending returns how many split users haven't rejoined yet
func (nd *NetsplitDetector) Pending() int {
	nd.mu.Lock()
	defer nd.mu.Unlock()
	nd.prune()
	return len(nd.splitQuits)
}

// prune forgets quits older than the rejoin window. Caller holds mu.
func (nd *NetsplitDetector) prune() {
	cutoff := nd.now().Add(-nd.rejoinWindow)
	for nick, at := range nd.splitQuits {
		if at.Before(cutoff) {
			delete(nd.splitQuits, nick)
		}
	}
}
