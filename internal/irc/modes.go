package irc

import (
	"sort"
	"strings"
	"sync"

	"github.com/yourusername/pesterlink/internal/events"
)

// ModeSet tracks the channel modes seen on our own connection. Letters are
// kept sorted and unique.
type ModeSet struct {
	mu       sync.Mutex
	alphabet string
	letters  []byte
}

// NewModeSet creates an empty set that recognises the letters in alphabet
func NewModeSet(alphabet string) *ModeSet {
	return &ModeSet{alphabet: alphabet}
}

// IsChannelMode reports whether c is one of the known channel modes
func (s *ModeSet) IsChannelMode(c byte) bool {
	return strings.IndexByte(s.alphabet, c) >= 0
}

// Add inserts c and reports whether it was new
func (s *ModeSet) Add(c byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := sort.Search(len(s.letters), func(i int) bool { return s.letters[i] >= c })
	if i < len(s.letters) && s.letters[i] == c {
		return false
	}
	s.letters = append(s.letters, 0)
	copy(s.letters[i+1:], s.letters[i:])
	s.letters[i] = c
	return true
}

// Remove deletes c and reports whether it was present
func (s *ModeSet) Remove(c byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := sort.Search(len(s.letters), func(i int) bool { return s.letters[i] >= c })
	if i == len(s.letters) || s.letters[i] != c {
		return false
	}
	s.letters = append(s.letters[:i], s.letters[i+1:]...)
	return true
}

// Set replaces the contents with the letters of a mode string like "+iwx"
func (s *ModeSet) Set(modes string) {
	s.mu.Lock()
	s.letters = s.letters[:0]
	s.mu.Unlock()
	for i := 0; i < len(modes); i++ {
		if c := modes[i]; c != '+' && c != '-' {
			s.Add(c)
		}
	}
}

// String returns "+" followed by the sorted letters
func (s *ModeSet) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return "+" + string(s.letters)
}

// serverFlags are user modes the server sets on itself; they carry no
// information when no target is named.
const serverFlags = "xzo"

// MODE <target> <modes> [targets...]
//
// The sign is a running state: "+ab-c" adds a and b and removes c. Channel
// mode letters update the local set; anything else is a user mode applied
// to the i'th target.
func (h *Handlers) onMode(m *Message) error {
	channel, modes := m.Args[0], m.Args[1]
	targets := m.Args[2:]
	op := m.Nick()

	sign := byte('+')
	var userModes []byte
	var userSigns []byte
	channelChanged := false

	for i := 0; i < len(modes); i++ {
		c := modes[i]
		switch {
		case c == '+' || c == '-':
			sign = c
		case h.modes.IsChannelMode(c):
			if sign == '+' {
				h.modes.Add(c)
			} else if !h.modes.Remove(c) {
				h.logger.Warning("Can't remove channel mode %c that isn't set", c)
			}
			channelChanged = true
			h.emit.Emit(events.PresenceUpdate{Channel: channel, Kind: string([]byte{sign, c}) + ":" + op})
		default:
			userModes = append(userModes, c)
			userSigns = append(userSigns, sign)
		}
	}

	for i, c := range userModes {
		kind := string([]byte{userSigns[i], c}) + ":" + op
		if len(targets) == 0 {
			if strings.IndexByte(serverFlags, c) < 0 {
				h.emit.Emit(events.PresenceUpdate{Channel: channel, Kind: kind})
			}
			continue
		}
		if i >= len(targets) {
			h.logger.Warning("MODE %s %s: no target for %c", channel, modes, c)
			continue
		}
		h.emit.Emit(events.PresenceUpdate{Handle: targets[i], Channel: channel, Kind: kind})
	}

	if channelChanged {
		h.emit.Emit(events.OwnModesUpdated{Modes: h.modes.String()})
	}
	return nil
}
