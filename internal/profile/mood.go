package profile

import (
	"fmt"
	"strconv"
	"strings"
)

// Mood is a chum's presence state, sent on the wire as its index
type Mood int

// Moods with special protocol meaning
const (
	Chummy  Mood = 0
	Offline Mood = 2
)

var moodNames = []string{
	"chummy", "rancorous", "offline", "pleasant", "distraught",
	"pranky", "smooth", "ecstatic", "relaxed", "discontent",
	"devious", "sleek", "detestful", "mirthful", "manipulative",
	"vigorous", "perky", "acceptant", "protective", "mystified",
	"amazed", "insolent", "bemused",
}

// Valid reports whether m names a known mood
func (m Mood) Valid() bool {
	return m >= 0 && int(m) < len(moodNames)
}

// Name returns the mood's lower-case name
func (m Mood) Name() string {
	if !m.Valid() {
		return "chummy"
	}
	return moodNames[m]
}

func (m Mood) String() string {
	return m.Name()
}

// Value is the wire form of the mood
func (m Mood) Value() string {
	return strconv.Itoa(int(m))
}

// ParseMood decodes a mood index as sent by other clients
func ParseMood(s string) (Mood, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return Chummy, fmt.Errorf("invalid mood value %q: %w", s, err)
	}
	m := Mood(n)
	if !m.Valid() {
		return Chummy, fmt.Errorf("mood value %d out of range", n)
	}
	return m, nil
}

// MoodByName looks up a mood by its name, case-insensitively
func MoodByName(name string) (Mood, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range moodNames {
		if n == name {
			return Mood(i), nil
		}
	}
	return Chummy, fmt.Errorf("unknown mood %q", name)
}

// MoodNames returns every mood name in index order
func MoodNames() []string {
	out := make([]string, len(moodNames))
	copy(out, moodNames)
	return out
}
