package irc

import (
	"reflect"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/yourusername/pesterlink/internal/events"
)

func TestModeSet(t *testing.T) {
	s := NewModeSet(defaultChannelModes)
	for _, c := range []byte("tnmt") {
		s.Add(c)
	}
	if s.String() != "+mnt" {
		t.Errorf("String() = %q, want sorted and unique", s.String())
	}
	if s.Remove('z') {
		t.Error("removed a mode that wasn't set")
	}
	if !s.Remove('n') || s.String() != "+mt" {
		t.Errorf("after remove: %q", s.String())
	}
	s.Set("+iw-x")
	if s.String() != "+iwx" {
		t.Errorf("Set: %q", s.String())
	}
}

func TestModeSet_AddRemoveRestores(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)
	letters := []interface{}{"c", "C", "i", "k", "l", "m", "n", "s", "t", "z"}

	properties.Property("+m then -m restores the prior set", prop.ForAll(
		func(initial []string, m string) bool {
			s := NewModeSet(defaultChannelModes)
			for _, c := range initial {
				s.Add(c[0])
			}
			if strings.Contains(s.String(), m) {
				return true
			}
			before := s.String()
			s.Add(m[0])
			s.Remove(m[0])
			return s.String() == before
		},
		gen.SliceOf(gen.OneConstOf(letters...)),
		gen.OneConstOf(letters...),
	))

	properties.TestingRun(t)
}

func TestMode(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []events.Event
	}{
		{
			name: "channel mode added",
			line: ":op!u@h MODE #sburb +m",
			want: []events.Event{
				events.PresenceUpdate{Channel: "#sburb", Kind: "+m:op"},
				events.OwnModesUpdated{Modes: "+m"},
			},
		},
		{
			name: "running sign over mixed modes",
			line: ":op!u@h MODE #sburb +s-m+ov alice bob",
			want: []events.Event{
				events.PresenceUpdate{Channel: "#sburb", Kind: "+s:op"},
				events.PresenceUpdate{Channel: "#sburb", Kind: "-m:op"},
				events.PresenceUpdate{Handle: "alice", Channel: "#sburb", Kind: "+o:op"},
				events.PresenceUpdate{Handle: "bob", Channel: "#sburb", Kind: "+v:op"},
				events.OwnModesUpdated{Modes: "+s"},
			},
		},
		{
			name: "server flags without targets are suppressed",
			line: ":ectoBiologist MODE ectoBiologist +wx",
			want: []events.Event{
				events.PresenceUpdate{Channel: "ectoBiologist", Kind: "+w:ectoBiologist"},
			},
		},
		{
			name: "missing target is skipped",
			line: ":op!u@h MODE #sburb -ov alice",
			want: []events.Event{
				events.PresenceUpdate{Handle: "alice", Channel: "#sburb", Kind: "-o:op"},
			},
		},
		{
			name: "removing an unset mode is ignored",
			line: ":op!u@h MODE #sburb -t",
			want: []events.Event{
				events.PresenceUpdate{Channel: "#sburb", Kind: "-t:op"},
				events.OwnModesUpdated{Modes: "+"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _, rec := newTestClient(t, testOptions)
			feed(t, c, tt.line)
			if got := rec.Events(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("events =\n%+v\nwant\n%+v", got, tt.want)
			}
		})
	}
}

func TestMode_PlusThenMinusRestores(t *testing.T) {
	c, _, rec := newTestClient(t, testOptions)
	feed(t, c, ":op!u@h MODE #sburb +nt")
	before := eventsOf[events.OwnModesUpdated](rec)

	feed(t, c, ":op!u@h MODE #sburb +m", ":op!u@h MODE #sburb -m")
	after := eventsOf[events.OwnModesUpdated](rec)
	if after[len(after)-1] != before[len(before)-1] {
		t.Errorf("modes = %q, want %q", after[len(after)-1].Modes, before[len(before)-1].Modes)
	}
}
