package main

import (
	"strings"
	"sync"

	"github.com/yourusername/pesterlink/internal/events"
	"github.com/yourusername/pesterlink/internal/output"
)

// eventPrinter renders engine events on the terminal
type eventPrinter struct {
	logger output.Logger

	mu     sync.Mutex
	handle string
}

func newEventPrinter(logger output.Logger, handle string) *eventPrinter {
	return &eventPrinter{logger: logger, handle: handle}
}

func (p *eventPrinter) print(e events.Event) {
	l := p.logger
	switch ev := e.(type) {
	case events.Connected:
		l.Success("Connected (session %s)", ev.SessionID)
	case events.MessageReceived:
		l.PrivateMessage(ev.Handle, ev.Text)
	case events.MemoReceived:
		l.ChannelMessage(ev.Channel, ev.Handle, ev.Text)
	case events.NoticeReceived:
		l.Info("-%s- %s", ev.Handle, ev.Text)
	case events.MoodUpdated:
		l.Debug("%s is now %s", ev.Handle, ev.Mood.Name())
	case events.ColorUpdated:
		l.Debug("%s uses color %s", ev.Handle, ev.Color.Hex())
	case events.InviteReceived:
		l.Info("%s invited you to %s (/join %s)", ev.Handle, ev.Channel, ev.Channel)
	case events.PresenceUpdate:
		p.presence(ev)
	case events.NamesReceived:
		l.Info("%s: %s", ev.Channel, strings.Join(ev.Names, " "))
	case events.ChannelListReceived:
		if len(ev.Channels) == 0 {
			l.Info("No open memos")
			return
		}
		for _, c := range ev.Channels {
			l.Info("%s (%s)", c.Name, c.Users)
		}
	case events.ModesUpdated:
		l.Info("%s modes: %s", ev.Channel, ev.Modes)
	case events.OwnModesUpdated:
		l.Debug("Your modes: %s", ev.Modes)
	case events.NickCollision:
		l.Warning("Handle %s is taken, using %s", ev.Old, ev.New)
	case events.HandleChanged:
		p.mu.Lock()
		p.handle = ev.Handle
		p.mu.Unlock()
		l.Info("You are now %s", ev.Handle)
	case events.SvsNick:
		l.Warning("The server renamed you from %s to %s", ev.Old, ev.New)
	case events.TimeCommand:
		l.Debug("%s %s in %s", ev.Handle, ev.Command, ev.Channel)
	case events.QuirkDisable:
		l.Warning("%s asked you to turn off quirks in %s", ev.Op, ev.Channel)
	case events.CannotSendToChannel:
		l.Warning("Cannot send to %s: %s", ev.Channel, ev.Reason)
	case events.ForbiddenChannel:
		l.Warning("%s is forbidden: %s", ev.Channel, ev.Reason)
	case events.ChannelInviteOnly:
		l.Warning("%s is invite-only", ev.Channel)
	}
}

func (p *eventPrinter) presence(ev events.PresenceUpdate) {
	switch {
	case ev.Kind == "join" && ev.Channel != "":
		p.logger.Info("%s joined %s", ev.Handle, ev.Channel)
	case ev.Kind == "left" && ev.Channel != "":
		p.logger.Info("%s left %s", ev.Handle, ev.Channel)
	case ev.Kind == "nick":
		old, updated, _ := strings.Cut(ev.Handle, ":")
		p.logger.Info("%s is now known as %s", old, updated)
	case strings.HasPrefix(ev.Kind, "kick:"):
		parts := strings.SplitN(ev.Kind, ":", 3)
		if ev.Handle == p.current() {
			p.logger.Warning("You were kicked from %s by %s", ev.Channel, parts[1])
			return
		}
		p.logger.Info("%s was kicked from %s by %s", ev.Handle, ev.Channel, parts[1])
	default:
		p.logger.Debug("%s %s %s", ev.Handle, ev.Kind, ev.Channel)
	}
}

func (p *eventPrinter) current() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.handle
}
