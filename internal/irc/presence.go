package irc

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/yourusername/pesterlink/internal/events"
	"github.com/yourusername/pesterlink/internal/profile"
)

const (
	// legacyBatchLimit caps a GETMOOD line sent to the presence channel
	legacyBatchLimit = 350

	getMoodPrefix = "GETMOOD "
	moodPrefix    = "MOOD >"
	colorPrefix   = "COLOR >"
	timePrefix    = "PESTERCHUM:TIME>"
	tagPrefix     = "+pesterchum"
)

// Tag values that stand in for a PESTERCHUM: control message
var pesterchumTagValues = map[string]bool{
	"BEGIN":   true,
	"BLOCK":   true,
	"CEASE":   true,
	"BLOCKED": true,
	"UNBLOCK": true,
	"IDLE":    true,
	"ME":      true,
}

// GetMood asks for the moods of handles. Services are never asked.
//
// With metadata each handle gets its own METADATA GET. Otherwise the
// handles are glued onto GETMOOD lines in the presence channel; other
// clients search the line for their own handle, so no separator is needed.
func (h *Handlers) GetMood(handles ...string) {
	if h.metadataSupported.Load() {
		for _, handle := range handles {
			if profile.IsService(handle) {
				continue
			}
			if err := h.send.Metadata(handle, "get", "mood"); err != nil {
				h.logger.Warning("Failed to request mood of %s: %v", handle, err)
				return
			}
		}
		return
	}

	h.logger.Warning("Server doesn't seem to support metadata, using legacy GETMOOD.")
	batch := getMoodPrefix
	for _, handle := range handles {
		if utf8.RuneCountInString(batch+handle) >= legacyBatchLimit {
			if err := h.send.Privmsg(h.opts.PresenceChannel, batch); err != nil {
				h.logger.Warning("Failed to send GETMOOD: %v", err)
				return
			}
			batch = getMoodPrefix
		}
		if !profile.IsService(handle) {
			batch += handle
		}
	}
	if batch != getMoodPrefix {
		if err := h.send.Privmsg(h.opts.PresenceChannel, batch); err != nil {
			h.logger.Warning("Failed to send GETMOOD: %v", err)
		}
	}
}

// MetadataSupported reports whether the server advertised METADATA
func (h *Handlers) MetadataSupported() bool {
	return h.metadataSupported.Load()
}

// 761 RPL_KEYVALUE: <us> <owner> <key> <visibility> <value>
func (h *Handlers) onKeyValue(m *Message) error {
	owner, key, value := m.Args[1], m.Args[2], m.Args[4]
	h.applyMetadata(owner, key, value)
	return nil
}

// METADATA <target> <key> <visibility> <value>
func (h *Handlers) onMetadata(m *Message) error {
	h.applyMetadata(m.Args[0], m.Args[1], m.Args[3])
	return nil
}

func (h *Handlers) applyMetadata(handle, key, value string) {
	switch strings.ToLower(key) {
	case "mood":
		mood, err := profile.ParseMood(value)
		if err != nil {
			h.logger.Warning("Invalid mood value %q from %s", value, handle)
			return
		}
		h.emit.Emit(events.MoodUpdated{Handle: handle, Mood: mood})
	case "color":
		c, err := profile.ParseHex(value)
		if err != nil {
			c = profile.Black
		}
		h.emit.Emit(events.ColorUpdated{Handle: handle, Color: c})
	}
}

// 766 ERR_NOMATCHINGKEY, 768 ERR_KEYNOTSET and 769 ERR_KEYNOPERMISSION.
// The handle didn't publish a mood, so ask the old way.
func (h *Handlers) onMetadataFailure(m *Message) error {
	failed := m.Args[1]
	h.logger.Info("Metadata lookup failed for %s", failed)
	if profile.IsService(failed) {
		return nil
	}
	return h.send.Privmsg(h.opts.PresenceChannel, getMoodPrefix+failed)
}

// 770 RPL_METADATASUBOK
func (h *Handlers) onMetadataSubOK(m *Message) error {
	h.logger.Info("Metadata subscription ok: %v", m.Args)
	return nil
}

// TAGMSG carries Pesterchum control messages as +pesterchum tags. Each one
// is handled as if it had arrived as the equivalent PRIVMSG.
func (h *Handlers) onTagmsg(m *Message) error {
	tags := m.TagMap()
	h.logger.Debug("TAGMSG %s %v %v", m.Prefix, tags, m.Args)

	keys := make([]string, 0, len(tags))
	for k := range tags {
		if strings.HasPrefix(k, tagPrefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	for _, k := range keys {
		value := tags[k]
		var text string
		switch {
		case pesterchumTagValues[value]:
			text = "PESTERCHUM:" + value
		case strings.HasPrefix(value, "COLOR>"):
			text = strings.ReplaceAll(value, ">", " >")
		case strings.HasPrefix(value, "TIME>"):
			text = "PESTERCHUM:" + value
		default:
			h.logger.Warning("Invalid pesterchum tag value %s=%s", k, value)
			continue
		}
		err := h.onPrivmsg(&Message{Prefix: m.Prefix, Command: "privmsg", Args: []string{m.Args[0], text}})
		if err != nil {
			return err
		}
	}
	return nil
}

// PRIVMSG routes by target: the presence channel carries moods, other
// channels are memos, and anything else is a private pester.
func (h *Handlers) onPrivmsg(m *Message) error {
	handle, target, text := m.Nick(), m.Args[0], m.Args[1]
	if text == "" {
		return nil
	}

	if strings.HasPrefix(text, "\x01ACTION ") {
		text = "/me" + strings.TrimSuffix(text[len("\x01ACTION"):], "\x01")
	} else if h.ctcp.HandleCTCP(handle, target, text) {
		return nil
	}

	switch {
	case target == h.opts.PresenceChannel:
		return h.onPresenceMessage(handle, text)
	case strings.HasPrefix(target, "#"):
		if rest, ok := strings.CutPrefix(text, timePrefix); ok {
			h.emit.Emit(events.TimeCommand{Channel: target, Handle: handle, Command: rest})
			return nil
		}
		h.logger.ChannelMessage(target, handle, text)
		h.emit.Emit(events.MemoReceived{Channel: target, Handle: handle, Text: text})
	default:
		if handle == h.self.get().Handle {
			return nil
		}
		h.logger.PrivateMessage(handle, text)
		if rest, ok := strings.CutPrefix(text, colorPrefix); ok {
			h.emit.Emit(events.ColorUpdated{Handle: handle, Color: h.parseColor(rest)})
			return nil
		}
		h.emit.Emit(events.MessageReceived{Handle: handle, Text: text})
	}
	return nil
}

func (h *Handlers) onPresenceMessage(handle, text string) error {
	me := h.self.get()
	switch {
	case strings.HasPrefix(text, moodPrefix):
		if handle == me.Handle {
			return nil
		}
		// Anything unreadable counts as chummy
		mood, _ := profile.ParseMood(text[len(moodPrefix):])
		h.emit.Emit(events.MoodUpdated{Handle: handle, Mood: mood})
	case strings.HasPrefix(text, "GETMOOD"):
		if len(text) > len(getMoodPrefix) && strings.Contains(text[len(getMoodPrefix):], me.Handle) {
			return h.send.Privmsg(h.opts.PresenceChannel, moodPrefix+me.Mood.Value())
		}
	}
	return nil
}

// parseColor reads "r,g,b". Garbage becomes black.
func (h *Handlers) parseColor(s string) profile.Color {
	c, err := profile.ParseRGB(s)
	if err != nil {
		h.logger.Warning("Invalid color %q: %v", s, err)
		return profile.Black
	}
	return c
}
