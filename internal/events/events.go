// Package events defines what the protocol engine tells the rest of the
// application, and the bus that delivers it.
package events

import (
	"github.com/yourusername/pesterlink/internal/profile"
)

// Event is implemented by every notification the engine emits
type Event interface {
	EventName() string
}

// MoodUpdated reports a chum's mood
type MoodUpdated struct {
	Handle string
	Mood   profile.Mood
}

// ColorUpdated reports a chum's text color
type ColorUpdated struct {
	Handle string
	Color  profile.Color
}

// MessageReceived is a private message addressed to us
type MessageReceived struct {
	Handle string
	Text   string
}

// MemoReceived is a message in a memo (channel)
type MemoReceived struct {
	Channel string
	Handle  string
	Text    string
}

// NoticeReceived is a NOTICE that isn't routed elsewhere
type NoticeReceived struct {
	Handle string
	Text   string
}

// InviteReceived is an invitation to a memo
type InviteReceived struct {
	Handle  string
	Channel string
}

// PresenceUpdate reports a join, part, quit, kick, nick change or mode change.
// Kind is one of join, left, quit, netsplit, nick, kick:<op>:<reason> or ±<mode>:<op>.
type PresenceUpdate struct {
	Handle  string
	Channel string
	Kind    string
}

// NamesReceived carries the complete member list of a channel
type NamesReceived struct {
	Channel string
	Names   []string
}

// ChannelEntry is one row of a channel listing
type ChannelEntry struct {
	Name  string
	Users string
}

// ChannelListReceived carries the result of a LIST request
type ChannelListReceived struct {
	Channels []ChannelEntry
}

// ModesUpdated carries a channel's current modes
type ModesUpdated struct {
	Channel string
	Modes   string
}

// OwnModesUpdated is a snapshot of our own mode set after it changed
type OwnModesUpdated struct {
	Modes string
}

// NickCollision reports that our handle was taken and what we switched to
type NickCollision struct {
	Old string
	New string
}

// HandleChanged reports our new handle
type HandleChanged struct {
	Handle string
}

// SvsNick reports that the server changed our handle
type SvsNick struct {
	Old string
	New string
}

// Connected is emitted once registration completes
type Connected struct {
	SessionID string
}

// ConnectionBroken is the terminal event of a connection
type ConnectionBroken struct {
	SessionID string
	Reason    string
	Err       error
}

// CertificateError reports a TLS verification failure. The caller may retry
// with hostname verification disabled.
type CertificateError struct {
	Host string
	Err  error
}

// TimeCommand is a memo time-travel marker
type TimeCommand struct {
	Channel string
	Handle  string
	Command string
}

// QuirkDisable asks the application to turn off a chum's quirks in a memo
type QuirkDisable struct {
	Channel string
	Reason  string
	Op      string
}

// CannotSendToChannel reports ERR_CANNOTSENDTOCHAN
type CannotSendToChannel struct {
	Channel string
	Reason  string
}

// ForbiddenChannel reports that a channel may not be joined
type ForbiddenChannel struct {
	Channel string
	Reason  string
}

// ChannelInviteOnly reports that a channel requires an invite
type ChannelInviteOnly struct {
	Channel string
}

func (MoodUpdated) EventName() string         { return "mood-updated" }
func (ColorUpdated) EventName() string        { return "color-updated" }
func (MessageReceived) EventName() string     { return "message-received" }
func (MemoReceived) EventName() string        { return "memo-received" }
func (NoticeReceived) EventName() string      { return "notice-received" }
func (InviteReceived) EventName() string      { return "invite-received" }
func (PresenceUpdate) EventName() string      { return "presence-update" }
func (NamesReceived) EventName() string       { return "names-received" }
func (ChannelListReceived) EventName() string { return "channel-list-received" }
func (ModesUpdated) EventName() string        { return "modes-updated" }
func (OwnModesUpdated) EventName() string     { return "own-modes-updated" }
func (NickCollision) EventName() string       { return "nick-collision" }
func (HandleChanged) EventName() string       { return "handle-changed" }
func (SvsNick) EventName() string             { return "svsnick" }
func (Connected) EventName() string           { return "connected" }
func (ConnectionBroken) EventName() string    { return "connection-broken" }
func (CertificateError) EventName() string    { return "certificate-error" }
func (TimeCommand) EventName() string         { return "time-command" }
func (QuirkDisable) EventName() string        { return "quirk-disable" }
func (CannotSendToChannel) EventName() string { return "cannot-send-to-channel" }
func (ForbiddenChannel) EventName() string    { return "forbidden-channel" }
func (ChannelInviteOnly) EventName() string   { return "channel-invite-only" }
