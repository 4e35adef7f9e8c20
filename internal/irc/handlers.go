package irc

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/yourusername/pesterlink/internal/events"
	"github.com/yourusername/pesterlink/internal/output"
	"github.com/yourusername/pesterlink/internal/profile"
)

// Options holds the protocol settings that vary between networks
type Options struct {
	PresenceChannel string // shared channel carrying legacy mood traffic
	ChannelModes    string // channel mode letters understood by the server
	Version         string // CTCP VERSION reply and QUIT message
	SourceURL       string // CTCP SOURCE reply
	LowBandwidth    bool   // skip capability negotiation and presence sync on connect
	ServerHost      string // used to recognise netsplit quit messages
}

const (
	defaultPresenceChannel = "#pesterchum"
	defaultChannelModes    = "cCdfGHikKLlmMNnOPpQRrsSTtVzZ"
	collisionPrefix        = "pesterClient"
)

func (o Options) withDefaults() Options {
	if o.PresenceChannel == "" {
		o.PresenceChannel = defaultPresenceChannel
	}
	if o.ChannelModes == "" {
		o.ChannelModes = defaultChannelModes
	}
	return o
}

// ContactList tells the engine which handles the user cares about
type ContactList interface {
	IsContact(handle string) bool
	Handles() []string
}

// identity is the local profile, shared between the read loop and callers
type identity struct {
	mu sync.RWMutex
	p  profile.Profile
}

func (i *identity) get() profile.Profile {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.p
}

func (i *identity) set(p profile.Profile) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.p = p
}

func (i *identity) setHandle(handle string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.p.Handle = handle
}

// Handlers implements the protocol semantics. Its state is only touched by
// the read loop, except metadataSupported which callers read for GetMood.
type Handlers struct {
	opts     Options
	send     *Sender
	conn     *Connection
	emit     events.Emitter
	logger   output.Logger
	self     *identity
	contacts ContactList
	ctcp     *CTCPHandler
	netsplit *NetsplitDetector
	modes    *ModeSet

	metadataSupported atomic.Bool
	requestedNick     atomic.Value // string

	names          map[string][]string
	channelList    []events.ChannelEntry
	channelField   int
	joinedPresence bool
}

func newHandlers(opts Options, send *Sender, emit events.Emitter, logger output.Logger, self *identity, contacts ContactList) *Handlers {
	opts = opts.withDefaults()
	h := &Handlers{
		opts:     opts,
		send:     send,
		emit:     emit,
		logger:   logger,
		self:     self,
		contacts: contacts,
		netsplit: NewNetsplitDetector(opts.ServerHost, logger),
		modes:    NewModeSet(opts.ChannelModes),
		names:    make(map[string][]string),
	}
	h.ctcp = NewCTCPHandler(send, emit, logger, opts, self.get)
	h.requestedNick.Store("")
	return h
}

// reset forgets everything learned from the previous connection
func (h *Handlers) reset() {
	h.metadataSupported.Store(false)
	h.names = make(map[string][]string)
	h.channelList = nil
	h.channelField = 0
	h.joinedPresence = false
	h.modes.Set("")
}

// register wires every supported command into d
func (h *Handlers) register(d *Dispatcher) {
	d.Register(CmdWelcome, 0, h.onWelcome)
	d.Register(CmdISupport, 2, h.onISupport)
	d.Register(CmdUModeIs, 2, h.onUModeIs)
	d.Register(CmdListStart, 1, h.onListStart)
	d.Register(CmdList, 3, h.onList)
	d.Register(CmdListEnd, 0, h.onListEnd)
	d.Register(CmdChannelModeIs, 3, h.onChannelModeIs)
	d.Register(CmdNamReply, 4, h.onNamReply)
	d.Register(CmdEndOfNames, 2, h.onEndOfNames)
	d.Register(CmdCannotSendToChan, 2, h.onCannotSendToChan)
	d.Register(CmdErroneousNickname, 0, h.onErroneousNickname)
	d.Register(CmdNicknameInUse, 2, h.onNickCollision)
	d.Register(CmdNickCollision, 2, h.onNickCollision)
	d.Register(CmdForbiddenChannel, 2, h.onForbiddenChannel)
	d.Register(CmdInviteOnlyChan, 2, h.onInviteOnlyChan)
	d.Register(CmdKeyValue, 5, h.onKeyValue)
	d.Register(CmdNoMatchingKey, 2, h.onMetadataFailure)
	d.Register(CmdKeyNotSet, 2, h.onMetadataFailure)
	d.Register(CmdKeyNoPermission, 2, h.onMetadataFailure)
	d.Register(CmdMetadataSubOK, 0, h.onMetadataSubOK)
	d.Register(CmdError, 0, h.onError)
	d.Register(CmdJoin, 1, h.onJoin)
	d.Register(CmdKick, 2, h.onKick)
	d.Register(CmdMode, 2, h.onMode)
	d.Register(CmdPart, 1, h.onPart)
	d.Register(CmdPing, 1, h.onPing)
	d.Register(CmdPrivmsg, 2, h.onPrivmsg)
	d.Register(CmdNotice, 2, h.onNotice)
	d.Register(CmdQuit, 0, h.onQuit)
	d.Register(CmdInvite, 2, h.onInvite)
	d.Register(CmdNick, 1, h.onNick)
	d.Register(CmdMetadata, 4, h.onMetadata)
	d.Register(CmdTagmsg, 1, h.onTagmsg)
	d.Register(CmdCap, 0, h.onCap)
}

// disconnect says goodbye and closes the socket
func (h *Handlers) disconnect() {
	_ = h.send.Quit(h.opts.Version + " <3")
	h.conn.Close()
}

// changeNick asks for a new handle, remembering it so the server's
// confirmation isn't mistaken for a forced rename.
func (h *Handlers) changeNick(nick string) {
	h.requestedNick.Store(nick)
	_ = h.send.Nick(nick)
}

// 001 RPL_WELCOME
func (h *Handlers) onWelcome(m *Message) error {
	h.conn.SetRegistered()
	h.logger.Success("Registered with %s as %s", m.Prefix, m.Arg(0))
	h.emit.Emit(events.Connected{SessionID: h.conn.SessionID()})

	if h.opts.LowBandwidth {
		return nil
	}

	me := h.self.get()
	_ = h.send.Cap("REQ", "message-tags")
	_ = h.send.Cap("REQ", "draft/metadata-notify-2")
	_ = h.send.Cap("REQ", "pesterchum-tag")
	_ = h.send.Join(h.opts.PresenceChannel, "")
	_ = h.send.Metadata("*", "sub", "mood")
	_ = h.send.Metadata("*", "set", "mood", me.Mood.Value())
	_ = h.send.Metadata("*", "sub", "color")
	_ = h.send.Metadata("*", "set", "color", me.Color.Hex())
	_ = h.send.Privmsg(h.opts.PresenceChannel, "MOOD >"+me.Mood.Value())
	return nil
}

// 005 RPL_ISUPPORT. The last argument is the human-readable trailer.
func (h *Handlers) onISupport(m *Message) error {
	features := m.Args[1 : len(m.Args)-1]
	h.logger.Debug("Server featurelist: %v", features)
	for _, f := range features {
		if strings.HasPrefix(strings.ToUpper(f), "METADATA") {
			if !h.metadataSupported.Swap(true) {
				h.logger.Info("Server supports metadata")
			}
		}
	}
	return nil
}

// 221 RPL_UMODEIS
func (h *Handlers) onUModeIs(m *Message) error {
	h.modes.Set(m.Args[1])
	h.emit.Emit(events.OwnModesUpdated{Modes: h.modes.String()})
	return nil
}

// 321 RPL_LISTSTART
func (h *Handlers) onListStart(m *Message) error {
	h.channelList = nil
	h.channelField = 0
	info := m.Args[1:]
	for i, field := range info {
		if field == "Channel" {
			h.channelField = i
			return nil
		}
	}
	h.logger.Warning("LIST header has no Channel field: %v", info)
	return nil
}

// 322 RPL_LIST
func (h *Handlers) onList(m *Message) error {
	info := m.Args[1:]
	if h.channelField >= len(info) {
		return fmt.Errorf("channel field %d out of range in %v", h.channelField, info)
	}
	name := info[h.channelField]
	if name == h.opts.PresenceChannel {
		return nil
	}
	for _, e := range h.channelList {
		if e.Name == name {
			return nil
		}
	}
	h.channelList = append(h.channelList, events.ChannelEntry{Name: name, Users: info[1]})
	return nil
}

// 323 RPL_LISTEND
func (h *Handlers) onListEnd(*Message) error {
	list := h.channelList
	h.channelList = nil
	h.emit.Emit(events.ChannelListReceived{Channels: list})
	return nil
}

// 324 RPL_CHANNELMODEIS
func (h *Handlers) onChannelModeIs(m *Message) error {
	h.emit.Emit(events.ModesUpdated{Channel: m.Args[1], Modes: m.Args[2]})
	return nil
}

// 353 RPL_NAMREPLY
func (h *Handlers) onNamReply(m *Message) error {
	channel := m.Args[2]
	h.names[channel] = append(h.names[channel], strings.Fields(m.Args[3])...)
	return nil
}

// 366 RPL_ENDOFNAMES. Some servers change the channel's case here.
func (h *Handlers) onEndOfNames(m *Message) error {
	channel := m.Args[1]
	names, ok := h.names[channel]
	if !ok {
		for pending := range h.names {
			if strings.EqualFold(pending, channel) {
				channel = pending
				names = h.names[pending]
				break
			}
		}
	}
	delete(h.names, channel)
	if names == nil {
		names = []string{}
	}
	h.emit.Emit(events.NamesReceived{Channel: channel, Names: names})

	if channel == h.opts.PresenceChannel && !h.joinedPresence {
		h.joinedPresence = true
		present := make(map[string]bool, len(names))
		for _, n := range names {
			present[strings.TrimLeft(n, "~&@%+")] = true
		}
		var online []string
		for _, c := range h.contacts.Handles() {
			if present[c] {
				online = append(online, c)
			}
		}
		if len(online) > 0 {
			h.GetMood(online...)
		}
	}
	return nil
}

// 404 ERR_CANNOTSENDTOCHAN
func (h *Handlers) onCannotSendToChan(m *Message) error {
	h.emit.Emit(events.CannotSendToChannel{Channel: m.Args[1], Reason: m.Arg(2)})
	return nil
}

// 432 ERR_ERRONEUSNICKNAME. The server won't let us on with this handle.
func (h *Handlers) onErroneousNickname(m *Message) error {
	parts := append([]string{m.Prefix}, m.Args...)
	reason := "Handle is not allowed on this server.\n" + strings.Join(parts, " ")
	h.conn.SetStopReason(strings.TrimSpace(reason))
	h.disconnect()
	return nil
}

// 433 ERR_NICKNAMEINUSE and 436 ERR_NICKCOLLISION
func (h *Handlers) onNickCollision(m *Message) error {
	taken := m.Args[1]
	fallback := fmt.Sprintf("%s%d", collisionPrefix, 100+rand.Intn(900))
	h.logger.Warning("Handle %s is taken, switching to %s", taken, fallback)
	h.changeNick(fallback)
	h.self.setHandle(fallback)
	h.emit.Emit(events.NickCollision{Old: taken, New: fallback})
	return nil
}

// 448, a non-standard numeric for channels the server forbids
func (h *Handlers) onForbiddenChannel(m *Message) error {
	h.emit.Emit(events.ForbiddenChannel{Channel: m.Args[1], Reason: m.Arg(2)})
	h.emit.Emit(events.PresenceUpdate{Handle: m.Args[0], Channel: m.Args[1], Kind: "left"})
	return nil
}

// 473 ERR_INVITEONLYCHAN
func (h *Handlers) onInviteOnlyChan(m *Message) error {
	h.emit.Emit(events.ChannelInviteOnly{Channel: m.Args[1]})
	return nil
}

// ERROR: the server is terminating our connection
func (h *Handlers) onError(m *Message) error {
	parts := m.Args
	if m.Prefix != "" {
		parts = append([]string{m.Prefix}, parts...)
	}
	h.conn.SetStopReason(strings.TrimSpace(strings.Join(parts, " ")))
	h.disconnect()
	return nil
}

func (h *Handlers) onPing(m *Message) error {
	return h.send.Pong(m.Args[0])
}

func (h *Handlers) onCap(m *Message) error {
	h.logger.Info("CAP %s %v", m.Prefix, m.Args)
	return nil
}

func (h *Handlers) onJoin(m *Message) error {
	handle, channel := m.Nick(), m.Args[0]
	h.logger.Debug("%s joined %s", handle, channel)
	h.netsplit.OnJoin(handle)
	h.emit.Emit(events.PresenceUpdate{Handle: handle, Channel: channel, Kind: "join"})
	if channel == h.opts.PresenceChannel {
		h.emit.Emit(events.MoodUpdated{Handle: handle, Mood: profile.Chummy})
	}
	return nil
}

func (h *Handlers) onPart(m *Message) error {
	handle, channel := m.Nick(), m.Args[0]
	h.logger.Debug("%s left %s", handle, channel)
	h.emit.Emit(events.PresenceUpdate{Handle: handle, Channel: channel, Kind: "left"})
	if channel == h.opts.PresenceChannel {
		h.emit.Emit(events.MoodUpdated{Handle: handle, Mood: profile.Offline})
	}
	return nil
}

func (h *Handlers) onKick(m *Message) error {
	channel, kicked := m.Args[0], m.Args[1]
	kind := fmt.Sprintf("kick:%s:%s", m.Nick(), m.Arg(2))
	h.emit.Emit(events.PresenceUpdate{Handle: kicked, Channel: channel, Kind: kind})
	return nil
}

func (h *Handlers) onQuit(m *Message) error {
	handle := m.Nick()
	kind := h.netsplit.OnQuit(handle, m.Arg(0))
	h.logger.Debug("%s quit (%s): %s", handle, kind, m.Arg(0))
	h.emit.Emit(events.PresenceUpdate{Handle: handle, Kind: kind})
	h.emit.Emit(events.MoodUpdated{Handle: handle, Mood: profile.Offline})
	return nil
}

func (h *Handlers) onInvite(m *Message) error {
	h.emit.Emit(events.InviteReceived{Handle: m.Nick(), Channel: m.Args[1]})
	return nil
}

// NICK, ours or someone else's. The server may also rename us.
func (h *Handlers) onNick(m *Message) error {
	oldHandle, newHandle := m.Nick(), m.Args[0]
	me := h.self.get().Handle

	if oldHandle == me && newHandle != me && newHandle != h.requestedNick.Load().(string) {
		h.emit.Emit(events.SvsNick{Old: oldHandle, New: newHandle})
	}
	if me == oldHandle || me == newHandle {
		h.self.setHandle(newHandle)
		h.emit.Emit(events.HandleChanged{Handle: newHandle})
	}

	h.emit.Emit(events.MoodUpdated{Handle: oldHandle, Mood: profile.Offline})
	h.emit.Emit(events.PresenceUpdate{Handle: oldHandle + ":" + newHandle, Kind: "nick"})
	if h.contacts.IsContact(newHandle) {
		h.GetMood(newHandle)
	}
	return nil
}

func (h *Handlers) onNotice(m *Message) error {
	handle, target, text := m.Nick(), m.Args[0], m.Args[1]
	h.logger.Info("NOTICE from %s: %s", handle, text)

	if handle == "ChanServ" && target == h.self.get().Handle && strings.HasPrefix(text, "[#") {
		if end := strings.Index(text, "]"); end > 0 {
			h.emit.Emit(events.MemoReceived{Channel: text[1:end], Handle: handle, Text: text})
			return nil
		}
	}
	h.emit.Emit(events.NoticeReceived{Handle: handle, Text: text})
	return nil
}
