package commands

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/yourusername/pesterlink/internal/profile"
)

// Env is what the built-in commands act on
type Env struct {
	Session  Session
	Contacts *profile.Contacts
	Quit     func()

	mu     sync.Mutex
	convos map[string]bool
}

// Conversations returns the open private conversations, sorted
func (e *Env) Conversations() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, 0, len(e.convos))
	for h := range e.convos {
		out = append(out, h)
	}
	sort.Strings(out)
	return out
}

func (e *Env) open(handle string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.convos == nil {
		e.convos = make(map[string]bool)
	}
	if e.convos[handle] {
		return false
	}
	e.convos[handle] = true
	return true
}

func (e *Env) close(handle string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.convos[handle] {
		return false
	}
	delete(e.convos, handle)
	return true
}

type builtin struct {
	name    string
	usage   string
	help    string
	minArgs int
	run     func(ctx *Context) (*Response, error)
}

func (b *builtin) Name() string                            { return b.name }
func (b *builtin) Usage() string                           { return b.usage }
func (b *builtin) Help() string                            { return b.help }
func (b *builtin) MinArgs() int                            { return b.minArgs }
func (b *builtin) Execute(ctx *Context) (*Response, error) { return b.run(ctx) }

func isMemo(target string) bool {
	return strings.HasPrefix(target, "#")
}

// targetOr returns args[i] when present, else the active conversation
func targetOr(ctx *Context, i int) string {
	if len(ctx.Args) > i {
		return ctx.Args[i]
	}
	return ctx.Target
}

// RegisterBuiltins registers the standard client commands
func RegisterBuiltins(r *Registry, env *Env) error {
	s := env.Session
	cmds := []*builtin{
		{name: "msg", usage: "<handle|#memo> <text>", help: "Send a message without switching conversations", minArgs: 2,
			run: func(ctx *Context) (*Response, error) {
				_, text, _ := strings.Cut(ctx.Rest, " ")
				return nil, s.SendMessage(ctx.Args[0], strings.TrimSpace(text))
			}},
		{name: "query", usage: "<handle>", help: "Open a conversation with a chum", minArgs: 1,
			run: func(ctx *Context) (*Response, error) {
				handle := ctx.Args[0]
				if isMemo(handle) {
					return NewErrorResponse("Use /join for memos."), nil
				}
				if env.open(handle) {
					if err := s.StartConversation(handle, true); err != nil {
						env.close(handle)
						return nil, err
					}
				}
				return &Response{Message: "Pestering " + handle, SetTarget: handle}, nil
			}},
		{name: "close", usage: "[handle]", help: "Cease pestering a chum",
			run: func(ctx *Context) (*Response, error) {
				handle := targetOr(ctx, 0)
				if handle == "" || isMemo(handle) {
					return NewErrorResponse("No conversation to close."), nil
				}
				if !env.close(handle) {
					return NewErrorResponse("Not pestering " + handle + "."), nil
				}
				resp := NewResponse("Ceased pestering " + handle)
				resp.ClearTarget = handle == ctx.Target
				return resp, s.EndConversation(handle)
			}},
		{name: "me", usage: "<action>", help: "Send an action to the active conversation", minArgs: 1,
			run: func(ctx *Context) (*Response, error) {
				if ctx.Target == "" {
					return NewErrorResponse("No active conversation."), nil
				}
				return nil, s.SendMessage(ctx.Target, "/me "+ctx.Rest)
			}},
		{name: "join", usage: "<#memo>", help: "Join a memo", minArgs: 1,
			run: func(ctx *Context) (*Response, error) {
				memo := ctx.Args[0]
				if !isMemo(memo) {
					memo = "#" + memo
				}
				if err := s.JoinChannel(memo); err != nil {
					return nil, err
				}
				return &Response{Message: "Joined " + memo, SetTarget: memo}, nil
			}},
		{name: "part", usage: "[#memo]", help: "Leave a memo",
			run: func(ctx *Context) (*Response, error) {
				memo := targetOr(ctx, 0)
				if !isMemo(memo) {
					return NewErrorResponse("Not in a memo."), nil
				}
				resp := NewResponse("Left " + memo)
				resp.ClearTarget = memo == ctx.Target
				return resp, s.PartChannel(memo)
			}},
		{name: "names", usage: "[#memo]", help: "List who is in a memo",
			run: func(ctx *Context) (*Response, error) {
				memo := targetOr(ctx, 0)
				if !isMemo(memo) {
					return NewErrorResponse("Not in a memo."), nil
				}
				return nil, s.RequestNames(memo)
			}},
		{name: "list", help: "List open memos",
			run: func(*Context) (*Response, error) {
				return nil, s.RequestChannelList()
			}},
		{name: "mood", usage: "<name>", help: "Change your mood (" + strings.Join(profile.MoodNames(), ", ") + ")", minArgs: 1,
			run: func(ctx *Context) (*Response, error) {
				mood, err := profile.MoodByName(ctx.Args[0])
				if err != nil {
					return NewErrorResponse(err.Error()), nil
				}
				if err := s.UpdateMood(mood); err != nil {
					return nil, err
				}
				return NewResponse("Mood is now " + mood.Name()), nil
			}},
		{name: "color", usage: "<#rrggbb|r,g,b>", help: "Change your text color", minArgs: 1,
			run: func(ctx *Context) (*Response, error) {
				color, err := parseColorArg(ctx.Args[0])
				if err != nil {
					return NewErrorResponse(err.Error()), nil
				}
				if err := s.UpdateColor(color, env.Conversations()...); err != nil {
					return nil, err
				}
				return NewResponse("Color is now " + color.Hex()), nil
			}},
		{name: "nick", usage: "<handle>", help: "Change your handle", minArgs: 1,
			run: func(ctx *Context) (*Response, error) {
				if err := profile.ValidateHandle(ctx.Args[0]); err != nil {
					return NewErrorResponse(err.Error()), nil
				}
				p := s.Profile()
				p.Handle = ctx.Args[0]
				return nil, s.UpdateProfile(p)
			}},
		{name: "block", usage: "<handle>", help: "Block a chum", minArgs: 1,
			run: func(ctx *Context) (*Response, error) {
				return NewResponse("Blocked " + ctx.Args[0]), s.Block(ctx.Args[0])
			}},
		{name: "unblock", usage: "<handle>", help: "Unblock a chum", minArgs: 1,
			run: func(ctx *Context) (*Response, error) {
				return NewResponse("Unblocked " + ctx.Args[0]), s.Unblock(ctx.Args[0])
			}},
		{name: "add", usage: "<handle>", help: "Add a chum and ask for their mood", minArgs: 1,
			run: func(ctx *Context) (*Response, error) {
				if env.Contacts == nil {
					return NewErrorResponse("No chumroll."), nil
				}
				env.Contacts.Add(ctx.Args[0])
				s.GetMood(ctx.Args[0])
				return NewResponse("Added " + ctx.Args[0] + " to your chumroll"), nil
			}},
		{name: "remove", usage: "<handle>", help: "Remove a chum", minArgs: 1,
			run: func(ctx *Context) (*Response, error) {
				if env.Contacts == nil {
					return NewErrorResponse("No chumroll."), nil
				}
				env.Contacts.Remove(ctx.Args[0])
				return NewResponse("Removed " + ctx.Args[0]), nil
			}},
		{name: "chums", help: "Show your chumroll",
			run: func(*Context) (*Response, error) {
				if env.Contacts == nil || len(env.Contacts.Handles()) == 0 {
					return NewResponse("Your chumroll is empty."), nil
				}
				return NewResponse("Chums: " + strings.Join(env.Contacts.Handles(), ", ")), nil
			}},
		{name: "getmood", usage: "[handle...]", help: "Refresh moods (all chums by default)",
			run: func(ctx *Context) (*Response, error) {
				handles := ctx.Args
				if len(handles) == 0 && env.Contacts != nil {
					handles = env.Contacts.Handles()
				}
				s.GetMood(handles...)
				return nil, nil
			}},
		{name: "invite", usage: "<handle> [#memo]", help: "Invite a chum to a memo", minArgs: 1,
			run: func(ctx *Context) (*Response, error) {
				memo := targetOr(ctx, 1)
				if !isMemo(memo) {
					return NewErrorResponse("Not in a memo."), nil
				}
				return nil, s.InviteChum(ctx.Args[0], memo)
			}},
		{name: "kick", usage: "<handle> [reason]", help: "Kick someone from the active memo", minArgs: 1,
			run: func(ctx *Context) (*Response, error) {
				if !isMemo(ctx.Target) {
					return NewErrorResponse("Not in a memo."), nil
				}
				_, reason, _ := strings.Cut(ctx.Rest, " ")
				return nil, s.KickUser(ctx.Target, ctx.Args[0], strings.TrimSpace(reason))
			}},
		{name: "mode", usage: "<modes> [params]", help: "Set modes on the active memo", minArgs: 1,
			run: func(ctx *Context) (*Response, error) {
				if !isMemo(ctx.Target) {
					return NewErrorResponse("Not in a memo."), nil
				}
				return nil, s.SetChannelMode(ctx.Target, ctx.Args[0], strings.Join(ctx.Args[1:], " "))
			}},
		{name: "quirks", usage: "<handle>", help: "Ask a memo member to turn off quirks", minArgs: 1,
			run: func(ctx *Context) (*Response, error) {
				if !isMemo(ctx.Target) {
					return NewErrorResponse("Not in a memo."), nil
				}
				return nil, s.KillQuirks(ctx.Target, ctx.Args[0])
			}},
		{name: "notice", usage: "<handle> <text>", help: "Send a notice", minArgs: 2,
			run: func(ctx *Context) (*Response, error) {
				_, text, _ := strings.Cut(ctx.Rest, " ")
				return nil, s.SendNotice(ctx.Args[0], strings.TrimSpace(text))
			}},
		{name: "ctcp", usage: "<handle> <command>", help: "Send a CTCP query", minArgs: 2,
			run: func(ctx *Context) (*Response, error) {
				return nil, s.SendCTCP(ctx.Args[0], strings.ToUpper(ctx.Args[1]))
			}},
		{name: "away", help: "Mark yourself idle",
			run: func(*Context) (*Response, error) {
				return NewResponse("You are now idle"), s.SetAway(true)
			}},
		{name: "back", help: "Clear idle status",
			run: func(*Context) (*Response, error) {
				return NewResponse("Welcome back"), s.SetAway(false)
			}},
		{name: "ping", help: "Ping the server",
			run: func(*Context) (*Response, error) {
				return nil, s.Ping()
			}},
		{name: "whoami", help: "Show your profile",
			run: func(*Context) (*Response, error) {
				p := s.Profile()
				return NewResponse(fmt.Sprintf("%s (%s), mood %s, color %s", p.Handle, profile.Initials(p.Handle), p.Mood.Name(), p.Color.Hex())), nil
			}},
		{name: "quit", help: "Disconnect and exit",
			run: func(*Context) (*Response, error) {
				if env.Quit != nil {
					env.Quit()
				}
				return nil, nil
			}},
	}

	for _, c := range cmds {
		if err := r.Register(c); err != nil {
			return err
		}
	}
	return r.Register(&builtin{name: "help", usage: "[command]", help: "Show help",
		run: func(ctx *Context) (*Response, error) {
			if len(ctx.Args) > 0 {
				cmd, ok := r.Get(strings.TrimPrefix(ctx.Args[0], "/"))
				if !ok {
					return NewErrorResponse("No such command " + ctx.Args[0]), nil
				}
				return NewResponse(fmt.Sprintf("/%s %s: %s", cmd.Name(), cmd.Usage(), cmd.Help())), nil
			}
			return NewResponse("Commands: /" + strings.Join(r.List(), ", /")), nil
		}})
}

func parseColorArg(s string) (profile.Color, error) {
	if strings.Contains(s, ",") {
		return profile.ParseRGB(s)
	}
	return profile.ParseHex(s)
}
