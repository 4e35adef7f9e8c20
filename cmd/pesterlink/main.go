package main

import (
	"bufio"
	"context"
	"flag"
	"os"
	"sync/atomic"
	"time"

	"github.com/yourusername/pesterlink/internal/commands"
	"github.com/yourusername/pesterlink/internal/config"
	"github.com/yourusername/pesterlink/internal/errors"
	"github.com/yourusername/pesterlink/internal/events"
	"github.com/yourusername/pesterlink/internal/irc"
	"github.com/yourusername/pesterlink/internal/output"
	"github.com/yourusername/pesterlink/internal/profile"
	"github.com/yourusername/pesterlink/internal/ratelimit"
	"github.com/yourusername/pesterlink/internal/shutdown"
)

func main() {
	configPath := flag.String("config", "config/pesterlink.toml", "Path to the TOML or YAML configuration file")
	noVerify := flag.Bool("no-verify-hostname", false, "Skip TLS hostname verification")
	debug := flag.Bool("debug", false, "Print protocol traces")
	flag.Parse()

	cfg, err := config.LoadOrCreate(*configPath)
	if err != nil {
		output.NewColorLogger(*debug).Error("Failed to load configuration: %v", err)
		os.Exit(1)
	}

	logger := output.NewColorLogger(*debug || cfg.Logging.Debug)
	logger.Info("pesterlink - Starting...")
	logger.Success("Configuration loaded from %s", *configPath)

	out := output.NewOutput(logger, cfg.Logging.ErrorLog, cfg.Logging.MaxLogSizeMB, cfg.Logging.MaxLogFiles)
	errHandler := errors.NewErrorHandler(out)

	me, contacts := config.ProfileFromConfig(cfg)
	if err := profile.ValidateHandle(me.Handle); err != nil {
		logger.Warning("Handle %q may be rejected: %v", me.Handle, err)
	}
	logger.Info("Pestering as %s (%s), %d chums", me.Handle, me.Mood.Name(), len(contacts.Handles()))

	if *noVerify {
		cfg.Server.VerifyHostname = false
		logger.Warning("TLS hostname verification disabled")
	}

	server := irc.ServerOptions{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		TLS:            cfg.Server.TLS,
		VerifyHostname: cfg.Server.VerifyHostname,
		CAFile:         cfg.Server.CAFile,
		Proxy:          cfg.Server.Proxy,
		ReadTimeout:    cfg.Server.GetReadTimeoutDuration(),
	}
	opts := irc.Options{
		PresenceChannel: cfg.Protocol.PresenceChannel,
		ChannelModes:    cfg.Protocol.ChannelModes,
		Version:         cfg.Protocol.Version,
		SourceURL:       cfg.Protocol.SourceURL,
		LowBandwidth:    cfg.Server.LowBandwidth,
	}
	limiter := ratelimit.New(cfg.Limits.SendBurst, cfg.Limits.GetSendIntervalDuration())
	bus := events.NewBus()
	client := irc.NewClient(server, opts, *me, contacts, bus, logger, limiter)
	logger.Success("Client initialized")

	shutdownHandler := shutdown.NewHandler(logger, 10*time.Second)
	defer shutdownHandler.Stop()
	ctx := shutdownHandler.Context()

	backoff := irc.NewBackoff(cfg.Limits.GetReconnectDelayMinDuration(), cfg.Limits.GetReconnectDelayMaxDuration(), logger)

	// A certificate failure needs the user to act, so it stops reconnection.
	var certFailed atomic.Bool
	bus.Subscribe(func(e events.Event) {
		switch ev := e.(type) {
		case events.Connected:
			backoff.Reset()
		case events.ConnectionBroken:
			errHandler.Handle(ev.SessionID, ev.Reason, ev.Err)
		case events.CertificateError:
			certFailed.Store(true)
			errHandler.Handle("", errors.Describe(ev.Err), ev.Err)
			logger.Info("Run again with -no-verify-hostname to trust %s anyway", ev.Host)
		}
	})
	bus.Subscribe(newEventPrinter(logger, me.Handle).print)

	registry := commands.NewRegistry()
	env := &commands.Env{
		Session:  client,
		Contacts: contacts,
		Quit:     func() { go shutdownHandler.Shutdown("quit command") },
	}
	if err := commands.RegisterBuiltins(registry, env); err != nil {
		logger.Error("Failed to register commands: %v", err)
		os.Exit(1)
	}
	dispatcher := commands.NewDispatcher(registry, client, "/")

	shutdownHandler.Register("disconnect", func() error {
		if client.State() != irc.StateDisconnected {
			client.Disconnect()
		}
		select {
		case <-client.Done():
		case <-time.After(5 * time.Second):
			logger.Warning("Read loop did not stop in time")
		}
		return nil
	})

	go readInput(ctx, dispatcher, logger)

	go func() {
		stopping := func() bool {
			return shutdownHandler.Reason() != "" || certFailed.Load() || !cfg.Limits.AutoReconnect
		}
		runClient(ctx, client, backoff, stopping, logger)
		shutdownHandler.Shutdown("connection closed")
	}()

	shutdownHandler.WaitForShutdown()
	logger.Info("Goodbye!")
}

// runClient keeps the client connected until ctx ends or stopping reports
// that no further attempt should be made.
func runClient(ctx context.Context, client *irc.Client, backoff *irc.Backoff, stopping func() bool, logger output.Logger) {
	for {
		logger.Info("Connecting...")
		client.Start(ctx)

		select {
		case <-client.Done():
		case <-ctx.Done():
			<-client.Done()
			return
		}

		if ctx.Err() != nil || stopping() {
			return
		}
		if !backoff.Wait(ctx) {
			return
		}
	}
}

func readInput(ctx context.Context, dispatcher *commands.Dispatcher, logger output.Logger) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		resp, err := dispatcher.Dispatch(scanner.Text())
		switch {
		case err != nil && irc.IsNotConnected(err):
			logger.Warning("Not connected")
		case err != nil:
			logger.Error("%v", err)
		case resp == nil || resp.Message == "":
		case resp.IsError:
			logger.Warning("%s", resp.Message)
		default:
			logger.Info("%s", resp.Message)
		}
	}
	if err := scanner.Err(); err != nil {
		logger.Error("Reading input: %v", err)
	}
}
