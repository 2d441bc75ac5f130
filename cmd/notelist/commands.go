package main

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"notelist/internal/app"
	"notelist/internal/client"
	"notelist/internal/clipsync"
	"notelist/internal/config"
	"notelist/internal/logging"
	"notelist/internal/notes"
)

type clientFactory func(cfg config.Config, logger logging.Logger) clipsync.Remote

type uiRunner func(ctrl app.Controller, coll *notes.Collection, opts app.Options) error

type hostRunner func(ctx context.Context, opts hostOptions) error

type commandWiring struct {
	stdout     io.Writer
	stderr     io.Writer
	loadConfig func() (config.Config, error)
	newClient  clientFactory
	runUI      uiRunner
	runHost    hostRunner
	uiLogPath  func() (string, error)
	version    string
}

func defaultCommandWiring(stdout, stderr io.Writer) commandWiring {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	return commandWiring{
		stdout:     stdout,
		stderr:     stderr,
		loadConfig: config.Load,
		newClient:  newGraphQLClient,
		runUI:      app.Run,
		runHost:    runHostProcess,
		uiLogPath:  config.UILogPath,
		version:    buildVersion(),
	}
}

func newGraphQLClient(cfg config.Config, logger logging.Logger) clipsync.Remote {
	return client.New(cfg, logger)
}

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	host     string
	logLevel string
}

// commandEnv resolves configuration and collaborators for one invocation.
type commandEnv struct {
	wiring commandWiring
	global *globalOptions
}

func newRootCommand(wiring commandWiring) *cobra.Command {
	env := &commandEnv{wiring: wiring, global: &globalOptions{}}
	root := &cobra.Command{
		Use:           "notelist",
		Short:         "Edit the notes of the clip selected in Live",
		Long:          "notelist fetches the MIDI clip selected in Live, edits its notes as a table and writes them back.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(wiring.stdout)
	root.SetErr(wiring.stderr)
	flags := root.PersistentFlags()
	flags.StringVar(&env.global.host, "host", "", "GraphQL endpoint (host:port or URL), overrides remote.address")
	flags.StringVar(&env.global.logLevel, "log-level", "", "log level: debug|info|warn|error")

	root.AddCommand(
		newUICommand(env),
		newFetchCommand(env),
		newReplaceCommand(env),
		newExportCommand(env),
		newImportCommand(env),
		newTransportCommand(env, "fire", "Fire the selected clip", (*clipsync.Controller).Fire),
		newTransportCommand(env, "start", "Start song playback", (*clipsync.Controller).Start),
		newTransportCommand(env, "stop", "Stop song playback", (*clipsync.Controller).Stop),
		newHostCommand(env),
		newConfigCommand(env),
		newVersionCommand(env),
	)
	return root
}

func (e *commandEnv) config() (config.Config, error) {
	cfg, err := e.wiring.loadConfig()
	if err != nil {
		return config.Config{}, err
	}
	if host := strings.TrimSpace(e.global.host); host != "" {
		cfg.Remote.Address = host
	}
	if level := strings.TrimSpace(e.global.logLevel); level != "" {
		cfg.Logging.Level = level
	}
	return cfg, nil
}

func (e *commandEnv) logger(cfg config.Config) logging.Logger {
	return logging.New(e.wiring.stderr, logging.ParseLevel(cfg.LogLevel()))
}

// session is one client, collection and controller, built per command.
type session struct {
	cfg    config.Config
	logger logging.Logger
	notes  *notes.Collection
	ctrl   *clipsync.Controller
}

func (e *commandEnv) session(logger logging.Logger, cfg config.Config) *session {
	coll := notes.NewCollection(nil)
	remote := e.wiring.newClient(cfg, logger)
	return &session{
		cfg:    cfg,
		logger: logger,
		notes:  coll,
		ctrl:   clipsync.NewController(remote, coll, logger),
	}
}

// openSession loads configuration, builds a session and fetches the
// selected clip.
func (e *commandEnv) openSession(ctx context.Context) (*session, error) {
	cfg, err := e.config()
	if err != nil {
		return nil, err
	}
	s := e.session(e.logger(cfg), cfg)
	if err := s.fetch(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *session) fetch(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.RemoteTimeout())
	defer cancel()
	_, err := s.ctrl.Fetch(ctx)
	return commandError(err)
}

func (s *session) save(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.RemoteTimeout())
	defer cancel()
	_, err := s.ctrl.Save(ctx)
	return commandError(err)
}

func (s *session) clipTitle() string {
	clip, _ := s.ctrl.Clip()
	return clip.Title()
}
