package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	guerrillamail "github.com/guerrillamail/client-go"
	"github.com/guerrillamail/client-go/internal/config"
	"github.com/guerrillamail/client-go/internal/di"
)

// Config holds the process streams.
type Config struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// DefaultConfig returns a Config wired to the process streams.
func DefaultConfig() *Config {
	return &Config{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// command is one subcommand. flags may be nil.
type command struct {
	usage string
	flags func(*pflag.FlagSet)
	run   func(ctx context.Context, a *app, flags *pflag.FlagSet, args []string) error
}

var commands = map[string]command{
	"address":  {usage: "acquire or show the session's mailbox", flags: addressFlags, run: runAddress},
	"set-user": {usage: "set-user USER: rename the mailbox", flags: setUserFlags, run: runSetUser},
	"check":    {usage: "list messages newer than the saved cursor", flags: checkFlags, run: runCheck},
	"list":     {usage: "list a page of messages", flags: listFlags, run: runList},
	"fetch":    {usage: "fetch ID...: print full messages", flags: fetchFlags, run: runFetch},
	"delete":   {usage: "delete ID...: delete messages", run: runDelete},
	"forget":   {usage: "detach the address from the session", run: runForget},
	"extend":   {usage: "extend the mailbox lifetime", run: runExtend},
	"wait":     {usage: "wait for a matching message", flags: waitFlags, run: runWait},
}

func usage(w io.Writer, global *pflag.FlagSet) {
	fmt.Fprintf(w, "usage: guerrillamail [flags] <command> [command flags] [args]\n\ncommands:\n")
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-9s %s\n", name, commands[name].usage)
	}
	fmt.Fprintf(w, "\nflags:\n%s", global.FlagUsages())
}

func globalFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("guerrillamail", pflag.ContinueOnError)
	flags.SetInterspersed(false)
	flags.String("config", "", "config file (yaml, toml or json)")
	flags.String("env-file", ".env", "dotenv file loaded before reading the environment")
	flags.BoolP("verbose", "v", false, "debug logging")
	config.RegisterFlags(flags)
	return flags
}

func run(args []string, cfg *Config) error {
	global := globalFlags()
	global.SetOutput(cfg.Stderr)
	if err := global.Parse(args[1:]); err != nil {
		return err
	}

	rest := global.Args()
	if len(rest) == 0 {
		usage(cfg.Stderr, global)
		return errors.New("missing command")
	}
	cmd, ok := commands[rest[0]]
	if !ok {
		usage(cfg.Stderr, global)
		return fmt.Errorf("unknown command: %s", rest[0])
	}

	flags := pflag.NewFlagSet(rest[0], pflag.ContinueOnError)
	flags.SetOutput(cfg.Stderr)
	if cmd.flags != nil {
		cmd.flags(flags)
	}
	if err := flags.Parse(rest[1:]); err != nil {
		return err
	}

	envFile, _ := global.GetString("env-file")
	if err := config.LoadDotEnv(envFile); err != nil {
		return err
	}
	configFile, _ := global.GetString("config")
	conf, err := config.New(configFile)
	if err != nil {
		return err
	}
	if err := conf.BindFlags(global); err != nil {
		return err
	}
	if verbose, _ := global.GetBool("verbose"); verbose {
		conf.GetViper().Set(config.KeyLoggingLevel, "debug")
	}

	container, err := di.BuildContainer(conf)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return container.Invoke(func(client *guerrillamail.Client, logger *zap.Logger) error {
		defer logger.Sync()

		a := &app{
			client: client,
			logger: logger,
			out:    cfg.Stdout,
			state:  newSessionState(conf.Client().SessionFile),
		}
		if err := a.state.load(client); err != nil {
			return err
		}
		if err := cmd.run(ctx, a, flags, flags.Args()); err != nil {
			return err
		}
		return a.state.save(client, logger)
	})
}

func fatal(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}
	fmt.Fprint(os.Stderr, msg)
	os.Exit(1)
}
