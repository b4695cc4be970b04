// Command uiflow is a developer harness for screen descriptions: it renders
// screens, runs action chains against a live API and lists the builtin kinds.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"

	"github.com/goliatone/go-uiflow/config"
	"github.com/goliatone/go-uiflow/logging"
)

type cli struct {
	Config   string `help:"YAML or JSON configuration file." short:"c" type:"existingfile"`
	LogLevel string `help:"Override the configured log level." name:"log-level"`

	Render renderCmd `cmd:"" help:"Render a screen and print the host tree with diagnostics."`
	Run    runCmd    `cmd:"" help:"Execute an action chain and print its trace and final state."`
	Kinds  kindsCmd  `cmd:"" help:"List the builtin node kinds."`
}

// app carries what every command needs.
type app struct {
	ctx    context.Context
	cfg    config.Config
	logger logging.Logger
	stdout io.Writer
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		stop()
		die(err)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var root cli
	parser, err := kong.New(&root,
		kong.Name("uiflow"),
		kong.Description("Render declarative screens and dispatch their actions."),
		kong.UsageOnError(),
		kong.Writers(stdout, stderr),
	)
	if err != nil {
		return err
	}
	kctx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	cfg := config.Default()
	if root.Config != "" {
		if cfg, err = config.Load(root.Config); err != nil {
			return err
		}
	}
	if root.LogLevel != "" {
		cfg.Log.Level = root.LogLevel
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	return kctx.Run(&app{
		ctx:    ctx,
		cfg:    cfg,
		logger: cfg.Logger(stderr),
		stdout: stdout,
	})
}

func die(err error) {
	fmt.Fprintf(os.Stderr, "uiflow: %v\n", err)
	os.Exit(1)
}
