package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	uiflow "github.com/goliatone/go-uiflow"
	"github.com/goliatone/go-uiflow/action"
	"github.com/goliatone/go-uiflow/executor"
	"github.com/goliatone/go-uiflow/handlers"
	"github.com/goliatone/go-uiflow/httpclient"
	"github.com/goliatone/go-uiflow/navigation"
	"github.com/goliatone/go-uiflow/registry"
	"github.com/goliatone/go-uiflow/render"
	"github.com/goliatone/go-uiflow/session"
)

type renderCmd struct {
	Screen      string `arg:"" help:"Screen document or bare node (JSON or YAML, - for stdin)."`
	Context     string `help:"File with fields, state and session values." type:"existingfile"`
	FailOnError bool   `help:"Exit non-zero when an error diagnostic was produced." name:"fail-on-error"`
}

func (c *renderCmd) Run(a *app) error {
	data, err := readInput(c.Screen)
	if err != nil {
		return err
	}
	doc, err := render.ParseDocument(data)
	if err != nil {
		return err
	}
	ec, err := loadContext(c.Context)
	if err != nil {
		return err
	}
	engine, err := render.New(registry.Default(), append(a.cfg.RenderOptions(), render.WithLogger(a.logger))...)
	if err != nil {
		return err
	}

	s := session.New(a.ctx, engine, nil, session.WithExecutionContext(ec), session.WithLogger(a.logger))
	defer s.Close()

	res := s.RenderDocument(doc)
	if err := writeJSON(a.stdout, res); err != nil {
		return err
	}
	if c.FailOnError && res.HasErrors() {
		return fmt.Errorf("%d diagnostics reported", len(res.Diagnostics))
	}
	return nil
}

type runCmd struct {
	Action  string   `arg:"" help:"Action description (JSON or YAML, - for stdin)."`
	Context string   `help:"File with fields, state and session values." type:"existingfile"`
	Routes  []string `help:"Known route patterns. Without routes every target is accepted." name:"route"`
}

func (c *runCmd) Run(a *app) error {
	raw, err := decodeInput(c.Action)
	if err != nil {
		return err
	}
	act, err := action.Parse(raw)
	if err != nil {
		return err
	}
	ec, err := loadContext(c.Context)
	if err != nil {
		return err
	}

	router := navigation.NewRouter(
		navigation.WithPermissive(len(c.Routes) == 0),
		navigation.WithLogger(a.logger),
	)
	for _, pattern := range c.Routes {
		router.Handle(pattern, nil)
	}

	reg := handlers.NewRegistry(handlers.WithLogger(a.logger))
	if err := registerHarnessHandlers(reg, a); err != nil {
		return err
	}

	metrics, err := executor.NewOtelRecorder(nil)
	if err != nil {
		return err
	}
	exec := executor.New(append(a.cfg.ExecutorOptions(),
		executor.WithLogger(a.logger),
		executor.WithNavigator(router),
		executor.WithHTTPClient(httpclient.New(append(a.cfg.HTTPOptions(), httpclient.WithLogger(a.logger))...)),
		executor.WithHandlers(reg),
		executor.WithMetrics(metrics),
	)...)

	engine, err := render.New(registry.Default(), render.WithLogger(a.logger))
	if err != nil {
		return err
	}
	s := session.New(a.ctx, engine, exec, session.WithExecutionContext(ec), session.WithLogger(a.logger))
	defer s.Close()

	tr, _ := s.Run(act)
	report := runReport{
		Trace:   tr,
		Context: ec.Snapshot(),
		History: router.History(),
	}
	return writeJSON(a.stdout, report)
}

type runReport struct {
	Trace   executor.Trace        `json:"trace"`
	Context uiflow.Snapshot       `json:"context"`
	History []navigation.Location `json:"history"`
}

// registerHarnessHandlers installs the handlers custom actions can call from
// the command line.
func registerHarnessHandlers(reg *handlers.Registry, a *app) error {
	if err := reg.Register("echo", func(_ context.Context, params map[string]any) (any, error) {
		return params, nil
	}); err != nil {
		return err
	}
	return reg.Register("log", handlers.Effect(func(_ context.Context, params map[string]any) error {
		a.logger.Info("custom action: %v", params)
		return nil
	}))
}

type kindsCmd struct{}

func (kindsCmd) Run(a *app) error {
	for _, kind := range registry.Default().Kinds() {
		if _, err := fmt.Fprintln(a.stdout, kind); err != nil {
			return err
		}
	}
	return nil
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

// decodeInput reads JSON or YAML into canonical values.
func decodeInput(path string) (any, error) {
	data, err := readInput(path)
	if err != nil {
		return nil, err
	}
	trimmed := bytes.TrimSpace(data)
	var raw any
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		err = json.Unmarshal(trimmed, &raw)
	} else {
		err = yaml.Unmarshal(trimmed, &raw)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return uiflow.Canonicalize(raw), nil
}

func loadContext(path string) (*uiflow.ExecutionContext, error) {
	if path == "" {
		return uiflow.NewExecutionContext(), nil
	}
	raw, err := decodeInput(path)
	if err != nil {
		return nil, err
	}
	m, ok := uiflow.AsMap(raw)
	if !ok {
		return nil, fmt.Errorf("context file %s must be an object", path)
	}
	scope := func(name string) map[string]any {
		v, _ := uiflow.AsMap(m[name])
		return v
	}
	return uiflow.NewExecutionContext(
		uiflow.WithFields(scope(uiflow.ScopeFields)),
		uiflow.WithState(scope(uiflow.ScopeState)),
		uiflow.WithSession(scope(uiflow.ScopeSession)),
	), nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
