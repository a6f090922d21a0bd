// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/mark3labs/mcp-go/server"
	"github.com/poiesic/namescan"
	"github.com/poiesic/namescan/ai"
	"github.com/poiesic/namescan/ai/openai"
	"github.com/poiesic/namescan/config"
	"github.com/poiesic/namescan/core"
	"github.com/poiesic/namescan/httpapi"
	"github.com/poiesic/namescan/tool"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var version = "dev"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "namescan",
		Usage:   "Find a person's name across relational sources for GDPR requests",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the YAML configuration file",
				Value:   "namescan.yaml",
				EnvVars: []string{"NAMESCAN_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Dotenv file with source credentials (ignored if missing)",
				Value: ".env",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "search",
				Usage:     "Search every target for a name and print the matches as JSON",
				ArgsUsage: "<name>",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "detail",
						Usage: "Include the per-target status summary",
					},
				},
			},
			{
				Name:   "serve",
				Usage:  "Serve the HTTP API",
				Action: serveCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "addr",
						Usage: "Listen address (overrides http.addr)",
					},
					&cli.DurationFlag{
						Name:  "shutdown-timeout",
						Usage: "Grace period for in-flight requests on shutdown",
						Value: 15 * time.Second,
					},
				},
			},
			{
				Name:   "mcp",
				Usage:  "Serve the search tool over MCP on stdio",
				Action: mcpCommand,
			},
			{
				Name:   "targets",
				Usage:  "Print the resolved search targets as YAML",
				Action: targetsCommand,
			},
			{
				Name:      "agent",
				Usage:     "Ask a language-model agent to find a name using the search tool",
				ArgsUsage: "<name>",
				Action:    agentCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "host",
						Usage: "OpenAI-compatible API host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:     "model",
						Usage:    "Chat model name",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "token",
						Usage:   "API token",
						EnvVars: []string{"OPENAI_API_KEY"},
					},
					&cli.IntFlag{
						Name:  "max-steps",
						Usage: "Maximum tool calls per request",
						Value: tool.DefaultInvocationLimit,
					},
				},
			},
			{
				Name:   "process",
				Usage:  "Mask or delete one matched name and record it in the audit log",
				Action: processCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "id",
						Usage: "Record key the decision refers to",
					},
					&cli.StringFlag{
						Name:     "name",
						Usage:    "Matched name",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "source",
						Usage:    "Source the name was found in (source.schema.table)",
						Required: true,
					},
					&cli.Float64Flag{
						Name:  "probability",
						Usage: "Match probability reported by the search",
						Value: 0.95,
					},
					&cli.StringFlag{
						Name:     "action",
						Usage:    "mask or delete",
						Required: true,
					},
				},
			},
			{
				Name:   "audit",
				Usage:  "Print the most recent audit entries",
				Action: auditCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Number of entries to print (0 for all)",
						Value: 20,
					},
				},
			},
		},
	}
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(config.LoadOptions{
		ConfigFile: c.String("config"),
		EnvFile:    c.String("env-file"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

func openScanner(c *cli.Context) (*namescan.Scanner, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	scanner, err := namescan.NewScanner(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create scanner: %w", err)
	}
	return scanner, nil
}

// nameArg joins the positional arguments so unquoted names work.
func nameArg(c *cli.Context) (string, error) {
	name := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if name == "" {
		return "", errors.New("a name is required")
	}
	return name, nil
}

func searchCommand(c *cli.Context) error {
	name, err := nameArg(c)
	if err != nil {
		return err
	}
	scanner, err := openScanner(c)
	if err != nil {
		return err
	}
	defer scanner.Close()

	resp, err := scanner.SearchDetailed(c.Context, name)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if c.Bool("detail") {
		printSummary(c, resp.Summary)
	}
	if resp.Summary.AllFailed() {
		slog.Warn("no target could be searched", "targets", len(resp.Summary.Targets))
	}
	return writeJSON(c, resp.Records)
}

func printSummary(c *cli.Context, summary core.Summary) {
	w := tabwriter.NewWriter(c.App.ErrWriter, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TARGET\tSTATUS\tMATCHES\tELAPSED\tERROR")
	for _, o := range summary.Targets {
		errText := ""
		if o.Err != nil {
			errText = o.Err.Error()
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", o.Target.Qualified(), o.Status, o.Matches,
			o.Elapsed.Round(time.Millisecond), errText)
	}
	w.Flush()
	fmt.Fprintf(c.App.ErrWriter, "%d succeeded, %d failed, %d matches\n\n",
		summary.Succeeded, summary.Failed, summary.Matches)
}

func serveCommand(c *cli.Context) error {
	scanner, err := openScanner(c)
	if err != nil {
		return err
	}
	defer scanner.Close()

	api, err := httpapi.NewServer(scanner, scanner, scanner.Targets(),
		httpapi.WithMetrics(scanner.Metrics()),
	)
	if err != nil {
		return err
	}

	addr := c.String("addr")
	if addr == "" {
		addr = scanner.Config().HTTP.Addr
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting HTTP server", "addr", addr, "targets", scanner.Targets().Len())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case <-ctx.Done():
	}

	slog.Info("received shutdown signal")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), c.Duration("shutdown-timeout"))
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("error during shutdown", "err", err)
		return err
	}
	slog.Info("server stopped gracefully")
	return nil
}

func mcpCommand(c *cli.Context) error {
	scanner, err := openScanner(c)
	if err != nil {
		return err
	}
	defer scanner.Close()

	srv, err := tool.NewMCPServer(scanner.Tools(), version, slog.Default())
	if err != nil {
		return err
	}
	slog.Info("serving MCP on stdio", "tools", scanner.Tools().Names())
	return server.ServeStdio(srv)
}

// targetsCommand validates the configuration without contacting any source.
func targetsCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	enc := yaml.NewEncoder(c.App.Writer)
	enc.SetIndent(2)
	if err := enc.Encode(struct {
		Sources []config.SourceConfig `yaml:"sources"`
		Targets []config.TargetConfig `yaml:"targets"`
	}{cfg.Sources, cfg.Targets}); err != nil {
		return err
	}
	return enc.Close()
}

func agentCommand(c *cli.Context) error {
	name, err := nameArg(c)
	if err != nil {
		return err
	}

	aiConfig := ai.NewConfig(
		ai.WithHost(c.String("host")),
		ai.WithModel(c.String("model")),
		ai.WithToken(c.String("token")),
		ai.WithMaxSteps(c.Int("max-steps")),
	)
	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	scanner, err := openScanner(c)
	if err != nil {
		return err
	}
	defer scanner.Close()

	agent, err := openai.NewAgent(aiConfig, scanner.Tools())
	if err != nil {
		return fmt.Errorf("failed to create agent: %w", err)
	}

	fmt.Fprintf(c.App.ErrWriter, "Model: %s (%s)\n", aiConfig.Model, aiConfig.Host)
	fmt.Fprintf(c.App.ErrWriter, "Max steps: %d\n\n", aiConfig.MaxSteps)

	answer, err := agent.Run(c.Context, ai.FindNameRequest(name))
	if err != nil {
		return fmt.Errorf("agent failed: %w", err)
	}
	fmt.Fprintf(c.App.ErrWriter, "%s\n\n", answer.Output)
	return writeJSON(c, answer.Records)
}

func processCommand(c *cli.Context) error {
	decision := &core.Decision{
		SourceRecordID: c.String("id"),
		Name:           c.String("name"),
		Source:         c.String("source"),
		Probability:    c.Float64("probability"),
		Action:         core.Action(strings.ToLower(c.String("action"))),
	}
	if err := core.ValidateDecision(decision); err != nil {
		return err
	}

	scanner, err := openScanner(c)
	if err != nil {
		return err
	}
	defer scanner.Close()

	result, err := scanner.Process(c.Context, decision)
	if err != nil {
		return fmt.Errorf("processing failed: %w", err)
	}

	out := map[string]any{
		"audit_id":      result.Entry.ID,
		"entity_id":     result.Entry.Key,
		"action":        result.Entry.Action,
		"original_name": result.OriginalName,
	}
	if result.Entry.Action == core.ActionMask {
		out["processed_name"] = result.MaskedName
		out["encryption_key"] = result.EncryptionKey
	}
	return writeJSON(c, out)
}

func auditCommand(c *cli.Context) error {
	if c.Int("limit") < 0 {
		return fmt.Errorf("limit must not be negative")
	}
	scanner, err := openScanner(c)
	if err != nil {
		return err
	}
	defer scanner.Close()

	entries, err := scanner.Audit(c.Context, c.Int("limit"))
	if err != nil {
		return fmt.Errorf("failed to read audit log: %w", err)
	}

	w := tabwriter.NewWriter(c.App.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCREATED\tACTION\tKEY\tSOURCE\tPROBABILITY")
	for _, e := range entries {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%.2f\n", e.ID, e.CreatedAt.Format(time.RFC3339),
			e.Action, e.Key, e.Source, e.Probability)
	}
	return w.Flush()
}

func writeJSON(c *cli.Context, v any) error {
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Logs go to stderr so stdout stays clean for JSON output and MCP stdio.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
