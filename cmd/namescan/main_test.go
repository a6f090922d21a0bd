package main

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/namescan/core"
	"github.com/poiesic/namescan/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

// writeConfig seeds one SQLite source and returns the path of a config file
// pointing at it.
func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	db := filepath.Join(dir, "crm.db")
	require.NoError(t, source.SeedSQLite(db, "customers", "full_name", "Paula Erickson", "José Álvarez"))

	cfg := fmt.Sprintf(`version: 1
sources:
  - id: crm
    driver: sqlite
    path: %s
targets:
  - {source: crm, table: customers, column: full_name}
audit:
  backend: badger
  path: %s
`, db, filepath.Join(dir, "audit"))
	path := filepath.Join(dir, "namescan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	app := newApp()
	var out bytes.Buffer
	app.Writer = &out
	app.ErrWriter = &bytes.Buffer{}
	err := app.Run(append([]string{"namescan", "--env-file", filepath.Join(t.TempDir(), "none.env")}, args...))
	return out.String(), err
}

func findFlag[T cli.Flag](t *testing.T, flags []cli.Flag, name string) T {
	t.Helper()
	for _, flag := range flags {
		if f, ok := flag.(T); ok && flag.Names()[0] == name {
			return f
		}
	}
	t.Fatalf("flag %q not found", name)
	var zero T
	return zero
}

func findCommand(t *testing.T, app *cli.App, name string) *cli.Command {
	t.Helper()
	for _, cmd := range app.Commands {
		if cmd.Name == name {
			return cmd
		}
	}
	t.Fatalf("command %q not found", name)
	return nil
}

func TestCommands(t *testing.T) {
	app := newApp()
	for _, name := range []string{"search", "serve", "mcp", "targets", "agent", "process", "audit"} {
		assert.NotNil(t, findCommand(t, app, name))
	}
}

func TestAgentCommandFlags(t *testing.T) {
	cmd := findCommand(t, newApp(), "agent")

	t.Run("model is required", func(t *testing.T) {
		_, err := run(t, "--config", writeConfig(t), "agent", "Paula")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "model")
	})

	t.Run("host has default value", func(t *testing.T) {
		host := findFlag[*cli.StringFlag](t, cmd.Flags, "host")
		assert.Equal(t, "http://localhost:11434/v1", host.Value)
	})

	t.Run("token reads OPENAI_API_KEY", func(t *testing.T) {
		token := findFlag[*cli.StringFlag](t, cmd.Flags, "token")
		assert.Equal(t, []string{"OPENAI_API_KEY"}, token.EnvVars)
	})

	t.Run("max-steps defaults to 3", func(t *testing.T) {
		steps := findFlag[*cli.IntFlag](t, cmd.Flags, "max-steps")
		assert.Equal(t, 3, steps.Value)
	})
}

func TestProcessCommandFlags(t *testing.T) {
	cmd := findCommand(t, newApp(), "process")
	for _, name := range []string{"name", "source", "action"} {
		assert.True(t, findFlag[*cli.StringFlag](t, cmd.Flags, name).Required, name)
	}
	assert.False(t, findFlag[*cli.StringFlag](t, cmd.Flags, "id").Required)
	assert.Equal(t, 0.95, findFlag[*cli.Float64Flag](t, cmd.Flags, "probability").Value)
}

func TestSearchCommand(t *testing.T) {
	cfg := writeConfig(t)

	out, err := run(t, "--config", cfg, "search", "jose", "alvarez")
	require.NoError(t, err)

	var records []core.AggregatedRecord
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "José Álvarez", records[0].Name)
	assert.Equal(t, "crm_customers_full_name", records[0].Key)
	assert.Equal(t, "crm.main.customers", records[0].Source)

	out, err = run(t, "--config", cfg, "search", "--detail", "nobody")
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, out)

	_, err = run(t, "--config", cfg, "search")
	assert.Error(t, err)
}

func TestSearchCommand_MissingConfig(t *testing.T) {
	_, err := run(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "search", "Paula")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load configuration")
}

func TestTargetsCommand(t *testing.T) {
	out, err := run(t, "--config", writeConfig(t), "targets")
	require.NoError(t, err)

	var doc struct {
		Sources []map[string]any `yaml:"sources"`
		Targets []map[string]any `yaml:"targets"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
	require.Len(t, doc.Targets, 1)
	assert.Equal(t, "main", doc.Targets[0]["schema"])
	assert.Equal(t, "full_name", doc.Targets[0]["column"])
	require.Len(t, doc.Sources, 1)
	assert.NotContains(t, doc.Sources[0], "password")
}

func TestProcessAndAuditCommands(t *testing.T) {
	cfg := writeConfig(t)

	out, err := run(t, "--config", cfg, "process",
		"--id", "crm_customers_full_name", "--name", "Paula Erickson",
		"--source", "crm.main.customers", "--action", "MASK")
	require.NoError(t, err)

	var result map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, "mask", result["action"])
	assert.NotEmpty(t, result["encryption_key"])

	_, err = run(t, "--config", cfg, "process", "--name", "Paula", "--source", "crm", "--action", "shred")
	assert.ErrorIs(t, err, core.ErrInvalidAction)

	out, err = run(t, "--config", cfg, "audit", "--limit", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "crm_customers_full_name")
	assert.Contains(t, out, "mask")
}

func TestSetupLogger(t *testing.T) {
	defer slog.SetDefault(slog.Default())

	tests := []struct {
		level   string
		wantErr bool
	}{
		{"debug", false},
		{"INFO", false},
		{"warn", false},
		{"error", false},
		{"verbose", true},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			app := &cli.App{
				Flags:  []cli.Flag{&cli.StringFlag{Name: "log-level", Value: "info"}},
				Before: setupLogger,
				Action: func(*cli.Context) error { return nil },
			}
			err := app.Run([]string{"test", "--log-level", tt.level})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}
