package main

import (
	"bufio"
	"flag"
	"fmt"
	"iter"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/poiesic/namescan/config"
	"github.com/poiesic/namescan/source"
	"gopkg.in/yaml.v3"
)

// names mixes plain, accented and upper-cased spellings so case and accent
// folding can be tried against the demo sources.
var names = []string{
	"Paula Erickson",
	"ÉRICKSON, PAULA",
	"paula erickson",
	"José Álvarez",
	"JOSE ALVAREZ",
	"Zoë Müller",
	"Zoe Mueller",
	"François Lefèvre",
	"Björn Åkesson",
	"Søren Kierkegaard",
	"Ana María Núñez",
	"Łukasz Żółć",
	"Chloé Dubois",
	"Jonas Berg",
	"Mara Lind",
	"Renée O'Connor",
	"Nikolaj Østergaard",
	"Inès Fontaine",
	"Matthias Groß",
	"Erik Eriksson",
}

// demoTarget is one table of a demo source.
type demoTarget struct {
	source string
	table  string
	column string
}

var demoTargets = []demoTarget{
	{"ORACLE_EBS", "AR_HZ_PARTIES", "PARTY_NAME"},
	{"ECC60", "KNA1", "NAME1"},
	{"ECC60", "ADRC", "NAME1"},
	{"ECC60", "ADRP", "NAME_TEXT"},
}

var (
	dir           = flag.String("dir", "./demo", "directory for the demo databases and config")
	namesFileName = flag.String("src", "", "file of names, one per line")
	batchSize     = flag.Int("batch", 5, "names per insert transaction")
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

// linesFromFile returns an iterator over lines in a file.
func linesFromFile(filename string) (iter.Seq[string], error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	return func(yield func(string) bool) {
		defer f.Close()
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			if !yield(scanner.Text()) {
				return
			}
		}
	}, nil
}

// linesFromSlice returns an iterator over a slice of strings.
func linesFromSlice(lines []string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, line := range lines {
			if !yield(line) {
				return
			}
		}
	}
}

// seedBatched spreads names round-robin over the demo targets, inserting
// them in batches.
func seedBatched(paths map[string]string, src iter.Seq[string], batchSize int) (int, error) {
	batches := make([][]string, len(demoTargets))
	flush := func(i int) error {
		if len(batches[i]) == 0 {
			return nil
		}
		t := demoTargets[i]
		if err := source.SeedSQLite(paths[t.source], t.table, t.column, batches[i]...); err != nil {
			return fmt.Errorf("seed %s.%s: %w", t.source, t.table, err)
		}
		batches[i] = batches[i][:0]
		return nil
	}

	count := 0
	for name := range src {
		if name == "" {
			continue
		}
		i := count % len(demoTargets)
		batches[i] = append(batches[i], name)
		count++
		if len(batches[i]) == batchSize {
			if err := flush(i); err != nil {
				return count, err
			}
		}
	}

	// Process any remaining names
	for i := range batches {
		if err := flush(i); err != nil {
			return count, err
		}
	}
	return count, nil
}

// demoConfig describes the seeded sources in the configuration file format.
func demoConfig(paths map[string]string, auditPath string) any {
	cfg := struct {
		Version int                   `yaml:"version"`
		Sources []config.SourceConfig `yaml:"sources"`
		Targets []config.TargetConfig `yaml:"targets"`
		Audit   config.AuditConfig    `yaml:"audit"`
	}{
		Version: config.CurrentVersion,
		Audit:   config.AuditConfig{Backend: config.AuditBadger, Path: auditPath},
	}
	for _, id := range []string{"ORACLE_EBS", "ECC60"} {
		cfg.Sources = append(cfg.Sources, config.SourceConfig{ID: id, Driver: config.DriverSQLite, Path: paths[id]})
	}
	for _, t := range demoTargets {
		cfg.Targets = append(cfg.Targets, config.TargetConfig{Source: t.source, Schema: "main", Table: t.table, Column: t.column})
	}
	return cfg
}

func main() {
	if *batchSize < 1 {
		slog.Error("batch must be at least 1")
		os.Exit(1)
	}
	if err := os.MkdirAll(*dir, 0o755); err != nil {
		panic(err)
	}
	abs, err := filepath.Abs(*dir)
	if err != nil {
		panic(err)
	}

	paths := map[string]string{}
	for _, t := range demoTargets {
		paths[t.source] = filepath.Join(abs, t.source+".db")
	}

	// Determine source of seed data
	var src iter.Seq[string]
	if *namesFileName != "" {
		src, err = linesFromFile(*namesFileName)
		if err != nil {
			panic(err)
		}
	} else {
		src = linesFromSlice(names)
	}

	count, err := seedBatched(paths, src, *batchSize)
	if err != nil {
		panic(err)
	}

	out, err := yaml.Marshal(demoConfig(paths, filepath.Join(abs, "audit_db")))
	if err != nil {
		panic(err)
	}
	cfgPath := filepath.Join(abs, "namescan.yaml")
	if err := os.WriteFile(cfgPath, out, 0o644); err != nil {
		panic(err)
	}

	slog.Info("seeded demo sources", "names", count, "targets", len(demoTargets), "config", cfgPath)
}
