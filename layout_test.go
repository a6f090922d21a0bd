package namescan

import (
	"go/parser"
	"go/token"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSourceFilesDeclareOnePackagePerDirectory checks that every file parses
// and that each directory holds one package, ignoring the _test suffix of
// external test packages.
func TestSourceFilesDeclareOnePackagePerDirectory(t *testing.T) {
	packages := map[string]map[string][]string{}
	fset := token.NewFileSet()

	err := filepath.WalkDir(".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != "." && (strings.HasPrefix(d.Name(), "_") || strings.HasPrefix(d.Name(), ".") || d.Name() == "testdata") {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".go" {
			return nil
		}

		// A second package clause anywhere in the file is a syntax error.
		f, err := parser.ParseFile(fset, path, nil, parser.SkipObjectResolution)
		if !assert.NoError(t, err, path) {
			return nil
		}
		name := strings.TrimSuffix(f.Name.Name, "_test")
		dir := filepath.Dir(path)
		if packages[dir] == nil {
			packages[dir] = map[string][]string{}
		}
		packages[dir][name] = append(packages[dir][name], filepath.Base(path))
		return nil
	})
	require.NoError(t, err)
	require.NotEmpty(t, packages)

	for dir, names := range packages {
		assert.Len(t, names, 1, "%s declares packages %v", dir, names)
	}
	assert.Contains(t, packages, filepath.Join("cmd", "namescan"))
	assert.Contains(t, packages, filepath.Join("ai", "openai"))
}
