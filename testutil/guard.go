// Package testutil holds helpers that enforce the repository's import
// boundaries from package-level tests.
package testutil

import (
	"go/parser"
	"go/token"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// AssertNoTransitiveDependency runs `go list -deps` for pattern and fails if
// any dependency path matches the forbidden predicate. The reason string is
// included in the failure message.
func AssertNoTransitiveDependency(t testing.TB, pattern string, forbidden func(path string) bool, reason string) {
	t.Helper()
	out, err := goListDeps(pattern)
	if err != nil {
		t.Fatalf("go list failed: %v\n%s", err, string(out))
	}
	var viols []string
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSpace(line)
		if line != "" && forbidden(line) {
			viols = append(viols, line)
		}
	}
	failWith(t, "forbidden transitive dependency", reason, viols)
}

// AssertNoDirectImports parses every non-test .go file in dir and fails if an
// import path matches the forbidden predicate. Build tags are not honored.
func AssertNoDirectImports(t testing.TB, dir string, forbidden func(importPath string) bool, reason string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	fset := token.NewFileSet()
	var viols []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}
		fileAst, err := parser.ParseFile(fset, filepath.Join(dir, name), nil, parser.ImportsOnly)
		if err != nil {
			t.Fatalf("parse %s: %v", name, err)
		}
		for _, imp := range fileAst.Imports {
			ip := strings.Trim(imp.Path.Value, "\"")
			if forbidden(ip) {
				viols = append(viols, ip+" (in "+name+")")
			}
		}
	}
	failWith(t, "forbidden direct imports", reason, viols)
}

// NonStdlibImportForbidden matches any import outside the standard library.
// Module paths carry a dot in their first element; stdlib paths never do.
func NonStdlibImportForbidden(path string) bool {
	first := path
	if i := strings.IndexByte(path, '/'); i >= 0 {
		first = path[:i]
	}
	return strings.Contains(first, ".")
}

// PersistenceDriverImportForbidden matches the sqlite and postgres driver
// packages. Everything outside the storage layer reaches them through
// domain.PersistentStore instead.
func PersistenceDriverImportForbidden(path string) bool {
	return strings.Contains(path, "/internal/infra/persistence/sqlite") ||
		strings.Contains(path, "/internal/infra/persistence/postgres")
}

var goListDeps = func(pattern string) ([]byte, error) {
	cmd := exec.Command("go", "list", "-deps", pattern)
	return cmd.CombinedOutput()
}

type fatalLogger interface {
	Fatalf(format string, args ...any)
}

func failWith(t fatalLogger, kind, reason string, viols []string) {
	if len(viols) > 0 {
		t.Fatalf("%s detected (%s):\n%s", kind, reason, strings.Join(viols, "\n"))
	}
}
