package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNonStdlibImportForbiddenPredicate(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"fmt", false},
		{"net/http", false},
		{"example.com/mod/pkg", true},
		{"github.com/jackc/pgx/v5", true},
	}
	for _, c := range cases {
		if got := NonStdlibImportForbidden(c.in); got != c.want {
			t.Fatalf("NonStdlibImportForbidden(%q)=%v want %v", c.in, got, c.want)
		}
	}
}

func TestPersistenceDriverImportForbiddenPredicate(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"assetledger/internal/infra/persistence/sqlite", true},
		{"assetledger/internal/infra/persistence/postgres", true},
		{"assetledger/internal/infra/persistence/memory", false},
		{"assetledger/internal/core", false},
	}
	for _, c := range cases {
		if got := PersistenceDriverImportForbidden(c.in); got != c.want {
			t.Fatalf("PersistenceDriverImportForbidden(%q)=%v want %v", c.in, got, c.want)
		}
	}
}

func TestAssertNoDirectImportsCleanPackage(t *testing.T) {
	dir := t.TempDir()
	src := []byte("package tmp\nimport \"fmt\"\nfunc X(){fmt.Println(1)}")
	if err := os.WriteFile(filepath.Join(dir, "x.go"), src, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	AssertNoDirectImports(t, dir, func(string) bool { return false }, "none")
}

type fatalSpy struct {
	called bool
}

func (f *fatalSpy) Fatalf(format string, args ...any) { f.called = true }

func TestFailWithReportsViolations(t *testing.T) {
	spy := &fatalSpy{}
	failWith(spy, "forbidden direct imports", "test", []string{"example.com/dep (in x.go)"})
	if !spy.called {
		t.Fatal("expected violation to be fatal")
	}

	spy = &fatalSpy{}
	failWith(spy, "forbidden direct imports", "test", nil)
	if spy.called {
		t.Fatal("expected no failure without violations")
	}
}

func TestAssertNoTransitiveDependencyStubbed(t *testing.T) {
	orig := goListDeps
	goListDeps = func(string) ([]byte, error) {
		return []byte("fmt\nerrors\nassetledger/pkg/domain\n"), nil
	}
	defer func() { goListDeps = orig }()

	AssertNoTransitiveDependency(t, "./...", func(string) bool { return false }, "none")

	spy := &fatalSpy{}
	out, err := goListDeps("./...")
	if err != nil {
		t.Fatalf("stub: %v", err)
	}
	if len(out) == 0 {
		t.Fatal("stub returned no output")
	}
	failWith(spy, "forbidden transitive dependency", "test", []string{"assetledger/pkg/domain"})
	if !spy.called {
		t.Fatal("expected violation to be fatal")
	}
}
