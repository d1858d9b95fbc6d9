package pipdeps_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/randallong/irentstuff-transactions/internal/domain"
	"github.com/randallong/irentstuff-transactions/internal/infrastructure/pipdeps"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestResolve_StagesSourcesWithoutRequirements(t *testing.T) {
	source := t.TempDir()
	writeFile(t, filepath.Join(source, "handler.py"), "def handler(): ...")
	writeFile(t, filepath.Join(source, "lib", "util.py"), "")

	resolver := &pipdeps.Resolver{}
	target := domain.Target{ID: "irentstuff_purchase_get", Source: source}

	staging, err := resolver.Resolve(context.Background(), target)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(staging) })

	if staging == source {
		t.Fatal("staging dir must not be the source dir")
	}
	for _, name := range []string{"handler.py", filepath.Join("lib", "util.py")} {
		if _, err := os.Stat(filepath.Join(staging, name)); err != nil {
			t.Errorf("staged file %s missing: %v", name, err)
		}
	}
}

func TestResolve_RunsPipWhenRequirementsPresent(t *testing.T) {
	source := t.TempDir()
	writeFile(t, filepath.Join(source, "handler.py"), "")
	writeFile(t, filepath.Join(source, "requirements.txt"), "pymysql")

	// "true" accepts any arguments and exits zero, standing in for pip.
	resolver := &pipdeps.Resolver{Pip: "true"}
	target := domain.Target{ID: "irentstuff_rental_add", Source: source}

	staging, err := resolver.Resolve(context.Background(), target)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	os.RemoveAll(staging)
}

func TestResolve_FailedInstallIsFatalToTheJob(t *testing.T) {
	source := t.TempDir()
	writeFile(t, filepath.Join(source, "requirements.txt"), "no-such-package")

	resolver := &pipdeps.Resolver{Pip: "false"}
	target := domain.Target{ID: "irentstuff_rental_user", Source: source}

	if _, err := resolver.Resolve(context.Background(), target); err == nil {
		t.Fatal("expected error from failing pip install")
	}
}

func TestResolve_MissingSourceDirFails(t *testing.T) {
	resolver := &pipdeps.Resolver{}
	target := domain.Target{ID: "t1", Source: filepath.Join(t.TempDir(), "missing")}

	if _, err := resolver.Resolve(context.Background(), target); err == nil {
		t.Fatal("expected error for missing source directory")
	}
}
