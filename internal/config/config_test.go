package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/randallong/irentstuff-transactions/internal/config"
	"github.com/randallong/irentstuff-transactions/internal/domain"
)

const pipelineYAML = `
gates:
  - name: lint
    command: ["pylint", "src"]
  - name: test
    command: ["pytest", "tests"]
  - name: scan
    command: ["bandit", "-r", "src"]
    policy: advisory
targets:
  - id: irentstuff_authenticate_user
    source: src/auth
    function:
      name: irentstuff-authenticate-user
      runtime: python3.12
      handler: app.handler
      memory_mb: 256
      timeout_seconds: 30
  - id: irentstuff_purchase_add
    group: purchase
    source: src/purchase/add
    exclude:
      - pymysql/**
      - "*.dist-info/**"
  - id: irentstuff_rentals_get
    group: rental
    source: src/rental/get
`

func TestParse(t *testing.T) {
	p, err := config.Parse([]byte(pipelineYAML))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if len(p.Gates) != 3 {
		t.Fatalf("Gates = %d, want 3", len(p.Gates))
	}
	if p.Gates[0].Mode() != domain.GateBlocking {
		t.Errorf("lint policy = %q, want blocking by default", p.Gates[0].Mode())
	}
	if p.Gates[2].Mode() != domain.GateAdvisory {
		t.Errorf("scan policy = %q, want advisory", p.Gates[2].Mode())
	}

	if p.Targets.Len() != 3 {
		t.Fatalf("Targets = %d, want 3", p.Targets.Len())
	}

	auth, err := p.Targets.Get("irentstuff_authenticate_user")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if auth.Group != domain.GroupNone {
		t.Errorf("auth Group = %q, want none", auth.Group)
	}
	if auth.FunctionName() != "irentstuff-authenticate-user" {
		t.Errorf("FunctionName = %q", auth.FunctionName())
	}
	if auth.Function.Runtime != "python3.12" || auth.Function.MemoryMB != 256 {
		t.Errorf("Function = %+v", auth.Function)
	}

	purchase, err := p.Targets.Get("irentstuff_purchase_add")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(purchase.Exclusions) != 2 || purchase.Exclusions[0] != "pymysql/**" {
		t.Errorf("Exclusions = %v", purchase.Exclusions)
	}

	rentals, err := p.Targets.Get("irentstuff_rentals_get")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rentals.Group != domain.GroupRental {
		t.Errorf("rentals_get Group = %q, want rental", rentals.Group)
	}
}

func TestParse_UnknownGroup(t *testing.T) {
	_, err := config.Parse([]byte(`
targets:
  - id: t1
    group: billing
    source: src/t1
`))
	if !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("err = %v, want ErrInvalidArgument", err)
	}
}

func TestParse_UnknownGatePolicy(t *testing.T) {
	_, err := config.Parse([]byte(`
gates:
  - name: lint
    command: ["true"]
    policy: optional
`))
	if !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("err = %v, want ErrInvalidArgument", err)
	}
}

func TestParse_DuplicateTargetID(t *testing.T) {
	_, err := config.Parse([]byte(`
targets:
  - id: t1
    source: src/a
  - id: t1
    source: src/b
`))
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Errorf("err = %v, want ErrAlreadyExists", err)
	}
}

func TestLoad_ResolvesRelativePaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pipeline.yaml")
	if err := os.WriteFile(path, []byte(pipelineYAML), 0o644); err != nil {
		t.Fatalf("write pipeline file: %v", err)
	}

	p, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	auth, err := p.Targets.Get("irentstuff_authenticate_user")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	want := filepath.Join(dir, "src", "auth")
	if auth.Source != want {
		t.Errorf("Source = %q, want %q", auth.Source, want)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatal("Load must fail for a missing file")
	}
}
