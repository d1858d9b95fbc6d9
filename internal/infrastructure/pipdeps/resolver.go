// Package pipdeps implements [domain.DependencyResolver] for Python
// function targets: sources are copied into a fresh staging directory
// and pip installs the target's requirements next to them, the layout
// the function runtime expects inside the artifact.
package pipdeps

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/randallong/irentstuff-transactions/internal/domain"
)

const requirementsFile = "requirements.txt"

// Resolver implements [domain.DependencyResolver] by shelling out to pip.
type Resolver struct {
	// Pip is the pip executable. Empty means "pip3".
	Pip string
}

func (r *Resolver) pip() string {
	if r.Pip != "" {
		return r.Pip
	}
	return "pip3"
}

// Resolve stages the target's sources and installs its requirements into
// the staging directory. The caller owns the returned directory. A
// target without a requirements file stages sources only.
func (r *Resolver) Resolve(ctx context.Context, target domain.Target) (string, error) {
	staging, err := os.MkdirTemp("", "deploy-"+string(target.ID)+"-*")
	if err != nil {
		return "", fmt.Errorf("create staging dir: %w", err)
	}

	if err := copyTree(target.Source, staging); err != nil {
		os.RemoveAll(staging)
		return "", fmt.Errorf("stage sources for %s: %w", target.ID, err)
	}

	if _, err := os.Stat(filepath.Join(staging, requirementsFile)); err != nil {
		if os.IsNotExist(err) {
			return staging, nil
		}
		os.RemoveAll(staging)
		return "", fmt.Errorf("stat %s: %w", requirementsFile, err)
	}

	cmd := exec.CommandContext(ctx, r.pip(), "install", "-r", requirementsFile, "-t", ".")
	cmd.Dir = staging
	if out, err := cmd.CombinedOutput(); err != nil {
		os.RemoveAll(staging)
		return "", fmt.Errorf("pip install for %s: %w: %s", target.ID, err, tail(out, 512))
	}

	return staging, nil
}

func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		out := filepath.Join(dst, rel)
		if d.IsDir() {
			if rel == "." {
				return nil
			}
			return os.MkdirAll(out, 0o755)
		}
		if !d.Type().IsRegular() {
			return nil
		}
		return copyFile(path, out)
	})
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func tail(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[len(b)-n:]
}
