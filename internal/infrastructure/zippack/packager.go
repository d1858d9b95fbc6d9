// Package zippack builds zip deployment artifacts from staged sources,
// filtering out paths matched by dockerignore-style exclusion patterns.
// The function platform only accepts zip bundles, and shared third-party
// libraries ship separately as layers, so each artifact carries nothing
// but the function's own code.
package zippack

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/moby/patternmatcher"

	"github.com/randallong/irentstuff-transactions/internal/domain"
)

// Packager implements [domain.ArtifactPackager] with in-memory zip
// archives. Entries are written in lexical walk order, so the same
// staging tree always produces the same archive layout.
type Packager struct{}

func (p *Packager) Package(ctx context.Context, target domain.Target, stagingDir string) (domain.Artifact, error) {
	matcher, err := patternmatcher.New(target.Exclusions)
	if err != nil {
		return domain.Artifact{}, fmt.Errorf("parse exclusion patterns for %s: %w", target.ID, err)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	err = filepath.WalkDir(stagingDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == stagingDir {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(stagingDir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		excluded, err := matcher.MatchesOrParentMatches(rel)
		if err != nil {
			return fmt.Errorf("match %q: %w", rel, err)
		}
		if d.IsDir() {
			// A whole excluded directory can be skipped outright unless
			// a negated pattern could re-include something beneath it.
			if excluded && !matcher.Exclusions() {
				return filepath.SkipDir
			}
			return nil
		}
		if excluded || !d.Type().IsRegular() {
			return nil
		}

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		w, err := zw.Create(rel)
		if err != nil {
			return err
		}
		_, err = io.Copy(w, f)
		return err
	})
	if err != nil {
		zw.Close()
		return domain.Artifact{}, fmt.Errorf("package %s: %w", target.ID, err)
	}

	if err := zw.Close(); err != nil {
		return domain.Artifact{}, fmt.Errorf("finalize archive for %s: %w", target.ID, err)
	}

	return domain.Artifact{Target: target.ID, Bytes: buf.Bytes()}, nil
}
