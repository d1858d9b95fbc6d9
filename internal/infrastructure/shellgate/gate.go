// Package shellgate implements [domain.GateStage] by running a
// configured command: linters, unit tests, and static-analysis scanners
// are all external tools from the pipeline's point of view.
package shellgate

import (
	"context"
	"os/exec"
	"strings"

	"github.com/randallong/irentstuff-transactions/internal/domain"
)

const maxDetail = 2048

// Gate runs one configured command as a gate stage. A non-zero exit is
// a failed gate; so is a command that cannot start at all. The policy
// decides whether the failure halts the run.
type Gate struct {
	StageName string
	Argv      []string
	Dir       string
	Mode      domain.GatePolicy
}

func (g *Gate) Name() string              { return g.StageName }
func (g *Gate) Policy() domain.GatePolicy { return g.Mode }

func (g *Gate) Run(ctx context.Context) domain.GateResult {
	result := domain.GateResult{Gate: g.StageName, Policy: g.Mode}

	if len(g.Argv) == 0 {
		result.Status = domain.GateFailed
		result.Detail = "no command configured"
		return result
	}

	cmd := exec.CommandContext(ctx, g.Argv[0], g.Argv[1:]...)
	cmd.Dir = g.Dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		result.Status = domain.GateFailed
		result.Detail = detail(err, out)
		return result
	}

	result.Status = domain.GatePassed
	return result
}

func detail(err error, out []byte) string {
	text := strings.TrimSpace(string(out))
	if len(text) > maxDetail {
		text = text[len(text)-maxDetail:]
	}
	if text == "" {
		return err.Error()
	}
	return err.Error() + ": " + text
}
