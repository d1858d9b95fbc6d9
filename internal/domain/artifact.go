package domain

import "context"

// Artifact is a packaged deployable bundle for one target.
type Artifact struct {
	Target TargetID
	Bytes  []byte
}

// DependencyResolver prepares a disposable staging directory holding a
// target's sources with dependencies resolved into it. The caller owns
// the returned directory and removes it when done. Resolution failure is
// fatal to the owning job only.
type DependencyResolver interface {
	Resolve(ctx context.Context, target Target) (stagingDir string, err error)
}

// ArtifactPackager builds the deployable archive from a staged source
// directory, omitting every path matching the target's exclusion
// patterns.
type ArtifactPackager interface {
	Package(ctx context.Context, target Target, stagingDir string) (Artifact, error)
}

// FunctionDeployer is the port to the external function platform's
// "update function code" operation. The call's success or failure is the
// job's terminal outcome; there is no retry and no rollback.
type FunctionDeployer interface {
	UpdateFunctionCode(ctx context.Context, target Target, artifact []byte) error
}
