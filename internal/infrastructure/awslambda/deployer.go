// Package awslambda implements [domain.FunctionDeployer] against the
// AWS Lambda UpdateFunctionCode API.
package awslambda

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/lambda"

	"github.com/randallong/irentstuff-transactions/internal/domain"
)

// CodeUpdater is the subset of the Lambda API the deployer uses.
type CodeUpdater interface {
	UpdateFunctionCode(ctx context.Context, params *lambda.UpdateFunctionCodeInput, optFns ...func(*lambda.Options)) (*lambda.UpdateFunctionCodeOutput, error)
}

// Deployer pushes zip artifacts to Lambda. One update call per target;
// the call's outcome is terminal, with no retry and no rollback.
type Deployer struct {
	Client CodeUpdater
}

// New builds a Deployer from the ambient AWS credential chain.
func New(ctx context.Context, region string) (*Deployer, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return &Deployer{Client: lambda.NewFromConfig(cfg)}, nil
}

func (d *Deployer) UpdateFunctionCode(ctx context.Context, target domain.Target, artifact []byte) error {
	_, err := d.Client.UpdateFunctionCode(ctx, &lambda.UpdateFunctionCodeInput{
		FunctionName: aws.String(target.FunctionName()),
		ZipFile:      artifact,
	})
	if err != nil {
		return fmt.Errorf("update function code for %s: %w", target.FunctionName(), err)
	}
	return nil
}
