package mturk

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awsmturk "github.com/aws/aws-sdk-go-v2/service/mturk"

	"github.com/kbukum/gonogo/resilience"
)

// API is the subset of the Mechanical Turk client the compensator uses.
// *awsmturk.Client satisfies it.
type API interface {
	GetAssignment(ctx context.Context, in *awsmturk.GetAssignmentInput, optFns ...func(*awsmturk.Options)) (*awsmturk.GetAssignmentOutput, error)
	ListBonusPayments(ctx context.Context, in *awsmturk.ListBonusPaymentsInput, optFns ...func(*awsmturk.Options)) (*awsmturk.ListBonusPaymentsOutput, error)
	ApproveAssignment(ctx context.Context, in *awsmturk.ApproveAssignmentInput, optFns ...func(*awsmturk.Options)) (*awsmturk.ApproveAssignmentOutput, error)
	SendBonus(ctx context.Context, in *awsmturk.SendBonusInput, optFns ...func(*awsmturk.Options)) (*awsmturk.SendBonusOutput, error)
}

var _ API = (*awsmturk.Client)(nil)

// NewClient builds a Mechanical Turk client for cfg.
func NewClient(ctx context.Context, cfg Config) (*awsmturk.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(Region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("mturk: load aws config: %w", err)
	}

	endpoint := cfg.ResolvedEndpoint()
	return awsmturk.NewFromConfig(awsCfg, func(o *awsmturk.Options) {
		o.BaseEndpoint = aws.String(endpoint)
	}), nil
}

// limitedAPI waits on a shared limiter before every call.
type limitedAPI struct {
	api API
	lim *resilience.Limiter
}

func (l *limitedAPI) GetAssignment(ctx context.Context, in *awsmturk.GetAssignmentInput, optFns ...func(*awsmturk.Options)) (*awsmturk.GetAssignmentOutput, error) {
	if err := l.lim.Wait(ctx); err != nil {
		return nil, err
	}
	return l.api.GetAssignment(ctx, in, optFns...)
}

func (l *limitedAPI) ListBonusPayments(ctx context.Context, in *awsmturk.ListBonusPaymentsInput, optFns ...func(*awsmturk.Options)) (*awsmturk.ListBonusPaymentsOutput, error) {
	if err := l.lim.Wait(ctx); err != nil {
		return nil, err
	}
	return l.api.ListBonusPayments(ctx, in, optFns...)
}

func (l *limitedAPI) ApproveAssignment(ctx context.Context, in *awsmturk.ApproveAssignmentInput, optFns ...func(*awsmturk.Options)) (*awsmturk.ApproveAssignmentOutput, error) {
	if err := l.lim.Wait(ctx); err != nil {
		return nil, err
	}
	return l.api.ApproveAssignment(ctx, in, optFns...)
}

func (l *limitedAPI) SendBonus(ctx context.Context, in *awsmturk.SendBonusInput, optFns ...func(*awsmturk.Options)) (*awsmturk.SendBonusOutput, error) {
	if err := l.lim.Wait(ctx); err != nil {
		return nil, err
	}
	return l.api.SendBonus(ctx, in, optFns...)
}
