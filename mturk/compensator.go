package mturk

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsmturk "github.com/aws/aws-sdk-go-v2/service/mturk"
	"github.com/aws/aws-sdk-go-v2/service/mturk/types"

	"github.com/kbukum/gonogo/logger"
	"github.com/kbukum/gonogo/resilience"
)

// Compensator approves assignments and grants bonuses.
type Compensator struct {
	api     API
	verbose int
	dryRun  bool
	repeat  bool
	log     *logger.Logger
}

// New returns a Compensator talking to the Mechanical Turk endpoint of cfg.
func New(ctx context.Context, cfg Config, log *logger.Logger) (*Compensator, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	client, err := NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewWithAPI(client, cfg, log), nil
}

// NewWithAPI returns a Compensator using api. Calls are paced at
// cfg.RateLimit per second; zero leaves them unpaced.
func NewWithAPI(api API, cfg Config, log *logger.Logger) *Compensator {
	if cfg.RateLimit > 0 {
		api = &limitedAPI{api: api, lim: resilience.NewLimiter(cfg.RateLimit, 0)}
	}
	return &Compensator{
		api:     api,
		verbose: cfg.Verbosity(),
		dryRun:  cfg.DryRun,
		repeat:  cfg.Repeat,
		log:     log.WithComponent("mturk"),
	}
}

// Status returns the assignment status: Submitted, Approved or Rejected.
func (c *Compensator) Status(ctx context.Context, assignmentID string) (string, error) {
	out, err := c.api.GetAssignment(ctx, &awsmturk.GetAssignmentInput{
		AssignmentId: aws.String(assignmentID),
	})
	if err != nil {
		return "", fmt.Errorf("get assignment %s: %w", assignmentID, err)
	}
	if out.Assignment == nil {
		return "", fmt.Errorf("get assignment %s: empty response", assignmentID)
	}
	return string(out.Assignment.AssignmentStatus), nil
}

// Bonus returns the total already bonused for an assignment. found is
// false when no bonus has been paid.
func (c *Compensator) Bonus(ctx context.Context, assignmentID string) (amount float64, found bool, err error) {
	out, err := c.api.ListBonusPayments(ctx, &awsmturk.ListBonusPaymentsInput{
		AssignmentId: aws.String(assignmentID),
	})
	if err != nil {
		return 0, false, fmt.Errorf("list bonus payments for %s: %w", assignmentID, err)
	}
	if len(out.BonusPayments) == 0 {
		return 0, false, nil
	}
	for _, p := range out.BonusPayments {
		v, err := strconv.ParseFloat(aws.ToString(p.BonusAmount), 64)
		if err != nil {
			return 0, true, fmt.Errorf("bonus amount %q for %s: %w", aws.ToString(p.BonusAmount), assignmentID, err)
		}
		amount += v
	}
	return amount, true, nil
}

// Approve approves an assignment. An assignment that is already approved
// counts as success.
func (c *Compensator) Approve(ctx context.Context, assignmentID string) error {
	if c.dryRun {
		c.action("Would approve assignment", logger.Fields("assignment_id", assignmentID))
		return nil
	}

	_, err := c.api.ApproveAssignment(ctx, &awsmturk.ApproveAssignmentInput{
		AssignmentId: aws.String(assignmentID),
	})
	if err == nil {
		c.action("Approved assignment", logger.Fields("assignment_id", assignmentID))
		return nil
	}

	if status, statusErr := c.Status(ctx, assignmentID); statusErr == nil && status == string(types.AssignmentStatusApproved) {
		c.action("Already approved", logger.Fields("assignment_id", assignmentID))
		return nil
	}
	c.failure("Error approving assignment", err, logger.Fields("assignment_id", assignmentID))
	return fmt.Errorf("approve %s: %w", assignmentID, err)
}

// GrantBonus pays amount USD to the worker for an assignment. Unless repeat
// is set, an assignment that was already bonused is skipped and skipped is
// true.
func (c *Compensator) GrantBonus(ctx context.Context, workerID, assignmentID string, amount float64, repeat bool) (skipped bool, err error) {
	if !(amount > 0) || math.IsInf(amount, 0) {
		return false, fmt.Errorf("bonus %s: amount %v is not a positive finite number", assignmentID, amount)
	}
	fields := logger.Fields("worker_id", workerID, "assignment_id", assignmentID, "bonus", FormatAmount(amount))

	if !repeat {
		_, found, err := c.Bonus(ctx, assignmentID)
		if err != nil {
			c.failure("Error checking previous bonuses", err, fields)
			return false, err
		}
		if found {
			c.action("Skipping previously bonused worker", fields)
			return true, nil
		}
	}

	if c.dryRun {
		c.action("Would bonus worker", fields)
		return false, nil
	}

	in := &awsmturk.SendBonusInput{
		WorkerId:     aws.String(workerID),
		AssignmentId: aws.String(assignmentID),
		BonusAmount:  aws.String(FormatAmount(amount)),
		Reason:       aws.String(BonusReason),
	}
	if !repeat {
		in.UniqueRequestToken = aws.String(BonusToken(assignmentID))
	}
	_, err = c.api.SendBonus(ctx, in)
	if err != nil {
		c.failure("Error assigning bonus", err, fields)
		return false, fmt.Errorf("bonus %s: %w", assignmentID, err)
	}
	c.action("Bonused worker", fields)
	return false, nil
}

// RoundCents rounds a dollar amount to whole cents.
func RoundCents(amount float64) float64 {
	return math.Round(amount*100) / 100
}

// FormatAmount renders a dollar amount as the API expects it: "1.50".
func FormatAmount(amount float64) string {
	return strconv.FormatFloat(RoundCents(amount), 'f', 2, 64)
}

// BonusToken is the idempotency token for an assignment's first bonus.
// Repeat bonuses are sent without one.
func BonusToken(assignmentID string) string {
	token := "bonus-" + assignmentID
	if len(token) > 64 {
		token = token[:64]
	}
	return token
}

func (c *Compensator) action(msg string, fields map[string]interface{}) {
	if c.verbose >= VerboseAll {
		c.log.Info(msg, fields)
	}
}

func (c *Compensator) failure(msg string, err error, fields map[string]interface{}) {
	if c.verbose >= VerboseErrors {
		c.log.WithError(err).Error(msg, fields)
	}
}
