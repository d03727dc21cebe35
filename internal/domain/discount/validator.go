package discount

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Validator checks whether a discount code can be applied to an order of the
// given amount. Validation never mutates the discount; the usage counter is
// bumped only when a settlement actually commits.
type Validator interface {
	Validate(ctx context.Context, code string, orderAmount decimal.Decimal) (*Discount, error)
}

// Lookup is the read-side subset of Repository needed for validation.
type Lookup interface {
	FindByCode(ctx context.Context, code string) (*Discount, error)
}

// RepoValidator implements Validator by looking up discounts from a Lookup
// and applying the eligibility rules in order: existence, status, usage cap,
// minimum qualifying amount. The first failed rule wins.
type RepoValidator struct {
	repo Lookup
}

// NewRepoValidator creates a RepoValidator backed by the given Lookup.
func NewRepoValidator(repo Lookup) *RepoValidator {
	return &RepoValidator{repo: repo}
}

// Validate returns the discount record when the code is applicable, or a
// *RejectionError describing why it is not. The code match is case-sensitive.
func (v *RepoValidator) Validate(ctx context.Context, code string, orderAmount decimal.Decimal) (*Discount, error) {
	d, err := v.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, Reject(ReasonNotFound, "discount code does not exist")
		}
		return nil, errors.Wrap(err, "lookup discount")
	}

	if d.Status != StatusActive {
		return nil, Reject(ReasonInactive, "discount code is not active")
	}

	if d.MaxUsage != nil && d.UsageCount >= *d.MaxUsage {
		return nil, Reject(ReasonUsageExceeded, "discount code usage limit reached")
	}

	if d.MinAmount != nil && orderAmount.LessThan(*d.MinAmount) {
		return nil, Reject(ReasonBelowMinimum,
			"order amount is below the minimum of %s required by this code", d.MinAmount)
	}

	return d, nil
}
