package economics

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/fairyhunter13/campaign-economics/internal/amount"
	"github.com/fairyhunter13/campaign-economics/internal/lifecycle"
	"github.com/fairyhunter13/campaign-economics/internal/model"
)

// AddFunds returns c with its total budget increased by funds. It is the only
// way budget grows. Retries must be deduplicated by the caller; AddFunds itself
// cannot tell a retry from a second deposit.
func AddFunds(c model.Campaign, funds amount.Money) (model.Campaign, error) {
	if funds.IsZero() {
		return c, fmt.Errorf("%w: funds must be positive", amount.ErrInvalidAmount)
	}
	if lifecycle.IsTerminalCampaign(c.Status) {
		return c, ErrCampaignClosed
	}
	total, err := c.TotalBudget.Add(funds)
	if err != nil {
		return c, fmt.Errorf("add funds: %w", err)
	}
	c.TotalBudget = total
	return c, nil
}

// RecordSpend returns c with spend added to its spent budget, or an
// *InvariantError wrapping ErrBudgetExceeded if that would pass the total.
func RecordSpend(c model.Campaign, spend amount.Money) (model.Campaign, error) {
	if spend.IsZero() {
		return c, fmt.Errorf("%w: spend must be positive", amount.ErrInvalidAmount)
	}
	spent, err := c.BudgetSpent.Add(spend)
	if err != nil {
		return c, fmt.Errorf("record spend: %w", err)
	}
	over, err := c.TotalBudget.LessThan(spent)
	if err != nil {
		return c, fmt.Errorf("record spend: %w", err)
	}
	if over {
		return c, &InvariantError{
			Err:       ErrBudgetExceeded,
			Attempted: spend.String(),
			Available: Remaining(c).String(),
		}
	}
	c.BudgetSpent = spent
	return c, nil
}

// Remaining returns the unspent budget.
func Remaining(c model.Campaign) amount.Money {
	r, err := c.TotalBudget.Sub(c.BudgetSpent)
	if err != nil {
		return amount.Zero(c.TotalBudget.Currency())
	}
	return r
}

// Utilization returns spent/total as a percentage rounded to two places,
// and zero for an unfunded campaign.
func Utilization(c model.Campaign) decimal.Decimal {
	if c.TotalBudget.IsZero() {
		return decimal.Zero
	}
	return decimal.NewFromInt(c.BudgetSpent.Cents()).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(c.TotalBudget.Cents())).
		Round(2)
}

// RecordContentSpend returns item with spend charged against its own budget.
func RecordContentSpend(item model.ContentItem, spend amount.Money) (model.ContentItem, error) {
	if spend.IsZero() {
		return item, fmt.Errorf("%w: spend must be positive", amount.ErrInvalidAmount)
	}
	spent, err := item.Spent.Add(spend)
	if err != nil {
		return item, fmt.Errorf("record content spend: %w", err)
	}
	over, err := item.Budget.LessThan(spent)
	if err != nil {
		return item, fmt.Errorf("record content spend: %w", err)
	}
	if over {
		remaining, _ := item.Budget.Sub(item.Spent)
		return item, &InvariantError{
			Err:       ErrBudgetExceeded,
			Attempted: spend.String(),
			Available: remaining.String(),
		}
	}
	item.Spent = spent
	return item, nil
}
