package economics

import (
	"fmt"
	"strings"

	"github.com/fairyhunter13/campaign-economics/internal/amount"
	"github.com/fairyhunter13/campaign-economics/internal/model"
)

// ComputeRequiredBudget returns the worst-case payout of drops if every
// participant slot fills, plus the PromoShare contribution. Publishing reserves
// exactly this amount.
func ComputeRequiredBudget(drops []model.Drop, promoshare amount.Gems) (amount.Gems, error) {
	total := promoshare
	for i, d := range drops {
		payout, err := d.GemRewardBase.Mul(int64(d.MaxParticipants))
		if err != nil {
			return amount.Gems{}, fmt.Errorf("drop %d payout: %w", i, err)
		}
		total, err = total.Add(payout)
		if err != nil {
			return amount.Gems{}, fmt.Errorf("required budget: %w", err)
		}
	}
	return total, nil
}

// BuildCampaign validates a campaign draft and its children and assembles a
// draft-status campaign with an empty USD budget. IDs are left for the caller.
func BuildCampaign(draft model.CampaignDraft, rules PolicyTable) (model.Campaign, Violations) {
	var vs Violations

	vs = checkTitle(vs, "name", draft.Name)
	if draft.StartDate.IsZero() {
		vs = vs.add("start_date", CodeMissingRequiredField, "start date is required")
	} else if draft.EndDate != nil && !draft.EndDate.After(draft.StartDate) {
		vs = vs.add("end_date", CodeInvalidDateRange, "end date must be after start date")
	}

	promoshare, err := amount.GemsFromDecimal(draft.PromoshareContribution)
	if err != nil {
		vs = vs.add("promoshare_contribution", CodeInvalidAmount,
			"promoshare contribution must be a non-negative amount with at most one decimal")
	}

	drops := make([]model.Drop, 0, len(draft.Drops))
	for i, dd := range draft.Drops {
		d, dvs := ValidateDrop(dd, rules)
		vs = append(vs, dvs.prefixed(fmt.Sprintf("drops[%d].", i))...)
		drops = append(drops, d)
	}

	coupons := make([]model.Coupon, 0, len(draft.Coupons))
	for i, cd := range draft.Coupons {
		c, cvs := BuildCoupon(cd)
		vs = append(vs, cvs.prefixed(fmt.Sprintf("coupons[%d].", i))...)
		coupons = append(coupons, c)
	}

	items := make([]model.ContentItem, 0, len(draft.ContentItems))
	for i, id := range draft.ContentItems {
		item, ivs := BuildContentItem(id)
		vs = append(vs, ivs.prefixed(fmt.Sprintf("content_items[%d].", i))...)
		items = append(items, item)
	}

	if len(vs) > 0 {
		return model.Campaign{}, vs
	}

	return model.Campaign{
		Name:                   strings.TrimSpace(draft.Name),
		Status:                 model.CampaignStatusDraft,
		TotalBudget:            amount.Zero(amount.CurrencyUSD),
		BudgetSpent:            amount.Zero(amount.CurrencyUSD),
		PromoshareContribution: promoshare,
		StartDate:              draft.StartDate,
		EndDate:                draft.EndDate,
		Drops:                  drops,
		ContentItems:           items,
		Coupons:                coupons,
	}, nil
}

// CanPublish reports everything that blocks c from going live: no drops,
// invalid drops, broken coupon or content invariants, and a gem-denominated
// budget below the required budget.
func CanPublish(c model.Campaign, rules PolicyTable, rate amount.Rate) Violations {
	var vs Violations

	if len(c.Drops) == 0 {
		vs = vs.add("drops", CodeNoDrops, "at least one drop is required to publish")
	}
	for i, d := range c.Drops {
		_, dvs := ValidateDrop(d.Draft(), rules)
		vs = append(vs, dvs.prefixed(fmt.Sprintf("drops[%d].", i))...)
	}
	for i, cp := range c.Coupons {
		vs = append(vs, checkCoupon(cp).prefixed(fmt.Sprintf("coupons[%d].", i))...)
	}
	for i, item := range c.ContentItems {
		vs = append(vs, checkContentItem(item).prefixed(fmt.Sprintf("content_items[%d].", i))...)
	}

	required, err := ComputeRequiredBudget(c.Drops, c.PromoshareContribution)
	if err != nil {
		return vs.add("drops", CodeInvalidAmount, "required budget overflows")
	}
	if available := rate.GemsFor(c.TotalBudget); available.LessThan(required) {
		vs = vs.add("total_budget", CodeInsufficientBudget,
			"budget covers %s gems, campaign requires %s gems", available, required)
	}
	return vs
}

// BuildContentItem validates a content item draft. Items start pending.
func BuildContentItem(draft model.ContentItemDraft) (model.ContentItem, Violations) {
	var vs Violations

	switch {
	case draft.Type == "":
		vs = vs.add("type", CodeMissingRequiredField, "content type is required")
	case !draft.Type.Valid():
		vs = vs.add("type", CodeInvalidContentType, "content type must be link, image, video or text")
	}
	vs = checkTitle(vs, "title", draft.Title)
	if draft.Type == model.ContentTypeLink && isBlank(draft.URL) {
		vs = vs.add("url", CodeMissingRequiredField, "url is required for link content")
	}
	budget, err := amount.MoneyFromDecimal(draft.Budget, amount.CurrencyUSD)
	if err != nil {
		vs = vs.add("budget", CodeInvalidAmount, "budget must be a non-negative USD amount with at most two decimals")
	}

	if len(vs) > 0 {
		return model.ContentItem{}, vs
	}
	return model.ContentItem{
		Type:   draft.Type,
		Title:  strings.TrimSpace(draft.Title),
		URL:    strings.TrimSpace(draft.URL),
		Budget: budget,
		Spent:  amount.Zero(amount.CurrencyUSD),
		Status: model.ContentStatusPending,
	}, nil
}

func checkContentItem(item model.ContentItem) Violations {
	var vs Violations
	vs = checkTitle(vs, "title", item.Title)
	if !item.Type.Valid() {
		vs = vs.add("type", CodeInvalidContentType, "content type must be link, image, video or text")
	}
	if over, err := item.Budget.LessThan(item.Spent); err != nil || over {
		vs = vs.add("spent", CodeBudgetExceeded, "spent %s exceeds budget %s", item.Spent, item.Budget)
	}
	return vs
}
