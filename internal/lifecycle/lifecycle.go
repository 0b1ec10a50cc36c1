// Package lifecycle holds the status state machines for campaigns, drops and
// content items. Transitions are table driven and pure: callers evaluate
// time- and count-based facts before asking for a transition.
package lifecycle

import (
	"errors"
	"fmt"
	"slices"

	"github.com/fairyhunter13/campaign-economics/internal/model"
)

// ErrIllegalTransition matches every *IllegalTransitionError.
var ErrIllegalTransition = errors.New("illegal transition")

// IllegalTransitionError reports a transition missing from the allow-list.
type IllegalTransitionError struct {
	Entity string `json:"entity"`
	From   string `json:"from"`
	To     string `json:"to"`
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal %s transition from %s to %s", e.Entity, e.From, e.To)
}

// Is makes errors.Is(err, ErrIllegalTransition) true.
func (e *IllegalTransitionError) Is(target error) bool {
	return target == ErrIllegalTransition
}

type table[S ~string] map[S][]S

func (t table[S]) allows(from, to S) bool {
	return slices.Contains(t[from], to)
}

var campaignTransitions = table[model.CampaignStatus]{
	model.CampaignStatusDraft:  {model.CampaignStatusActive},
	model.CampaignStatusActive: {model.CampaignStatusPaused, model.CampaignStatusCompleted},
	model.CampaignStatusPaused: {model.CampaignStatusActive, model.CampaignStatusCompleted},
}

var dropTransitions = table[model.DropStatus]{
	model.DropStatusDraft:  {model.DropStatusActive},
	model.DropStatusActive: {model.DropStatusFilled, model.DropStatusExpired, model.DropStatusCancelled},
}

var contentTransitions = table[model.ContentStatus]{
	model.ContentStatusPending:  {model.ContentStatusApproved, model.ContentStatusRejected},
	model.ContentStatusApproved: {model.ContentStatusLive},
	model.ContentStatusLive:     {model.ContentStatusCompleted},
}

// CanTransitionCampaign reports whether from -> to is allowed.
func CanTransitionCampaign(from, to model.CampaignStatus) bool {
	return campaignTransitions.allows(from, to)
}

// CanTransitionDrop reports whether from -> to is allowed.
func CanTransitionDrop(from, to model.DropStatus) bool {
	return dropTransitions.allows(from, to)
}

// TransitionCampaign returns c in status to. On failure c is returned unchanged.
func TransitionCampaign(c model.Campaign, to model.CampaignStatus) (model.Campaign, error) {
	if !CanTransitionCampaign(c.Status, to) {
		return c, &IllegalTransitionError{Entity: "campaign", From: string(c.Status), To: string(to)}
	}
	c.Status = to
	return c, nil
}

// TransitionDrop returns d in status to. On failure d is returned unchanged.
func TransitionDrop(d model.Drop, to model.DropStatus) (model.Drop, error) {
	if !CanTransitionDrop(d.Status, to) {
		return d, &IllegalTransitionError{Entity: "drop", From: string(d.Status), To: string(to)}
	}
	d.Status = to
	return d, nil
}

// TransitionContent returns item in status to. On failure item is returned unchanged.
func TransitionContent(item model.ContentItem, to model.ContentStatus) (model.ContentItem, error) {
	if !contentTransitions.allows(item.Status, to) {
		return item, &IllegalTransitionError{Entity: "content_item", From: string(item.Status), To: string(to)}
	}
	item.Status = to
	return item, nil
}

// IsTerminalCampaign reports whether no transition leaves s.
func IsTerminalCampaign(s model.CampaignStatus) bool {
	return len(campaignTransitions[s]) == 0
}
