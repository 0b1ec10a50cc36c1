package economics

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/fairyhunter13/campaign-economics/internal/amount"
	"github.com/fairyhunter13/campaign-economics/internal/model"
)

// ValidateDrop checks a drop draft against the policy table and returns the
// validated drop in draft status. Every rule runs; all violations are returned
// together, in rule order. ValidateDrop has no side effects.
func ValidateDrop(draft model.DropDraft, rules PolicyTable) (model.Drop, Violations) {
	var vs Violations

	vs = checkTitle(vs, "title", draft.Title)
	if isBlank(draft.Description) {
		vs = vs.add("description", CodeMissingRequiredField, "description is required")
	}

	policy, known := rules.Lookup(draft.DropType)
	switch {
	case draft.DropType == "":
		vs = vs.add("drop_type", CodeMissingRequiredField, "drop type is required")
	case !known:
		vs = vs.add("drop_type", CodeInvalidDropType, "unknown drop type %q", draft.DropType)
	}

	switch {
	case draft.Difficulty == "":
		vs = vs.add("difficulty", CodeMissingRequiredField, "difficulty is required")
	case !draft.Difficulty.Valid():
		vs = vs.add("difficulty", CodeInvalidDifficulty, "difficulty must be easy, medium or hard")
	}

	if known {
		if draft.RequiresProof != policy.RequiresProof {
			vs = vs.add("requires_proof", CodePolicyMismatch,
				"%s drops must have requires_proof=%t", draft.DropType, policy.RequiresProof)
		}
		if draft.IsPaidEntry != policy.IsPaidEntry {
			vs = vs.add("is_paid_entry", CodePolicyMismatch,
				"%s drops must have is_paid_entry=%t", draft.DropType, policy.IsPaidEntry)
		}
	}

	reward, err := amount.GemsFromDecimal(draft.GemRewardBase)
	if err != nil {
		vs = vs.add("gem_reward_base", CodeInvalidAmount, "gem reward must be a non-negative amount with at most one decimal")
	}
	pool, poolErr := amount.GemsFromDecimal(draft.GemPoolTotal)
	if poolErr != nil {
		vs = vs.add("gem_pool_total", CodeInvalidAmount, "gem pool must be a non-negative amount with at most one decimal")
	}

	poolRequired := draft.IsPaidEntry || (known && policy.GemPoolRequired)
	if poolErr == nil && poolRequired && pool.LessThan(rules.MinGemPool) {
		vs = vs.add("gem_pool_total", CodeGemPoolTooSmall,
			"gem pool must be at least %s gems, got %s", rules.MinGemPool, pool)
	}

	switch {
	case draft.MaxParticipants < 1:
		vs = vs.add("max_participants", CodeInvalidMaxParticipants, "max participants must be at least 1")
	case draft.MaxParticipants > MaxCount:
		vs = vs.add("max_participants", CodeInvalidMaxParticipants, "max participants must be at most %d", MaxCount)
	}

	switch {
	case draft.KeyCost < 0:
		vs = vs.add("key_cost", CodeInvalidKeyCost, "key cost cannot be negative")
	case draft.IsPaidEntry && draft.KeyCost < 1:
		vs = vs.add("key_cost", CodeInvalidKeyCost, "paid entry drops must cost at least 1 key")
	case !draft.IsPaidEntry && draft.KeyCost > 0:
		vs = vs.add("key_cost", CodeInvalidKeyCost, "only paid entry drops can charge keys")
	}

	switch {
	case draft.DeadlineDays < 1:
		vs = vs.add("deadline_days", CodeInvalidDeadline, "deadline must be at least 1 day")
	case draft.DeadlineDays > MaxDeadlineDays:
		vs = vs.add("deadline_days", CodeInvalidDeadline, "deadline must be at most %d days", MaxDeadlineDays)
	}
	switch {
	case draft.FollowerThreshold < 0:
		vs = vs.add("follower_threshold", CodeInvalidFollowerThreshold, "follower threshold cannot be negative")
	case draft.FollowerThreshold > MaxCount:
		vs = vs.add("follower_threshold", CodeInvalidFollowerThreshold, "follower threshold must be at most %d", MaxCount)
	}

	if len(vs) > 0 {
		return model.Drop{}, vs
	}

	keys, _ := amount.NewKeys(draft.KeyCost)
	return model.Drop{
		Title:             strings.TrimSpace(draft.Title),
		Description:       strings.TrimSpace(draft.Description),
		DropType:          draft.DropType,
		Difficulty:        draft.Difficulty,
		RequiresProof:     draft.RequiresProof,
		IsPaidEntry:       draft.IsPaidEntry,
		MaxParticipants:   draft.MaxParticipants,
		GemRewardBase:     reward,
		GemPoolTotal:      pool,
		GemPoolRemaining:  pool,
		KeyCost:           keys,
		FollowerThreshold: draft.FollowerThreshold,
		DeadlineDays:      draft.DeadlineDays,
		Status:            model.DropStatusDraft,
	}, nil
}

// Storage limits. Titles and names are VARCHAR(255); counts are INT columns.
// Deadlines become a TIMESTAMPTZ at publish, so they get a calendar bound.
const (
	MaxTitleLength  = 255
	MaxCount        = math.MaxInt32
	MaxDeadlineDays = 36500
)

// checkTitle requires a non-blank value of at most MaxTitleLength characters
// once trimmed.
func checkTitle(vs Violations, field, value string) Violations {
	switch {
	case isBlank(value):
		return vs.add(field, CodeMissingRequiredField, "%s is required", field)
	case utf8.RuneCountInString(strings.TrimSpace(value)) > MaxTitleLength:
		return vs.add(field, CodeFieldTooLong, "%s must be at most %d characters", field, MaxTitleLength)
	}
	return vs
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
