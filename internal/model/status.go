package model

// CampaignStatus is the lifecycle state of a campaign.
type CampaignStatus string

const (
	CampaignStatusDraft     CampaignStatus = "draft"
	CampaignStatusActive    CampaignStatus = "active"
	CampaignStatusPaused    CampaignStatus = "paused"
	CampaignStatusCompleted CampaignStatus = "completed"
)

// DropStatus is the lifecycle state of a drop.
type DropStatus string

const (
	DropStatusDraft     DropStatus = "draft"
	DropStatusActive    DropStatus = "active"
	DropStatusFilled    DropStatus = "filled"
	DropStatusExpired   DropStatus = "expired"
	DropStatusCancelled DropStatus = "cancelled"
)

// ContentStatus is the review/publication state of a content item.
type ContentStatus string

const (
	ContentStatusPending   ContentStatus = "pending"
	ContentStatusApproved  ContentStatus = "approved"
	ContentStatusRejected  ContentStatus = "rejected"
	ContentStatusLive      ContentStatus = "live"
	ContentStatusCompleted ContentStatus = "completed"
)

// Valid reports whether s is a known campaign status.
func (s CampaignStatus) Valid() bool {
	switch s {
	case CampaignStatusDraft, CampaignStatusActive, CampaignStatusPaused, CampaignStatusCompleted:
		return true
	}
	return false
}

// Valid reports whether s is a known drop status.
func (s DropStatus) Valid() bool {
	switch s {
	case DropStatusDraft, DropStatusActive, DropStatusFilled, DropStatusExpired, DropStatusCancelled:
		return true
	}
	return false
}

// Valid reports whether s is a known content status.
func (s ContentStatus) Valid() bool {
	switch s {
	case ContentStatusPending, ContentStatusApproved, ContentStatusRejected, ContentStatusLive, ContentStatusCompleted:
		return true
	}
	return false
}
