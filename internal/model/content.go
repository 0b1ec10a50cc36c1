package model

import (
	"github.com/shopspring/decimal"

	"github.com/fairyhunter13/campaign-economics/internal/amount"
)

// ContentType is the media kind of a content item.
type ContentType string

const (
	ContentTypeLink  ContentType = "link"
	ContentTypeImage ContentType = "image"
	ContentTypeVideo ContentType = "video"
	ContentTypeText  ContentType = "text"
)

// Valid reports whether t is a known content type.
func (t ContentType) Valid() bool {
	switch t {
	case ContentTypeLink, ContentTypeImage, ContentTypeVideo, ContentTypeText:
		return true
	}
	return false
}

// ContentItem is a piece of promotable content attached to a campaign.
type ContentItem struct {
	ID         string        `json:"id"`
	CampaignID string        `json:"campaign_id"`
	Type       ContentType   `json:"type"`
	Title      string        `json:"title"`
	URL        string        `json:"url,omitempty"`
	Budget     amount.Money  `json:"budget"`
	Spent      amount.Money  `json:"spent"`
	Status     ContentStatus `json:"status"`
}

// ContentItemDraft is the submitted definition of a content item.
type ContentItemDraft struct {
	Type   ContentType     `json:"type"`
	Title  string          `json:"title"`
	URL    string          `json:"url"`
	Budget decimal.Decimal `json:"budget"`
}
