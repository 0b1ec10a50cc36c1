package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/campaign-economics/internal/amount"
	"github.com/fairyhunter13/campaign-economics/internal/model"
	"github.com/fairyhunter13/campaign-economics/internal/validator"
)

const (
	testCampaignID = "6f1c2a8e-4b1d-4c3e-9a57-0d2f7e9b1a11"
	testDropID     = "0b8e5f2c-7d61-4a9f-8c3b-5e4a2d1f6c22"
	testCouponID   = "a3d9c1e7-2f45-4b68-9e0a-7c6b5d4e3f33"
	testContentID  = "e5f7a9b1-3c2d-4e6f-8a0b-1c2d3e4f5a44"
)

// mockCampaignService is a mock implementation of CampaignServiceInterface.
type mockCampaignService struct {
	validateDropFn   func(draft *model.DropDraft) (*model.Drop, error)
	createFn         func(ctx context.Context, draft *model.CampaignDraft) (*model.Campaign, error)
	getFn            func(ctx context.Context, id string) (*model.CampaignSummary, error)
	requiredBudgetFn func(ctx context.Context, id string) (*model.BudgetEstimate, error)
	addFundsFn       func(ctx context.Context, id string, funds amount.Money, key string) (*model.FundingResult, error)
	recordSpendFn    func(ctx context.Context, id string, spend amount.Money) (*model.Campaign, error)
	publishFn        func(ctx context.Context, id string) (*model.Campaign, error)
	transitionFn     func(ctx context.Context, id string, to model.CampaignStatus) (*model.Campaign, error)
}

func (m *mockCampaignService) ValidateDrop(draft *model.DropDraft) (*model.Drop, error) {
	if m.validateDropFn != nil {
		return m.validateDropFn(draft)
	}
	return &model.Drop{}, nil
}

func (m *mockCampaignService) Create(ctx context.Context, draft *model.CampaignDraft) (*model.Campaign, error) {
	if m.createFn != nil {
		return m.createFn(ctx, draft)
	}
	return &model.Campaign{ID: testCampaignID}, nil
}

func (m *mockCampaignService) Get(ctx context.Context, id string) (*model.CampaignSummary, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return &model.CampaignSummary{}, nil
}

func (m *mockCampaignService) RequiredBudget(ctx context.Context, id string) (*model.BudgetEstimate, error) {
	if m.requiredBudgetFn != nil {
		return m.requiredBudgetFn(ctx, id)
	}
	return &model.BudgetEstimate{CampaignID: id}, nil
}

func (m *mockCampaignService) AddFunds(ctx context.Context, id string, funds amount.Money, key string) (*model.FundingResult, error) {
	if m.addFundsFn != nil {
		return m.addFundsFn(ctx, id, funds, key)
	}
	return &model.FundingResult{}, nil
}

func (m *mockCampaignService) RecordSpend(ctx context.Context, id string, spend amount.Money) (*model.Campaign, error) {
	if m.recordSpendFn != nil {
		return m.recordSpendFn(ctx, id, spend)
	}
	return &model.Campaign{ID: id}, nil
}

func (m *mockCampaignService) Publish(ctx context.Context, id string) (*model.Campaign, error) {
	if m.publishFn != nil {
		return m.publishFn(ctx, id)
	}
	return &model.Campaign{ID: id, Status: model.CampaignStatusActive}, nil
}

func (m *mockCampaignService) TransitionCampaign(ctx context.Context, id string, to model.CampaignStatus) (*model.Campaign, error) {
	if m.transitionFn != nil {
		return m.transitionFn(ctx, id, to)
	}
	return &model.Campaign{ID: id, Status: to}, nil
}

// mockDropService is a mock implementation of DropServiceInterface.
type mockDropService struct {
	acceptFn     func(ctx context.Context, id string) (*model.Drop, error)
	transitionFn func(ctx context.Context, id string, to model.DropStatus) (*model.Drop, error)
}

func (m *mockDropService) AcceptParticipant(ctx context.Context, id string) (*model.Drop, error) {
	if m.acceptFn != nil {
		return m.acceptFn(ctx, id)
	}
	return &model.Drop{ID: id}, nil
}

func (m *mockDropService) TransitionDrop(ctx context.Context, id string, to model.DropStatus) (*model.Drop, error) {
	if m.transitionFn != nil {
		return m.transitionFn(ctx, id, to)
	}
	return &model.Drop{ID: id, Status: to}, nil
}

// mockCouponService is a mock implementation of CouponServiceInterface.
type mockCouponService struct {
	claimFn func(ctx context.Context, id string) (*model.Coupon, error)
}

func (m *mockCouponService) Claim(ctx context.Context, id string) (*model.Coupon, error) {
	if m.claimFn != nil {
		return m.claimFn(ctx, id)
	}
	return &model.Coupon{ID: id}, nil
}

// mockContentService is a mock implementation of ContentServiceInterface.
type mockContentService struct {
	transitionFn  func(ctx context.Context, id string, to model.ContentStatus) (*model.ContentItem, error)
	recordSpendFn func(ctx context.Context, id string, spend amount.Money) (*model.ContentItem, error)
}

func (m *mockContentService) Transition(ctx context.Context, id string, to model.ContentStatus) (*model.ContentItem, error) {
	if m.transitionFn != nil {
		return m.transitionFn(ctx, id, to)
	}
	return &model.ContentItem{ID: id, Status: to}, nil
}

func (m *mockContentService) RecordSpend(ctx context.Context, id string, spend amount.Money) (*model.ContentItem, error) {
	if m.recordSpendFn != nil {
		return m.recordSpendFn(ctx, id, spend)
	}
	return &model.ContentItem{ID: id}, nil
}

type services struct {
	campaigns *mockCampaignService
	drops     *mockDropService
	coupons   *mockCouponService
	content   *mockContentService
}

// setupTestApp registers every route the way cmd/api does.
func setupTestApp(s services) *fiber.App {
	if s.campaigns == nil {
		s.campaigns = &mockCampaignService{}
	}
	if s.drops == nil {
		s.drops = &mockDropService{}
	}
	if s.coupons == nil {
		s.coupons = &mockCouponService{}
	}
	if s.content == nil {
		s.content = &mockContentService{}
	}

	app := fiber.New()
	v := validator.New()
	RegisterRoutes(app, Handlers{
		Campaigns: NewCampaignHandler(s.campaigns, v),
		Drops:     NewDropHandler(s.drops, v),
		Coupons:   NewCouponHandler(s.coupons),
		Content:   NewContentHandler(s.content, v),
	})
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string, headers ...string) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), "body: %s", raw)
	}
	return resp.StatusCode, out
}

func usd(t *testing.T, cents int64) amount.Money {
	t.Helper()
	m, err := amount.USD(cents)
	require.NoError(t, err)
	return m
}

func mustGems(t *testing.T, s string) amount.Gems {
	t.Helper()
	g, err := amount.ParseGems(s)
	require.NoError(t, err)
	return g
}
