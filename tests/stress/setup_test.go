//go:build stress

// Package stress runs the ledger services against a disposable PostgreSQL
// container and checks that row locking holds the economic invariants under
// concurrent load.
//
// Usage:
//
//	go test -v -race -tags stress ./tests/stress/...
package stress

import (
	"context"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/campaign-economics/internal/amount"
	"github.com/fairyhunter13/campaign-economics/internal/model"
	"github.com/fairyhunter13/campaign-economics/internal/repository"
	"github.com/fairyhunter13/campaign-economics/internal/service"
	"github.com/fairyhunter13/campaign-economics/migrations"
	"github.com/fairyhunter13/campaign-economics/pkg/database"
)

var testPool *pgxpool.Pool

func TestMain(m *testing.M) {
	pool, err := dockertest.NewPool("")
	if err != nil {
		log.Fatalf("Could not construct pool: %s", err)
	}

	err = pool.Client.Ping()
	if err != nil {
		log.Fatalf("Could not connect to Docker: %s", err)
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "15-alpine",
		Env: []string{
			"POSTGRES_PASSWORD=testpass",
			"POSTGRES_USER=testuser",
			"POSTGRES_DB=testdb",
			"listen_addresses='*'",
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		log.Fatalf("Could not start resource: %s", err)
	}

	hostAndPort := resource.GetHostPort("5432/tcp")
	databaseURL := fmt.Sprintf("postgres://testuser:testpass@%s/testdb?sslmode=disable", hostAndPort)

	log.Println("Connecting to database on url:", databaseURL)

	_ = resource.Expire(180) // Tell docker to kill the container after 180 seconds

	pool.MaxWait = 120 * time.Second
	if err = pool.Retry(func() error {
		var err error
		testPool, err = database.NewPool(context.Background(), databaseURL+"&pool_max_conns=50", 1)
		return err
	}); err != nil {
		log.Fatalf("Could not connect to database: %s", err)
	}

	if err := database.RunMigrations(databaseURL, migrations.FS); err != nil {
		log.Fatalf("Could not run migrations: %s", err)
	}

	code := m.Run()

	testPool.Close()
	if err := pool.Purge(resource); err != nil {
		log.Fatalf("Could not purge resource: %s", err)
	}

	os.Exit(code)
}

func cleanupTables(t *testing.T) {
	t.Helper()
	_, err := testPool.Exec(context.Background(),
		"TRUNCATE TABLE campaign_fundings, content_items, coupons, drops, campaigns CASCADE")
	if err != nil {
		t.Fatalf("Failed to cleanup tables: %v", err)
	}
}

// stack is the set of services wired to the container database.
type stack struct {
	campaigns *service.CampaignService
	drops     *service.DropService
	coupons   *service.CouponService
	content   *service.ContentService
}

func newStack(t *testing.T) stack {
	t.Helper()
	rate, err := amount.NewRate(1)
	require.NoError(t, err)

	repos := service.Repositories{
		Campaigns: repository.NewCampaignRepository(testPool),
		Drops:     repository.NewDropRepository(testPool),
		Coupons:   repository.NewCouponRepository(testPool),
		Content:   repository.NewContentRepository(testPool),
		Fundings:  repository.NewFundingRepository(testPool),
	}
	return stack{
		campaigns: service.NewCampaignService(testPool, repos, rate),
		drops:     service.NewDropService(testPool, repos.Drops, repos.Campaigns),
		coupons:   service.NewCouponService(testPool, repos.Coupons, repos.Campaigns),
		content:   service.NewContentService(testPool, repos.Content, repos.Campaigns),
	}
}

// draft returns a campaign with one drop needing 25 * maxParticipants gems,
// one coupon batch and one content item.
func draft(maxParticipants, coupons int) *model.CampaignDraft {
	return &model.CampaignDraft{
		Name:      "Load test",
		StartDate: time.Now().UTC().Add(-time.Hour),
		Drops: []model.DropDraft{{
			Title:           "Unboxing video",
			Description:     "Film a 60 second unboxing",
			DropType:        model.DropTypeContentCreation,
			Difficulty:      model.DifficultyMedium,
			RequiresProof:   true,
			MaxParticipants: maxParticipants,
			GemRewardBase:   decimal.NewFromInt(25),
			DeadlineDays:    14,
		}},
		Coupons: []model.CouponDraft{{
			Title:         "Flash sale",
			DiscountType:  model.DiscountPercent,
			DiscountValue: decimal.NewFromInt(20),
			QuantityTotal: coupons,
		}},
		ContentItems: []model.ContentItemDraft{{
			Type:   model.ContentTypeVideo,
			Title:  "Launch teaser",
			URL:    "https://example.com/teaser",
			Budget: decimal.NewFromInt(50),
		}},
	}
}

// publishedCampaign creates, funds and publishes a campaign.
func publishedCampaign(t *testing.T, s stack, maxParticipants, coupons int, fundCents int64) *model.Campaign {
	t.Helper()
	ctx := context.Background()

	c, err := s.campaigns.Create(ctx, draft(maxParticipants, coupons))
	require.NoError(t, err)

	funds, err := amount.USD(fundCents)
	require.NoError(t, err)
	_, err = s.campaigns.AddFunds(ctx, c.ID, funds, "seed-"+c.ID)
	require.NoError(t, err)

	published, err := s.campaigns.Publish(ctx, c.ID)
	require.NoError(t, err)
	return published
}

func usd(t *testing.T, cents int64) amount.Money {
	t.Helper()
	m, err := amount.USD(cents)
	require.NoError(t, err)
	return m
}
