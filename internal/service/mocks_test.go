package service

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/campaign-economics/internal/amount"
	"github.com/fairyhunter13/campaign-economics/internal/model"
	"github.com/fairyhunter13/campaign-economics/pkg/database"
)

// mockTx is a mock implementation of pgx.Tx for testing transactions.
type mockTx struct {
	commitFn   func(ctx context.Context) error
	rollbackFn func(ctx context.Context) error
	committed  bool
}

func (m *mockTx) Begin(ctx context.Context) (pgx.Tx, error) {
	return nil, errors.New("nested transactions not supported")
}

func (m *mockTx) Commit(ctx context.Context) error {
	if m.commitFn != nil {
		return m.commitFn(ctx)
	}
	m.committed = true
	return nil
}

func (m *mockTx) Rollback(ctx context.Context) error {
	if m.rollbackFn != nil {
		return m.rollbackFn(ctx)
	}
	return nil
}

func (m *mockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}

func (m *mockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	return nil
}

func (m *mockTx) LargeObjects() pgx.LargeObjects {
	return pgx.LargeObjects{}
}

func (m *mockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}

func (m *mockTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (m *mockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}

func (m *mockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}

func (m *mockTx) Conn() *pgx.Conn {
	return nil
}

// mockTxBeginner is a mock implementation of TxBeginner.
type mockTxBeginner struct {
	beginFn func(ctx context.Context) (pgx.Tx, error)
}

func (m *mockTxBeginner) Begin(ctx context.Context) (pgx.Tx, error) {
	if m.beginFn != nil {
		return m.beginFn(ctx)
	}
	return &mockTx{}, nil
}

func beginner(tx *mockTx) *mockTxBeginner {
	return &mockTxBeginner{
		beginFn: func(ctx context.Context) (pgx.Tx, error) {
			return tx, nil
		},
	}
}

// mockCampaignRepository is a mock implementation of CampaignRepositoryInterface.
type mockCampaignRepository struct {
	insertFn       func(ctx context.Context, tx database.TxQuerier, c *model.Campaign) error
	getByIDFn      func(ctx context.Context, id string) (*model.Campaign, error)
	getForUpdateFn func(ctx context.Context, tx database.TxQuerier, id string) (*model.Campaign, error)
	getForShareFn  func(ctx context.Context, tx database.TxQuerier, id string) (*model.Campaign, error)
	updateLedgerFn func(ctx context.Context, tx database.TxQuerier, c *model.Campaign) error
	updateStatusFn func(ctx context.Context, tx database.TxQuerier, c *model.Campaign) error
	listDueFn      func(ctx context.Context, now time.Time) ([]string, error)
}

func (m *mockCampaignRepository) Insert(ctx context.Context, tx database.TxQuerier, c *model.Campaign) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, tx, c)
	}
	return nil
}

func (m *mockCampaignRepository) GetByID(ctx context.Context, id string) (*model.Campaign, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockCampaignRepository) GetForUpdate(ctx context.Context, tx database.TxQuerier, id string) (*model.Campaign, error) {
	if m.getForUpdateFn != nil {
		return m.getForUpdateFn(ctx, tx, id)
	}
	return nil, ErrCampaignNotFound
}

func (m *mockCampaignRepository) GetForShare(ctx context.Context, tx database.TxQuerier, id string) (*model.Campaign, error) {
	if m.getForShareFn != nil {
		return m.getForShareFn(ctx, tx, id)
	}
	return nil, ErrCampaignNotFound
}

func (m *mockCampaignRepository) UpdateLedger(ctx context.Context, tx database.TxQuerier, c *model.Campaign) error {
	if m.updateLedgerFn != nil {
		return m.updateLedgerFn(ctx, tx, c)
	}
	return nil
}

func (m *mockCampaignRepository) UpdateStatus(ctx context.Context, tx database.TxQuerier, c *model.Campaign) error {
	if m.updateStatusFn != nil {
		return m.updateStatusFn(ctx, tx, c)
	}
	return nil
}

func (m *mockCampaignRepository) ListDueForCompletion(ctx context.Context, now time.Time) ([]string, error) {
	if m.listDueFn != nil {
		return m.listDueFn(ctx, now)
	}
	return []string{}, nil
}

// mockDropRepository is a mock implementation of DropRepositoryInterface.
type mockDropRepository struct {
	insertFn                  func(ctx context.Context, tx database.TxQuerier, d *model.Drop) error
	listByCampaignFn          func(ctx context.Context, campaignID string) ([]model.Drop, error)
	listByCampaignForUpdateFn func(ctx context.Context, tx database.TxQuerier, campaignID string) ([]model.Drop, error)
	getForUpdateFn            func(ctx context.Context, tx database.TxQuerier, id string) (*model.Drop, error)
	updateFn                  func(ctx context.Context, tx database.TxQuerier, d *model.Drop) error
	listExpiredFn             func(ctx context.Context, now time.Time) ([]string, error)
}

func (m *mockDropRepository) Insert(ctx context.Context, tx database.TxQuerier, d *model.Drop) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, tx, d)
	}
	return nil
}

func (m *mockDropRepository) ListByCampaign(ctx context.Context, campaignID string) ([]model.Drop, error) {
	if m.listByCampaignFn != nil {
		return m.listByCampaignFn(ctx, campaignID)
	}
	return []model.Drop{}, nil
}

func (m *mockDropRepository) ListByCampaignForUpdate(ctx context.Context, tx database.TxQuerier, campaignID string) ([]model.Drop, error) {
	if m.listByCampaignForUpdateFn != nil {
		return m.listByCampaignForUpdateFn(ctx, tx, campaignID)
	}
	return []model.Drop{}, nil
}

func (m *mockDropRepository) GetForUpdate(ctx context.Context, tx database.TxQuerier, id string) (*model.Drop, error) {
	if m.getForUpdateFn != nil {
		return m.getForUpdateFn(ctx, tx, id)
	}
	return nil, ErrDropNotFound
}

func (m *mockDropRepository) Update(ctx context.Context, tx database.TxQuerier, d *model.Drop) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, tx, d)
	}
	return nil
}

func (m *mockDropRepository) ListExpired(ctx context.Context, now time.Time) ([]string, error) {
	if m.listExpiredFn != nil {
		return m.listExpiredFn(ctx, now)
	}
	return []string{}, nil
}

// mockCouponRepository is a mock implementation of CouponRepositoryInterface.
type mockCouponRepository struct {
	insertFn         func(ctx context.Context, tx database.TxQuerier, c *model.Coupon) error
	listByCampaignFn func(ctx context.Context, campaignID string) ([]model.Coupon, error)
	getForUpdateFn   func(ctx context.Context, tx database.TxQuerier, id string) (*model.Coupon, error)
	updateClaimedFn  func(ctx context.Context, tx database.TxQuerier, c *model.Coupon) error
}

func (m *mockCouponRepository) Insert(ctx context.Context, tx database.TxQuerier, c *model.Coupon) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, tx, c)
	}
	return nil
}

func (m *mockCouponRepository) ListByCampaign(ctx context.Context, campaignID string) ([]model.Coupon, error) {
	if m.listByCampaignFn != nil {
		return m.listByCampaignFn(ctx, campaignID)
	}
	return []model.Coupon{}, nil
}

func (m *mockCouponRepository) GetForUpdate(ctx context.Context, tx database.TxQuerier, id string) (*model.Coupon, error) {
	if m.getForUpdateFn != nil {
		return m.getForUpdateFn(ctx, tx, id)
	}
	return nil, ErrCouponNotFound
}

func (m *mockCouponRepository) UpdateClaimed(ctx context.Context, tx database.TxQuerier, c *model.Coupon) error {
	if m.updateClaimedFn != nil {
		return m.updateClaimedFn(ctx, tx, c)
	}
	return nil
}

// mockContentRepository is a mock implementation of ContentRepositoryInterface.
type mockContentRepository struct {
	insertFn         func(ctx context.Context, tx database.TxQuerier, item *model.ContentItem) error
	listByCampaignFn func(ctx context.Context, campaignID string) ([]model.ContentItem, error)
	getForUpdateFn   func(ctx context.Context, tx database.TxQuerier, id string) (*model.ContentItem, error)
	updateFn         func(ctx context.Context, tx database.TxQuerier, item *model.ContentItem) error
}

func (m *mockContentRepository) Insert(ctx context.Context, tx database.TxQuerier, item *model.ContentItem) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, tx, item)
	}
	return nil
}

func (m *mockContentRepository) ListByCampaign(ctx context.Context, campaignID string) ([]model.ContentItem, error) {
	if m.listByCampaignFn != nil {
		return m.listByCampaignFn(ctx, campaignID)
	}
	return []model.ContentItem{}, nil
}

func (m *mockContentRepository) GetForUpdate(ctx context.Context, tx database.TxQuerier, id string) (*model.ContentItem, error) {
	if m.getForUpdateFn != nil {
		return m.getForUpdateFn(ctx, tx, id)
	}
	return nil, ErrContentNotFound
}

func (m *mockContentRepository) Update(ctx context.Context, tx database.TxQuerier, item *model.ContentItem) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, tx, item)
	}
	return nil
}

// mockFundingRepository is a mock implementation of FundingRepositoryInterface.
type mockFundingRepository struct {
	getByKeyFn func(ctx context.Context, tx database.TxQuerier, key string) (*model.Funding, error)
	insertFn   func(ctx context.Context, tx database.TxQuerier, f *model.Funding) error
}

func (m *mockFundingRepository) GetByKey(ctx context.Context, tx database.TxQuerier, key string) (*model.Funding, error) {
	if m.getByKeyFn != nil {
		return m.getByKeyFn(ctx, tx, key)
	}
	return nil, nil
}

func (m *mockFundingRepository) Insert(ctx context.Context, tx database.TxQuerier, f *model.Funding) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, tx, f)
	}
	return nil
}

func usd(t *testing.T, cents int64) amount.Money {
	t.Helper()
	m, err := amount.USD(cents)
	require.NoError(t, err)
	return m
}

func eur(t *testing.T, cents int64) amount.Money {
	t.Helper()
	m, err := amount.NewMoney(cents, "EUR")
	require.NoError(t, err)
	return m
}

func gems(t *testing.T, s string) amount.Gems {
	t.Helper()
	g, err := amount.ParseGems(s)
	require.NoError(t, err)
	return g
}

func oneCentRate(t *testing.T) amount.Rate {
	t.Helper()
	r, err := amount.NewRate(1)
	require.NoError(t, err)
	return r
}

// sequentialIDs returns an id generator yielding id-1, id-2, ...
func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return "id-" + strconv.Itoa(n)
	}
}
