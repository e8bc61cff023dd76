package coding

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/andraa0104/isystem-1-sub006/internal/domain/coding"
)

// MockCashHistoryRepository is a mock implementation of CashHistoryRepository
type MockCashHistoryRepository struct {
	mock.Mock
}

func (m *MockCashHistoryRepository) FindCandidates(ctx context.Context, dir coding.Direction, tokens []string, limit int) ([]coding.CashEntry, error) {
	args := m.Called(ctx, dir, tokens, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]coding.CashEntry), args.Error(1)
}

func (m *MockCashHistoryRepository) FindByDirection(ctx context.Context, dir coding.Direction, limit int) ([]coding.CashEntry, error) {
	args := m.Called(ctx, dir, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]coding.CashEntry), args.Error(1)
}

// MockJournalHistoryRepository is a mock implementation of JournalHistoryRepository
type MockJournalHistoryRepository struct {
	mock.Mock
}

func (m *MockJournalHistoryRepository) FindByTokens(ctx context.Context, tokens []string, since time.Time, limit int) ([]coding.JournalEntry, error) {
	args := m.Called(ctx, tokens, since, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]coding.JournalEntry), args.Error(1)
}

// MockReranker is a mock implementation of Reranker
type MockReranker struct {
	mock.Mock
}

func (m *MockReranker) Rerank(ctx context.Context, req coding.RerankRequest) (*coding.RerankResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*coding.RerankResponse), args.Error(1)
}

type stubModelCache struct {
	mu     sync.Mutex
	models map[string]*coding.Model
}

func newStubModelCache() *stubModelCache {
	return &stubModelCache{models: make(map[string]*coding.Model)}
}

func (c *stubModelCache) Get(_ context.Context, key string) (*coding.Model, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	model, ok := c.models[key]
	return model, ok
}

func (c *stubModelCache) Set(_ context.Context, key string, model *coding.Model, _ time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.models[key] = model
}

func outEntry(code, desc, cashAccount string, amount int64, slots [3]coding.CounterpartSlot) coding.CashEntry {
	return coding.CashEntry{
		VoucherCode: code,
		Amount:      decimal.NewFromInt(-amount),
		Description: desc,
		CashAccount: cashAccount,
		Slots:       slots,
		PostedAt:    time.Date(2026, 5, 12, 0, 0, 0, 0, time.UTC),
	}
}

func newService(cash *MockCashHistoryRepository, journal *MockJournalHistoryRepository, caps coding.SourceCapabilities) *SuggestionService {
	params := coding.DefaultParams()
	logger := zap.NewNop()
	models := NewModelProvider(cash, newStubModelCache(), params, logger)
	return NewSuggestionService(cash, journal, caps, models, params, logger)
}

func TestSuggestExactHistoryMatch(t *testing.T) {
	cash := new(MockCashHistoryRepository)
	journal := new(MockJournalHistoryRepository)

	history := []coding.CashEntry{
		outEntry("BKK/TUNAI/0412", "bayar listrik pln bulan juli", "1103AA", 500000, [3]coding.CounterpartSlot{
			{Account: "5401AB", Amount: decimal.NewFromInt(500000), Side: coding.SideDebit},
		}),
		outEntry("BKK/TUNAI/0398", "bayar listrik pln bulan juni", "1103AA", 480000, [3]coding.CounterpartSlot{
			{Account: "5401AB", Amount: decimal.NewFromInt(480000), Side: coding.SideDebit},
		}),
		outEntry("BKK/TUNAI/0371", "bayar air pdam", "1103AA", 120000, [3]coding.CounterpartSlot{
			{Account: "5402AA", Amount: decimal.NewFromInt(120000), Side: coding.SideDebit},
		}),
	}
	cash.On("FindCandidates", mock.Anything, coding.DirectionOut, mock.Anything, mock.Anything).Return(history, nil)
	cash.On("FindByDirection", mock.Anything, coding.DirectionOut, mock.Anything).Return(history, nil)

	svc := newService(cash, journal, coding.SourceCapabilities{CashHistory: true})
	resp := svc.Suggest(context.Background(), SuggestRequest{
		Mode:       "out",
		Keterangan: "bayar listrik pln bulan agustus",
		Nominal:    decimal.NewFromInt(520000),
	})

	require.NotNil(t, resp)
	assert.Equal(t, "1103AA", resp.KodeAkun)
	assert.Equal(t, "TUNAI", resp.VoucherType)
	require.NotEmpty(t, resp.Lines)
	assert.Equal(t, "5401AB", resp.Lines[0].Akun)
	assert.Equal(t, coding.SideDebit, resp.Lines[0].Jenis)

	total := decimal.Zero
	for _, line := range resp.Lines {
		total = total.Add(line.Nominal)
	}
	assert.True(t, total.Equal(decimal.NewFromInt(520000)), "lines must sum to nominal, got %s", total)

	assert.Greater(t, resp.Confidence["overall"], 0.5)
	require.NotEmpty(t, resp.Evidence)
	assert.Equal(t, "kas", resp.Evidence[0].Source)
	assert.Equal(t, "bayar listrik pln bulan juli", resp.Keterangan)
}

func TestSuggestWithVAT(t *testing.T) {
	cash := new(MockCashHistoryRepository)
	journal := new(MockJournalHistoryRepository)

	history := []coding.CashEntry{
		outEntry("BKK/BANK/0101", "beli barang dagang cv sumber", "1102BA", 1100000, [3]coding.CounterpartSlot{
			{Account: "1301AA", Amount: decimal.NewFromInt(1000000), Side: coding.SideDebit},
			{},
			{Account: "1105AC", Amount: decimal.NewFromInt(100000), Side: coding.SideDebit},
		}),
		outEntry("BKK/BANK/0088", "beli barang dagang pt makmur", "1102BA", 2200000, [3]coding.CounterpartSlot{
			{Account: "1301AA", Amount: decimal.NewFromInt(2000000), Side: coding.SideDebit},
			{},
			{Account: "1105AC", Amount: decimal.NewFromInt(200000), Side: coding.SideDebit},
		}),
	}
	cash.On("FindCandidates", mock.Anything, coding.DirectionOut, mock.Anything, mock.Anything).Return(history, nil)
	cash.On("FindByDirection", mock.Anything, coding.DirectionOut, mock.Anything).Return(history, nil)

	svc := newService(cash, journal, coding.SourceCapabilities{CashHistory: true})
	resp := svc.Suggest(context.Background(), SuggestRequest{
		Keterangan: "beli barang dagang toko baru",
		Nominal:    decimal.NewFromInt(1100000),
		HasPpn:     true,
		PpnNominal: decimal.NewFromInt(100000),
	})

	require.NotNil(t, resp)
	assert.Equal(t, "1102BA", resp.KodeAkun)
	assert.Equal(t, "1105AC", resp.PpnAkun)
	assert.Equal(t, coding.SideDebit, resp.PpnJenis)
	assert.LessOrEqual(t, len(resp.Lines), 2)

	// Allocation covers the taxable base, not the VAT.
	total := decimal.Zero
	for _, line := range resp.Lines {
		assert.NotEqual(t, "1105AC", line.Akun, "VAT account must never appear as a counterpart line")
		total = total.Add(line.Nominal)
	}
	assert.True(t, total.Equal(decimal.NewFromInt(1000000)), "lines must sum to nominal minus VAT, got %s", total)
	assert.Greater(t, resp.Confidence["ppn"], 0.0)
}

func TestSuggestEmptyHistory(t *testing.T) {
	cash := new(MockCashHistoryRepository)
	journal := new(MockJournalHistoryRepository)
	cash.On("FindCandidates", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return([]coding.CashEntry{}, nil)
	cash.On("FindByDirection", mock.Anything, mock.Anything, mock.Anything).Return([]coding.CashEntry{}, nil)

	svc := newService(cash, journal, coding.SourceCapabilities{CashHistory: true})
	resp := svc.Suggest(context.Background(), SuggestRequest{
		Mode:       "in",
		Keterangan: "terima setoran modal",
		Nominal:    decimal.NewFromInt(5000000),
	})

	require.NotNil(t, resp)
	assert.Empty(t, resp.KodeAkun)
	assert.Empty(t, resp.Lines)
	assert.Zero(t, resp.Confidence["overall"])
	assert.Equal(t, "Penerimaan kas", resp.Keterangan)
	assert.Equal(t, coding.SideKredit, resp.PpnJenis)
}

func TestSuggestRepositoryErrorDegrades(t *testing.T) {
	cash := new(MockCashHistoryRepository)
	journal := new(MockJournalHistoryRepository)
	cash.On("FindCandidates", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))
	cash.On("FindByDirection", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))

	svc := newService(cash, journal, coding.SourceCapabilities{CashHistory: true})
	resp := svc.Suggest(context.Background(), SuggestRequest{
		Keterangan: "bayar listrik",
		Nominal:    decimal.NewFromInt(100000),
	})

	require.NotNil(t, resp)
	assert.Zero(t, resp.Confidence["overall"])
}

func TestSuggestJournalFallback(t *testing.T) {
	cash := new(MockCashHistoryRepository)
	journal := new(MockJournalHistoryRepository)
	cash.On("FindCandidates", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return([]coding.CashEntry{}, nil)
	cash.On("FindByDirection", mock.Anything, mock.Anything, mock.Anything).Return([]coding.CashEntry{}, nil)

	journalEntries := []coding.JournalEntry{
		{
			Code:     "JU/2026/0311",
			Remark:   "penyesuaian sewa gudang triwulan",
			PostedAt: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
			Details: []coding.JournalDetail{
				{Account: "5403BA", Debit: decimal.NewFromInt(3000000)},
				{Account: "1103AA", Credit: decimal.NewFromInt(3000000)},
			},
		},
	}
	journal.On("FindByTokens", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(journalEntries, nil)

	svc := newService(cash, journal, coding.SourceCapabilities{CashHistory: true, JournalHistory: true})
	resp := svc.Suggest(context.Background(), SuggestRequest{
		Mode:       "out",
		Keterangan: "bayar sewa gudang",
		Nominal:    decimal.NewFromInt(3000000),
	})

	require.NotNil(t, resp)
	assert.Equal(t, "1103AA", resp.KodeAkun)
	require.Len(t, resp.Lines, 1)
	assert.Equal(t, "5403BA", resp.Lines[0].Akun)
	assert.True(t, resp.Lines[0].Nominal.Equal(decimal.NewFromInt(3000000)))
	require.NotEmpty(t, resp.Evidence)
	assert.Equal(t, "jurnal", resp.Evidence[0].Source)
}

func TestSuggestSeedAccountBreaksTies(t *testing.T) {
	cash := new(MockCashHistoryRepository)
	journal := new(MockJournalHistoryRepository)

	history := []coding.CashEntry{
		outEntry("BKK/TUNAI/0501", "bayar ongkos kirim", "1103AA", 50000, [3]coding.CounterpartSlot{
			{Account: "5405AA", Amount: decimal.NewFromInt(50000), Side: coding.SideDebit},
		}),
		outEntry("BKK/TUNAI/0502", "bayar ongkos kirim", "1104BB", 50000, [3]coding.CounterpartSlot{
			{Account: "5405AA", Amount: decimal.NewFromInt(50000), Side: coding.SideDebit},
		}),
	}
	cash.On("FindCandidates", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(history, nil)
	cash.On("FindByDirection", mock.Anything, mock.Anything, mock.Anything).Return(history, nil)

	svc := newService(cash, journal, coding.SourceCapabilities{CashHistory: true})
	resp := svc.Suggest(context.Background(), SuggestRequest{
		Keterangan: "bayar ongkos kirim",
		Nominal:    decimal.NewFromInt(55000),
		SeedAkun:   "1104BB",
	})

	require.NotNil(t, resp)
	assert.Equal(t, "1104BB", resp.KodeAkun)
}
