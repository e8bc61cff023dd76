package persistence

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/andraa0104/isystem-1-sub006/internal/domain/coding"
)

// GormCashHistoryRepository reads posted cash-voucher history.
type GormCashHistoryRepository struct {
	db *gorm.DB
}

// NewGormCashHistoryRepository creates a new GormCashHistoryRepository.
func NewGormCashHistoryRepository(db *gorm.DB) *GormCashHistoryRepository {
	return &GormCashHistoryRepository{db: db}
}

// FindCandidates returns the most recent rows matching the direction whose
// description contains at least one of the given tokens. Malformed rows
// (empty cash account) are skipped rather than failing the batch.
func (r *GormCashHistoryRepository) FindCandidates(ctx context.Context, dir coding.Direction, tokens []string, limit int) ([]coding.CashEntry, error) {
	query := r.db.WithContext(ctx).Model(&kasBankRow{}).Where(directionClause(dir))

	if len(tokens) > 0 {
		clauses := make([]string, 0, len(tokens))
		args := make([]any, 0, len(tokens))
		for _, token := range tokens {
			clauses = append(clauses, "lower(keterangan) LIKE ?")
			args = append(args, "%"+strings.ToLower(token)+"%")
		}
		query = query.Where("("+strings.Join(clauses, " OR ")+")", args...)
	}

	var rows []kasBankRow
	if err := query.Order("tanggal DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query cash history: %w", err)
	}
	return toCashEntries(rows), nil
}

// FindByDirection returns the most recent rows matching the direction.
func (r *GormCashHistoryRepository) FindByDirection(ctx context.Context, dir coding.Direction, limit int) ([]coding.CashEntry, error) {
	var rows []kasBankRow
	err := r.db.WithContext(ctx).
		Model(&kasBankRow{}).
		Where(directionClause(dir)).
		Order("tanggal DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query cash history: %w", err)
	}
	return toCashEntries(rows), nil
}

func directionClause(dir coding.Direction) string {
	if dir == coding.DirectionIn {
		return "nominal > 0"
	}
	return "nominal < 0"
}

func toCashEntries(rows []kasBankRow) []coding.CashEntry {
	entries := make([]coding.CashEntry, 0, len(rows))
	for _, row := range rows {
		if row.KodeAkun == "" {
			continue
		}
		entries = append(entries, row.toDomain())
	}
	return entries
}
