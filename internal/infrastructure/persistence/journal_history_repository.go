package persistence

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/andraa0104/isystem-1-sub006/internal/domain/coding"
)

// GormJournalHistoryRepository reads general-ledger journal history. The
// remark and voucher-reference columns are optional per deployment; the
// capability descriptor decides which columns the token filter touches.
type GormJournalHistoryRepository struct {
	db   *gorm.DB
	caps coding.SourceCapabilities
}

// NewGormJournalHistoryRepository creates a new GormJournalHistoryRepository.
func NewGormJournalHistoryRepository(db *gorm.DB, caps coding.SourceCapabilities) *GormJournalHistoryRepository {
	return &GormJournalHistoryRepository{db: db, caps: caps}
}

// FindByTokens returns journals posted after since whose remark, voucher
// reference or code contains any of the given tokens, newest first, with
// detail lines preloaded.
func (r *GormJournalHistoryRepository) FindByTokens(ctx context.Context, tokens []string, since time.Time, limit int) ([]coding.JournalEntry, error) {
	if len(tokens) == 0 {
		return nil, nil
	}

	columns := []string{"kode"}
	if r.caps.JournalRemark {
		columns = append(columns, "keterangan")
	}
	if r.caps.JournalVoucherRef {
		columns = append(columns, "no_voucher")
	}

	clauses := make([]string, 0, len(tokens)*len(columns))
	args := make([]any, 0, len(tokens)*len(columns))
	for _, token := range tokens {
		pattern := "%" + strings.ToLower(token) + "%"
		for _, column := range columns {
			clauses = append(clauses, fmt.Sprintf("lower(%s) LIKE ?", column))
			args = append(args, pattern)
		}
	}

	var rows []jurnalRow
	err := r.db.WithContext(ctx).
		Model(&jurnalRow{}).
		Preload("Details").
		Where("tanggal >= ?", since).
		Where("("+strings.Join(clauses, " OR ")+")", args...).
		Order("tanggal DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query journal history: %w", err)
	}

	entries := make([]coding.JournalEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, row.toDomain())
	}
	return entries, nil
}
