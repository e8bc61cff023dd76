package persistence

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/andraa0104/isystem-1-sub006/internal/domain/coding"
)

// ProbeCapabilities inspects the historical schema once at startup and
// reports which optional tables and columns this deployment has. Voters fed
// a false flag contribute empty votes instead of erroring at request time.
func ProbeCapabilities(db *gorm.DB, logger *zap.Logger) coding.SourceCapabilities {
	m := db.Migrator()

	caps := coding.SourceCapabilities{
		CashHistory:    m.HasTable(&kasBankRow{}),
		JournalHistory: m.HasTable(&jurnalRow{}) && m.HasTable(&jurnalDetilRow{}),
	}
	if caps.JournalHistory {
		caps.JournalRemark = m.HasColumn(&jurnalRow{}, "keterangan")
		caps.JournalVoucherRef = m.HasColumn(&jurnalRow{}, "no_voucher")
	}

	logger.Info("historical source capabilities",
		zap.Bool("cash_history", caps.CashHistory),
		zap.Bool("journal_history", caps.JournalHistory),
		zap.Bool("journal_remark", caps.JournalRemark),
		zap.Bool("journal_voucher_ref", caps.JournalVoucherRef),
	)
	return caps
}
