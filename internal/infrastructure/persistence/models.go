package persistence

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/andraa0104/isystem-1-sub006/internal/domain/coding"
)

// kasBankRow maps the posted cash-voucher table. Nominal is signed: positive
// is money in, negative is money out. The three akun_lawan slots are the
// counterpart legs; the third slot conventionally carries VAT.
type kasBankRow struct {
	Kode       string          `gorm:"column:kode;primaryKey"`
	Tanggal    time.Time       `gorm:"column:tanggal;index"`
	Keterangan string          `gorm:"column:keterangan"`
	KodeAkun   string          `gorm:"column:kode_akun"`
	Nominal    decimal.Decimal `gorm:"column:nominal;type:numeric(18,2)"`

	AkunLawan1    string          `gorm:"column:akun_lawan1"`
	NominalLawan1 decimal.Decimal `gorm:"column:nominal_lawan1;type:numeric(18,2)"`
	JenisLawan1   string          `gorm:"column:jenis_lawan1"`

	AkunLawan2    string          `gorm:"column:akun_lawan2"`
	NominalLawan2 decimal.Decimal `gorm:"column:nominal_lawan2;type:numeric(18,2)"`
	JenisLawan2   string          `gorm:"column:jenis_lawan2"`

	AkunLawan3    string          `gorm:"column:akun_lawan3"`
	NominalLawan3 decimal.Decimal `gorm:"column:nominal_lawan3;type:numeric(18,2)"`
	JenisLawan3   string          `gorm:"column:jenis_lawan3"`
}

// TableName implements the GORM table name convention.
func (kasBankRow) TableName() string { return "kas_bank" }

func (r kasBankRow) toDomain() coding.CashEntry {
	return coding.CashEntry{
		VoucherCode: r.Kode,
		Amount:      r.Nominal,
		Description: r.Keterangan,
		CashAccount: r.KodeAkun,
		PostedAt:    r.Tanggal,
		Slots: [3]coding.CounterpartSlot{
			{Account: r.AkunLawan1, Amount: r.NominalLawan1, Side: r.JenisLawan1},
			{Account: r.AkunLawan2, Amount: r.NominalLawan2, Side: r.JenisLawan2},
			{Account: r.AkunLawan3, Amount: r.NominalLawan3, Side: r.JenisLawan3},
		},
	}
}

// jurnalRow maps the general-ledger journal header table.
type jurnalRow struct {
	Kode       string           `gorm:"column:kode;primaryKey"`
	Tanggal    time.Time        `gorm:"column:tanggal;index"`
	NoVoucher  string           `gorm:"column:no_voucher"`
	Keterangan string           `gorm:"column:keterangan"`
	Details    []jurnalDetilRow `gorm:"foreignKey:KodeJurnal;references:Kode"`
}

// TableName implements the GORM table name convention.
func (jurnalRow) TableName() string { return "jurnal" }

// jurnalDetilRow maps one journal detail line.
type jurnalDetilRow struct {
	ID         uint            `gorm:"column:id;primaryKey;autoIncrement"`
	KodeJurnal string          `gorm:"column:kode_jurnal;index"`
	KodeAkun   string          `gorm:"column:kode_akun"`
	Debit      decimal.Decimal `gorm:"column:debit;type:numeric(18,2)"`
	Kredit     decimal.Decimal `gorm:"column:kredit;type:numeric(18,2)"`
}

// TableName implements the GORM table name convention.
func (jurnalDetilRow) TableName() string { return "jurnal_detil" }

func (r jurnalRow) toDomain() coding.JournalEntry {
	entry := coding.JournalEntry{
		Code:       r.Kode,
		VoucherRef: r.NoVoucher,
		Remark:     r.Keterangan,
		PostedAt:   r.Tanggal,
		Details:    make([]coding.JournalDetail, 0, len(r.Details)),
	}
	for _, d := range r.Details {
		entry.Details = append(entry.Details, coding.JournalDetail{
			Account: d.KodeAkun,
			Debit:   d.Debit,
			Credit:  d.Kredit,
		})
	}
	return entry
}
