package coding

// vatSlotIndex is the counterpart slot conventionally carrying the VAT leg.
const vatSlotIndex = 2

// InferVATSlot returns the index of the counterpart slot holding the VAT leg
// of a row, or -1 when the row carries no VAT.
//
// The placement is inferred positionally: the third slot is reserved for VAT
// by posting convention, and a positive amount there is taken to mean VAT is
// present. There is no stored flag, so a row that legitimately booked a
// substantive counterpart into the third slot is indistinguishable from a
// VAT row. Known ambiguity, kept as-is.
func InferVATSlot(entry CashEntry) int {
	if entry.Slots[vatSlotIndex].Amount.Sign() > 0 {
		return vatSlotIndex
	}
	return -1
}

// QualifyingSlots returns the counterpart slots of a row that count as
// substantive counterpart candidates: when the VAT slot is occupied only the
// two non-VAT slots qualify, otherwise all three. Empty and zero-amount
// slots are skipped.
func QualifyingSlots(entry CashEntry) []CounterpartSlot {
	vatIdx := InferVATSlot(entry)
	slots := make([]CounterpartSlot, 0, 3)
	for i, slot := range entry.Slots {
		if i == vatIdx {
			continue
		}
		if slot.Account == "" || slot.Amount.Sign() == 0 {
			continue
		}
		slots = append(slots, slot)
	}
	return slots
}
