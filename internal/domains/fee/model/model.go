package model

const (
	TableName  = "fee_schedules"
	EntityName = "fee_schedule"

	FieldFeeType = "fee_type"
	FieldAmount  = "amount"
)

const (
	KeyReservation   = "reservation_fee"
	KeyCleaning      = "cleaning_fee"
	KeyDriver        = "driver_fee"
	KeyDamage        = "damage_fee"
	KeyEquipmentLoss = "equipment_loss_fee"
	KeyGasLevel      = "gas_level_fee"
	KeyStainRemoval  = "stain_removal_fee"
	KeyDeposit       = "deposit_fee"
)

type FeeSchedule struct {
	FeeType     string  `db:"fee_type"`
	Amount      float64 `db:"amount"`
	Description string  `db:"description"`
}

// Schedule maps a fee type to its configured amount.
type Schedule map[string]float64

// Amount returns the configured amount for key, or zero when the key is not configured.
func (s Schedule) Amount(key string) float64 {
	return s[key]
}

func NewSchedule(rows []FeeSchedule) Schedule {
	schedule := make(Schedule, len(rows))
	for _, row := range rows {
		schedule[row.FeeType] = row.Amount
	}

	return schedule
}
