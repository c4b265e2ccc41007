package domain

type CarStatus string

const (
	CarStatusAvailable CarStatus = "AVAILABLE"
	CarStatusRented    CarStatus = "RENTED"
)

// Car is the registry record for one listed vehicle, keyed by its owner.
// AvailableToWithdraw is the owner's accrued claim against the escrow
// account: increased only by a completed rental, decreased only by a payout.
type Car struct {
	PricePerDay         int64     `json:"price_per_day"` // informational, not enforced
	Status              CarStatus `json:"status"`
	AvailableToWithdraw int64     `json:"available_to_withdraw"`
}
