package domain

// Rental is the active-rental record, keyed by (renter, owner). Amount is the
// principal paid to the owner, excluding the admin fee. The record exists
// only while the car is out; returning the car deletes it.
type Rental struct {
	TotalDaysToRent int32 `json:"total_days_to_rent"`
	Amount          int64 `json:"amount"`
}
