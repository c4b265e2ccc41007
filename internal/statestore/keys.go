package statestore

import "rentacar-escrow-backend/internal/domain"

// Key space. One singleton key per scalar, prefixed keys for cars and
// rentals. Principal addresses never contain '/', so the composite keys
// parse unambiguously.
const (
	keyAdmin           = "admin"
	keyPaymentAsset    = "payment_asset"
	keyAdminFee        = "admin_fee"
	keyAdminBalance    = "admin_balance"
	keyContractBalance = "contract_balance"

	carPrefix    = "car/"
	rentalPrefix = "rental/"
)

func carKey(owner domain.Principal) string {
	return carPrefix + owner.String()
}

func rentalKey(renter, owner domain.Principal) string {
	return rentalPrefix + renter.String() + "/" + owner.String()
}
