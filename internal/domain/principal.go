package domain

import "strings"

// Principal is an opaque on-ledger account address: an owner, a renter, the
// admin, or the escrow account itself. The engine never interprets the
// address; it only compares principals and hands them to the asset ledger.
type Principal string

// Valid reports whether the address can be used as a state-store key
// component. Slashes are reserved for key separators.
func (p Principal) Valid() bool {
	return p != "" && !strings.ContainsRune(string(p), '/')
}

func (p Principal) String() string {
	return string(p)
}
