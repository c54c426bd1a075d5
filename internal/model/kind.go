package model

// Kind identifies one of the five record collections. It is a closed
// set: each kind is statically paired with its remote collection name,
// so there is no string-keyed dispatch anywhere in the codebase.
type Kind int

const (
	KindSale Kind = iota
	KindCustomer
	KindVehicle
	KindExpense
	KindReminder
)

// Kinds lists every collection kind in canonical order.
var Kinds = []Kind{KindSale, KindCustomer, KindVehicle, KindExpense, KindReminder}

// Collection returns the fixed remote collection name for this kind.
func (k Kind) Collection() string {
	switch k {
	case KindSale:
		return "sales"
	case KindCustomer:
		return "customers"
	case KindVehicle:
		return "vehicles"
	case KindExpense:
		return "expenses"
	case KindReminder:
		return "reminders"
	default:
		return "unknown"
	}
}

// String returns the collection name, which doubles as the display name.
func (k Kind) String() string { return k.Collection() }

// ProfileCollection and ProfileKey locate the singleton profile document
// in the remote store: collection "profile", document key "user_profile".
const (
	ProfileCollection = "profile"
	ProfileKey        = "user_profile"
)
