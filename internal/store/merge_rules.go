package store

import (
	"github.com/mvaghela/bizbook/internal/merge"
	"github.com/mvaghela/bizbook/internal/model"
)

// Each collection kind is statically paired with its merge rule here.
// Only reminders carry the amount-preservation rule; every other kind
// is plain last-write-wins replacement by id.

func mergeSales(existing, incoming []model.Sale) []model.Sale {
	return merge.Records(existing, incoming, merge.TakeIncoming[model.Sale])
}

func mergeCustomers(existing, incoming []model.Customer) []model.Customer {
	return merge.Records(existing, incoming, merge.TakeIncoming[model.Customer])
}

func mergeVehicles(existing, incoming []model.Vehicle) []model.Vehicle {
	return merge.Records(existing, incoming, merge.TakeIncoming[model.Vehicle])
}

func mergeExpenses(existing, incoming []model.Expense) []model.Expense {
	return merge.Records(existing, incoming, merge.TakeIncoming[model.Expense])
}

func mergeReminders(existing, incoming []model.Reminder) []model.Reminder {
	return merge.Records(existing, incoming, merge.PreserveAmount)
}
