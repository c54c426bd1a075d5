package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// SampleSnapshot returns the bundled demo dataset. Read paths fall back
// to it when both the remote store and the local store have nothing to
// show, so first-run dashboards are never empty.
func SampleSnapshot() *Snapshot {
	date := time.Date(2026, time.March, 14, 0, 0, 0, 0, time.UTC)
	creditAmount := decimal.NewFromInt(5000)

	return &Snapshot{
		Sales: []Sale{
			{
				ID:           "sample-sale-1",
				CustomerName: "Sharma Traders",
				VehicleRef:   "MH12AB1234",
				Items: []SaleItem{
					{
						Description: "Sand delivery",
						Quantity:    decimal.NewFromInt(3),
						Unit:        "trip",
						UnitPrice:   decimal.NewFromInt(2500),
						LineTotal:   decimal.NewFromInt(7500),
					},
				},
				TotalPrice:    decimal.NewFromInt(7500),
				Date:          date,
				PaymentMethod: "Cash",
			},
		},
		Customers: []Customer{
			{ID: "sample-customer-1", Name: "Sharma Traders", Phone: "9822000001", Status: CustomerActive},
			{ID: "sample-customer-2", Name: "Patil Constructions", Phone: "9822000002", Status: CustomerActive},
		},
		Vehicles: []Vehicle{
			{ID: "sample-vehicle-1", Make: "Tata", Model: "407", Year: 2019, VehicleNumber: "MH12AB1234", Status: VehicleActive},
		},
		Expenses: []Expense{
			{ID: "sample-expense-1", Category: "Fuel", Item: "Diesel", Amount: decimal.NewFromInt(3200), Date: date, VehicleRef: "MH12AB1234"},
		},
		Reminders: []Reminder{
			{ID: "sample-reminder-1", Type: ReminderCredit, Details: "Outstanding balance", DueDate: date.AddDate(0, 1, 0), Status: ReminderPending, RelatedToName: "Patil Constructions", Amount: &creditAmount},
		},
	}
}
