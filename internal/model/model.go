// Package model defines the business record shapes shared by the local
// store, the remote gateway, and the sync coordinator.
//
// Every record kind except Profile carries an opaque, globally unique
// string id. Ids are supplied by the caller at creation time (the CLI
// generates UUIDs); nothing in this package or in the store checks them
// for uniqueness. Profile is a singleton stored under a fixed key.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Entity is the contract shared by every record kind except Profile.
// It is the type constraint for the merge resolver and the generic
// collection helpers in the store and remote gateway.
type Entity interface {
	EntityID() string
}

// CustomerStatus enumerates the customer lifecycle states.
type CustomerStatus string

const (
	CustomerActive   CustomerStatus = "Active"
	CustomerInactive CustomerStatus = "Inactive"
)

// VehicleStatus enumerates the vehicle lifecycle states.
type VehicleStatus string

const (
	VehicleActive      VehicleStatus = "Active"
	VehicleMaintenance VehicleStatus = "Maintenance"
	VehicleInactive    VehicleStatus = "Inactive"
)

// ReminderType enumerates the supported reminder categories.
type ReminderType string

const (
	ReminderVehiclePermit ReminderType = "VehiclePermit"
	ReminderInsurance     ReminderType = "Insurance"
	ReminderCredit        ReminderType = "Credit"
)

// ReminderStatus enumerates reminder completion states.
type ReminderStatus string

const (
	ReminderPending   ReminderStatus = "Pending"
	ReminderCompleted ReminderStatus = "Completed"
)

// SaleItem is one line of a sale.
type SaleItem struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	Unit        string          `json:"unit,omitempty"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	LineTotal   decimal.Decimal `json:"lineTotal"`
}

// Sale records a single sale with its line items.
//
// TotalPrice must equal the sum of the line totals. The store mutators
// enforce this by recomputing the total on add and update; the value is
// not stored redundantly anywhere else.
type Sale struct {
	ID            string          `json:"id"`
	CustomerName  string          `json:"customerName"`
	VehicleRef    string          `json:"vehicleRef,omitempty"`
	Items         []SaleItem      `json:"items"`
	TotalPrice    decimal.Decimal `json:"totalPrice"`
	Date          time.Time       `json:"date"`
	PaymentMethod string          `json:"paymentMethod,omitempty"`
}

func (s Sale) EntityID() string { return s.ID }

// SumItems returns the sum of the line totals. Mutators assign this to
// TotalPrice so the invariant holds regardless of what the caller sent.
func (s Sale) SumItems() decimal.Decimal {
	total := decimal.Zero
	for _, item := range s.Items {
		total = total.Add(item.LineTotal)
	}
	return total
}

// Customer is a business contact.
type Customer struct {
	ID      string         `json:"id"`
	Name    string         `json:"name"`
	Email   string         `json:"email,omitempty"`
	Phone   string         `json:"phone,omitempty"`
	Company string         `json:"company,omitempty"`
	Address string         `json:"address,omitempty"`
	Status  CustomerStatus `json:"status"`
}

func (c Customer) EntityID() string { return c.ID }

// Vehicle is a fleet vehicle.
type Vehicle struct {
	ID            string        `json:"id"`
	Make          string        `json:"make"`
	Model         string        `json:"model"`
	Year          int           `json:"year"`
	VehicleNumber string        `json:"vehicleNumber"`
	Status        VehicleStatus `json:"status"`
}

func (v Vehicle) EntityID() string { return v.ID }

// Expense is a single recorded cost, optionally tied to a vehicle.
type Expense struct {
	ID         string          `json:"id"`
	Category   string          `json:"category"`
	Item       string          `json:"item"`
	Amount     decimal.Decimal `json:"amount"`
	Date       time.Time       `json:"date"`
	VehicleRef string          `json:"vehicleRef,omitempty"`
}

func (e Expense) EntityID() string { return e.ID }

// Reminder is a dated follow-up. Amount is only meaningful for Credit
// reminders and is optional; a nil Amount means "not recorded", which
// the merge resolver treats differently from zero.
type Reminder struct {
	ID            string           `json:"id"`
	Type          ReminderType     `json:"type"`
	Details       string           `json:"details,omitempty"`
	DueDate       time.Time        `json:"dueDate"`
	Status        ReminderStatus   `json:"status"`
	RelatedToName string           `json:"relatedToName,omitempty"`
	Amount        *decimal.Decimal `json:"amount,omitempty"`
}

func (r Reminder) EntityID() string { return r.ID }

// Profile is the singleton business profile. It has no id; the remote
// gateway stores it under the fixed ProfileKey document key, and the
// local store holds at most one instance. Absence is a valid state.
type Profile struct {
	Name        string `json:"name"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	CompanyName string `json:"companyName,omitempty"`
	Address     string `json:"address,omitempty"`
}
