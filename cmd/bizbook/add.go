package main

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/mvaghela/bizbook/internal/model"
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a record to the local store",
}

var addCustomerCmd = &cobra.Command{
	Use:   "customer",
	Short: "Add a customer",
	Run: func(cmd *cobra.Command, args []string) {
		st := openStore(loadConfig())

		customer := model.Customer{
			ID:      uuid.NewString(),
			Name:    mustFlag(cmd, "name"),
			Email:   flag(cmd, "email"),
			Phone:   flag(cmd, "phone"),
			Company: flag(cmd, "company"),
			Address: flag(cmd, "address"),
			Status:  model.CustomerActive,
		}
		st.AddCustomer(customer)
		fmt.Printf("Added customer %s (%s)\n", customer.Name, customer.ID)
	},
}

var addVehicleCmd = &cobra.Command{
	Use:   "vehicle",
	Short: "Add a vehicle",
	Run: func(cmd *cobra.Command, args []string) {
		st := openStore(loadConfig())
		year, _ := cmd.Flags().GetInt("year")

		vehicle := model.Vehicle{
			ID:            uuid.NewString(),
			Make:          mustFlag(cmd, "make"),
			Model:         mustFlag(cmd, "model"),
			Year:          year,
			VehicleNumber: mustFlag(cmd, "number"),
			Status:        model.VehicleActive,
		}
		st.AddVehicle(vehicle)
		fmt.Printf("Added vehicle %s %s (%s)\n", vehicle.Make, vehicle.Model, vehicle.ID)
	},
}

var addExpenseCmd = &cobra.Command{
	Use:   "expense",
	Short: "Add an expense",
	Run: func(cmd *cobra.Command, args []string) {
		st := openStore(loadConfig())

		expense := model.Expense{
			ID:         uuid.NewString(),
			Category:   mustFlag(cmd, "category"),
			Item:       mustFlag(cmd, "item"),
			Amount:     mustDecimal(cmd, "amount"),
			Date:       mustDate(cmd, "date"),
			VehicleRef: flag(cmd, "vehicle"),
		}
		st.AddExpense(expense)
		fmt.Printf("Added expense %s/%s (%s)\n", expense.Category, expense.Item, expense.ID)
	},
}

var addReminderCmd = &cobra.Command{
	Use:   "reminder",
	Short: "Add a reminder",
	Run: func(cmd *cobra.Command, args []string) {
		st := openStore(loadConfig())

		reminder := model.Reminder{
			ID:            uuid.NewString(),
			Type:          model.ReminderType(mustFlag(cmd, "type")),
			Details:       flag(cmd, "details"),
			DueDate:       mustDate(cmd, "due"),
			Status:        model.ReminderPending,
			RelatedToName: flag(cmd, "related-to"),
		}
		if raw := flag(cmd, "amount"); raw != "" {
			amount := mustDecimal(cmd, "amount")
			reminder.Amount = &amount
		}
		st.AddReminder(reminder)
		fmt.Printf("Added %s reminder due %s (%s)\n", reminder.Type, reminder.DueDate.Format("2006-01-02"), reminder.ID)
	},
}

var addSaleCmd = &cobra.Command{
	Use:   "sale",
	Short: "Add a single-item sale",
	Run: func(cmd *cobra.Command, args []string) {
		st := openStore(loadConfig())

		quantity := mustDecimal(cmd, "quantity")
		unitPrice := mustDecimal(cmd, "price")
		item := model.SaleItem{
			Description: mustFlag(cmd, "item"),
			Quantity:    quantity,
			Unit:        flag(cmd, "unit"),
			UnitPrice:   unitPrice,
			LineTotal:   quantity.Mul(unitPrice),
		}
		sale := model.Sale{
			ID:            uuid.NewString(),
			CustomerName:  mustFlag(cmd, "customer"),
			VehicleRef:    flag(cmd, "vehicle"),
			Items:         []model.SaleItem{item},
			Date:          mustDate(cmd, "date"),
			PaymentMethod: flag(cmd, "payment"),
		}
		st.AddSale(sale)
		fmt.Printf("Added sale for %s, total %s (%s)\n", sale.CustomerName, item.LineTotal, sale.ID)
	},
}

func flag(cmd *cobra.Command, name string) string {
	value, _ := cmd.Flags().GetString(name)
	return value
}

func mustFlag(cmd *cobra.Command, name string) string {
	value := flag(cmd, name)
	if value == "" {
		fmt.Fprintf(os.Stderr, "Error: --%s is required\n", name)
		os.Exit(1)
	}
	return value
}

func mustDecimal(cmd *cobra.Command, name string) decimal.Decimal {
	value, err := decimal.NewFromString(mustFlag(cmd, name))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: --%s must be a number: %v\n", name, err)
		os.Exit(1)
	}
	return value
}

func mustDate(cmd *cobra.Command, name string) time.Time {
	raw := flag(cmd, name)
	if raw == "" {
		return time.Now().UTC().Truncate(24 * time.Hour)
	}
	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: --%s must be YYYY-MM-DD: %v\n", name, err)
		os.Exit(1)
	}
	return date
}

func init() {
	addCustomerCmd.Flags().String("name", "", "customer name (required)")
	addCustomerCmd.Flags().String("email", "", "email address")
	addCustomerCmd.Flags().String("phone", "", "phone number")
	addCustomerCmd.Flags().String("company", "", "company name")
	addCustomerCmd.Flags().String("address", "", "postal address")

	addVehicleCmd.Flags().String("make", "", "vehicle make (required)")
	addVehicleCmd.Flags().String("model", "", "vehicle model (required)")
	addVehicleCmd.Flags().Int("year", 0, "model year")
	addVehicleCmd.Flags().String("number", "", "registration number (required)")

	addExpenseCmd.Flags().String("category", "", "expense category (required)")
	addExpenseCmd.Flags().String("item", "", "what was bought (required)")
	addExpenseCmd.Flags().String("amount", "", "amount (required)")
	addExpenseCmd.Flags().String("date", "", "date YYYY-MM-DD (default today)")
	addExpenseCmd.Flags().String("vehicle", "", "related vehicle number")

	addReminderCmd.Flags().String("type", "", "VehiclePermit, Insurance, or Credit (required)")
	addReminderCmd.Flags().String("details", "", "free-form details")
	addReminderCmd.Flags().String("due", "", "due date YYYY-MM-DD (default today)")
	addReminderCmd.Flags().String("related-to", "", "related customer or vehicle name")
	addReminderCmd.Flags().String("amount", "", "credit amount (Credit reminders)")

	addSaleCmd.Flags().String("customer", "", "customer name (required)")
	addSaleCmd.Flags().String("item", "", "line item description (required)")
	addSaleCmd.Flags().String("quantity", "", "quantity (required)")
	addSaleCmd.Flags().String("unit", "", "unit, e.g. trip, ton")
	addSaleCmd.Flags().String("price", "", "unit price (required)")
	addSaleCmd.Flags().String("date", "", "date YYYY-MM-DD (default today)")
	addSaleCmd.Flags().String("payment", "", "payment method")
	addSaleCmd.Flags().String("vehicle", "", "related vehicle number")

	addCmd.AddCommand(addCustomerCmd, addVehicleCmd, addExpenseCmd, addReminderCmd, addSaleCmd)
	rootCmd.AddCommand(addCmd)
}
