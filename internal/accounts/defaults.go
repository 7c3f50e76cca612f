package accounts

import (
	"github.com/google/uuid"

	"github.com/minesupport/bookkeeper/internal/model"
)

// Categories used by the default chart.
const (
	CategoryCurrent     = "CURRENT"
	CategoryFixed       = "FIXED"
	CategoryOperational = "OPERATIONAL"
	CategoryProject     = "PROJECT"
	CategoryPayroll     = "PAYROLL"
	CategoryGeneral     = "GENERAL"
)

// DefaultChart returns a starter chart of accounts for a mining-support
// contractor. Every call assigns fresh ids.
func DefaultChart() []model.Account {
	chart := []model.Account{
		{Code: "1010", Name: "Cash on Hand", Type: model.AccountTypeAsset, Category: CategoryCurrent},
		{Code: "1020", Name: "Bank Operating Account", Type: model.AccountTypeAsset, Category: CategoryCurrent},
		{Code: "1100", Name: "Accounts Receivable", Type: model.AccountTypeAsset, Category: CategoryCurrent},
		{Code: "1200", Name: "Fuel & Spares Inventory", Type: model.AccountTypeAsset, Category: CategoryCurrent},
		{Code: "1500", Name: "Heavy Equipment", Type: model.AccountTypeAsset, Category: CategoryFixed},
		{Code: "2010", Name: "Accounts Payable", Type: model.AccountTypeLiability, Category: CategoryCurrent},
		{Code: "2100", Name: "Taxes Payable", Type: model.AccountTypeLiability, Category: CategoryCurrent},
		{Code: "2500", Name: "Equipment Loan", Type: model.AccountTypeLiability, Category: CategoryFixed},
		{Code: "3010", Name: "Owner Capital", Type: model.AccountTypeEquity, Category: CategoryGeneral},
		{Code: "3020", Name: "Retained Earnings", Type: model.AccountTypeEquity, Category: CategoryGeneral},
		{Code: "4010", Name: "Contract Mining Services", Type: model.AccountTypeRevenue, Category: CategoryProject},
		{Code: "4020", Name: "Equipment Rental Income", Type: model.AccountTypeRevenue, Category: CategoryProject},
		{Code: "5010", Name: "Fuel & Lubricants", Type: model.AccountTypeExpense, Category: CategoryOperational},
		{Code: "5020", Name: "Equipment Maintenance", Type: model.AccountTypeExpense, Category: CategoryOperational},
		{Code: "5030", Name: "Site Wages", Type: model.AccountTypeExpense, Category: CategoryPayroll},
		{Code: "5040", Name: "Transport & Hauling", Type: model.AccountTypeExpense, Category: CategoryProject},
		{Code: "5090", Name: "Office & Administration", Type: model.AccountTypeExpense, Category: CategoryGeneral},
	}
	for i := range chart {
		chart[i].ID = uuid.NewString()
		chart[i].IsActive = true
	}
	return chart
}
