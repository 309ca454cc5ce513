package models

// Spending categories stored on transactions.
const (
	SpendingFoodDining    = "Food & Dining"
	SpendingFuel          = "Petrol & Fuel"
	SpendingShopping      = "Shopping & E-commerce"
	SpendingTransport     = "Transport & Travel"
	SpendingUtilities     = "Utilities & Bills"
	SpendingEducation     = "Education"
	SpendingEntertainment = "Entertainment"
	SpendingHealthcare    = "Healthcare"
	SpendingBanking       = "Banking"
	SpendingPersonal      = "Personal"
	SpendingOthers        = "Others"
)

// SpendingCategories lists every category a transaction may carry.
var SpendingCategories = []string{
	SpendingFoodDining,
	SpendingFuel,
	SpendingShopping,
	SpendingTransport,
	SpendingUtilities,
	SpendingEducation,
	SpendingEntertainment,
	SpendingHealthcare,
	SpendingBanking,
	SpendingPersonal,
	SpendingOthers,
}
