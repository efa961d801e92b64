// Package taxonomy holds the static category, payment method and currency
// tables that expense writes are validated against.
package taxonomy

import (
	"sort"

	"smartspend/internal/models"
)

// categories maps each category label to its allowed sub-categories.
var categories = map[string][]string{
	"Dining":                  {"Eatary Meals", "Restaurant Meals", "Snacks", "Drinks", "Fast Food"},
	"Transportation":          {"Ride-Hailing", "Tuk-Tuk/Moto-Dop", "Fuel", "Public Transport", "Parking Fees"},
	"Education":               {"Tuition Fees", "Books & Supplies", "Online Courses", "Workshops/Seminars"},
	"Housing & Utilities":     {"Rent", "Electricity Bill", "Water Bill", "Internet Bill", "Home Supplies"},
	"Food & Groceries":        {"Meat", "Vegetables", "Fruits", "Staples", "Snacks & Beverages", "Fish & Seafood", "Condiments & Spices", "Dairy Products", "Canned & Packaged Foods"},
	"Communication":           {"Mobile Top-up/Plan"},
	"Healthcare":              {"Pharmacy", "Doctor Visit", "Medical Bills", "Health Supplements"},
	"Insurance":               {"Health Insurance", "Vehicle Insurance", "Home Insurance"},
	"Entertainment & Leisure": {"Cinema/Movies", "Social Outings", "Hobbies/Sports", "Gaming", "Subscriptions"},
	"Shopping":                {"Clothing & Accessories", "Electronics", "Household Items"},
	"Social & Charity":        {"Donations", "Gifts", "Events/Parties"},
	"Personal Care":           {"Hair/Beauty", "Gym/Fitness", "Skincare"},
	"Maintenance & Repairs":   {"Vehicle Maintenance", "Home Repairs", "Appliance Repairs"},
	"Travel & Vacation":       {"Flights", "Accommodation", "Travel Insurance"},
	"Assets & Investments":    {"Stocks/Mutual Funds", "Cryptocurrency", "Real Estate", "Retirement Savings", "Vehicles"},
	"Financial Services":      {"Bank Fees", "Loan Payments", "Credit Card Payments"},
	"Taxes":                   {"Income Tax", "Property Tax", "Sales Tax", "Other Taxes"},
	"Miscellaneous":           {"Other"},
}

var paymentMethods = []string{"Cash", "Mobile Pay", "Credit Card", "Debit Card", "Other"}

var currencies = []models.Currency{models.CurrencyUSD, models.CurrencyKHR}

// Category is a category label together with its sub-categories.
type Category struct {
	Label         string   `json:"label"`
	SubCategories []string `json:"sub_categories"`
}

// Categories returns the category table sorted by label.
func Categories() []Category {
	out := make([]Category, 0, len(categories))
	for label, subs := range categories {
		out = append(out, Category{Label: label, SubCategories: append([]string(nil), subs...)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}

// PaymentMethods returns the accepted payment methods in display order.
func PaymentMethods() []string {
	return append([]string(nil), paymentMethods...)
}

// Currencies returns the accepted currencies, USD first.
func Currencies() []models.Currency {
	return append([]models.Currency(nil), currencies...)
}

// IsCategory reports whether label is a known category.
func IsCategory(label string) bool {
	_, ok := categories[label]
	return ok
}

// IsSubCategory reports whether sub belongs to the category's allowed set.
func IsSubCategory(category, sub string) bool {
	for _, s := range categories[category] {
		if s == sub {
			return true
		}
	}
	return false
}

// IsPaymentMethod reports whether method is an accepted payment method.
func IsPaymentMethod(method string) bool {
	for _, m := range paymentMethods {
		if m == method {
			return true
		}
	}
	return false
}

// IsCurrency reports whether code is an accepted currency.
func IsCurrency(code string) bool {
	for _, c := range currencies {
		if string(c) == code {
			return true
		}
	}
	return false
}
