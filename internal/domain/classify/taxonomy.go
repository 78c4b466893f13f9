// Package classify assigns a category and subcategory to transaction
// descriptions, combining a local pattern pre-pass with an LLM fallback
// behind a bounded worker pool.
package classify

// Category is one top-level label with its allowed subcategories.
type Category struct {
	Name          string
	Subcategories []string
}

// Label is a classification result. The zero value is not valid; use
// Uncategorized for the degradation case.
type Label struct {
	Category    string
	Subcategory string
}

// Uncategorized is the total-function fallback: classification never fails a
// record, it degrades to this pair.
var Uncategorized = Label{Category: "Uncategorized", Subcategory: "Uncategorized"}

// DefaultTaxonomy is the closed label set presented to the model. Labels
// outside it are snapped onto the nearest entry.
var DefaultTaxonomy = []Category{
	{Name: "Food & Dining", Subcategories: []string{"Eat Out", "Grab Food", "Work Lunch"}},
	{Name: "Transportation", Subcategories: []string{"Grab Car/Taxi", "GetGo Rental Car", "Car Refuel", "Public Transport"}},
	{Name: "Groceries", Subcategories: []string{"Groceries"}},
	{Name: "Shopping", Subcategories: []string{"Online Shopping", "Retail Shop"}},
	{Name: "Utilities", Subcategories: []string{"Mobile Phone", "Cash Card", "Internet & Cable TV", "Electricity & Gas", "Subscriptions", "Other payments"}},
	{Name: "Others", Subcategories: []string{"Sport", "Leisure", "Gifts", "Household Items", "Renovation Works", "Medical", "Insurance", "Investments"}},
}
