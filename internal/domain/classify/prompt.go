package classify

import (
	"fmt"
	"strings"
)

// buildPrompt renders the instruction for one description: the taxonomy, a
// few worked examples, and a strict JSON-only output demand.
func buildPrompt(taxonomy []Category, description string) string {
	var b strings.Builder

	b.WriteString("You are a personal finance assistant. Classify the bank transaction ")
	b.WriteString("description below into exactly one category and one subcategory from ")
	b.WriteString("the allowed list.\n\nAllowed categories:\n")
	for _, cat := range taxonomy {
		fmt.Fprintf(&b, "- %s: %s\n", cat.Name, strings.Join(cat.Subcategories, ", "))
	}

	b.WriteString("\nExamples:\n")
	b.WriteString(`Description: NTUC FAIRPRICE JURONG SINGAPORE SG
{"category": "Groceries", "subcategory": "Groceries"}
Description: GRAB* A-5XJJJGBNLKJA SINGAPORE SG
{"category": "Transportation", "subcategory": "Grab Car/Taxi"}
Description: NETFLIX.COM SINGAPORE SG
{"category": "Utilities", "subcategory": "Subscriptions"}
`)

	b.WriteString("\nRespond with a single JSON object with keys \"category\" and ")
	b.WriteString("\"subcategory\" and nothing else.\n\nDescription: ")
	b.WriteString(description)
	b.WriteString("\n")

	return b.String()
}
