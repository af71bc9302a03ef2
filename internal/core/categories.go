package core

import "strings"

// OtherCategory is the fallback for both transaction types.
const OtherCategory = "other"

var categories = map[TransactionType][]string{
	Income:  {"salary", "freelance", "investments", "other"},
	Expense: {"food", "transport", "housing", "utilities", "entertainment", "health", "shopping", "travel", "recreational", "other"},
}

// synonyms maps common words to a category per type.
var synonyms = map[TransactionType]map[string]string{
	Income: {
		"paycheck":  "salary",
		"payroll":   "salary",
		"wage":      "salary",
		"wages":     "salary",
		"bonus":     "salary",
		"contract":  "freelance",
		"gig":       "freelance",
		"client":    "freelance",
		"invoice":   "freelance",
		"dividend":  "investments",
		"dividends": "investments",
		"interest":  "investments",
		"stocks":    "investments",
		"stock":     "investments",
		"crypto":    "investments",
	},
	Expense: {
		"lunch":       "food",
		"dinner":      "food",
		"breakfast":   "food",
		"groceries":   "food",
		"grocery":     "food",
		"restaurant":  "food",
		"coffee":      "food",
		"snacks":      "food",
		"uber":        "transport",
		"taxi":        "transport",
		"bus":         "transport",
		"train":       "transport",
		"metro":       "transport",
		"fuel":        "transport",
		"petrol":      "transport",
		"gas":         "transport",
		"parking":     "transport",
		"rent":        "housing",
		"mortgage":    "housing",
		"electricity": "utilities",
		"water":       "utilities",
		"internet":    "utilities",
		"phone":       "utilities",
		"bill":        "utilities",
		"movie":       "entertainment",
		"movies":      "entertainment",
		"netflix":     "entertainment",
		"concert":     "entertainment",
		"games":       "entertainment",
		"doctor":      "health",
		"medicine":    "health",
		"pharmacy":    "health",
		"hospital":    "health",
		"gym":         "health",
		"clothes":     "shopping",
		"shoes":       "shopping",
		"amazon":      "shopping",
		"flight":      "travel",
		"hotel":       "travel",
		"vacation":    "travel",
		"trip":        "travel",
		"hobby":       "recreational",
		"sports":      "recreational",
		"park":        "recreational",
	},
}

// Categories returns the allowed categories for t.
func Categories(t TransactionType) []string {
	return append([]string(nil), categories[t]...)
}

// AllCategories returns the allowed categories keyed by type name.
func AllCategories() map[string][]string {
	return map[string][]string{
		string(Income):  Categories(Income),
		string(Expense): Categories(Expense),
	}
}

func IsValidCategory(t TransactionType, category string) bool {
	for _, c := range categories[t] {
		if c == category {
			return true
		}
	}
	return false
}

// NormalizeCategory maps free text to an allowed category for t, falling back to "other".
func NormalizeCategory(t TransactionType, text string) string {
	s := strings.ToLower(strings.TrimSpace(text))
	if IsValidCategory(t, s) {
		return s
	}
	if c, ok := synonyms[t][s]; ok {
		return c
	}
	for _, word := range strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '-' || r == '_' || r == '/' || r == ','
	}) {
		if IsValidCategory(t, word) {
			return word
		}
		if c, ok := synonyms[t][word]; ok {
			return c
		}
	}
	return OtherCategory
}
