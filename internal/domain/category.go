package domain

import "strings"

// Category is a topic used to filter quotes.
type Category string

// The fixed set of topics supported by the quotes API.
const (
	CategoryAttitude   Category = "attitude"
	CategoryBusiness   Category = "business"
	CategoryChange     Category = "change"
	CategoryDreams     Category = "dreams"
	CategoryEducation  Category = "education"
	CategoryExperience Category = "experience"
	CategoryFailure    Category = "failure"
	CategoryFitness    Category = "fitness"
	CategoryFuture     Category = "future"
	CategoryHappiness  Category = "happiness"
	CategoryHealth     Category = "health"
	CategoryHumor      Category = "humor"
	CategoryKnowledge  Category = "knowledge"
	CategoryLife       Category = "life"
	CategoryMoney      Category = "money"
	CategorySuccess    Category = "success"
)

// DefaultCategory is selected when a widget is first mounted.
const DefaultCategory = CategoryHappiness

var categories = []Category{
	CategoryAttitude,
	CategoryBusiness,
	CategoryChange,
	CategoryDreams,
	CategoryEducation,
	CategoryExperience,
	CategoryFailure,
	CategoryFitness,
	CategoryFuture,
	CategoryHappiness,
	CategoryHealth,
	CategoryHumor,
	CategoryKnowledge,
	CategoryLife,
	CategoryMoney,
	CategorySuccess,
}

// Categories returns the supported categories in display order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// String implements fmt.Stringer.
func (c Category) String() string {
	return string(c)
}

// Valid reports whether c is one of the supported categories.
func (c Category) Valid() bool {
	for _, known := range categories {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategory normalizes s and checks it against the supported categories.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if c == "" {
		return "", NewValidationError("category", "is required")
	}
	if !c.Valid() {
		return "", NewValidationErrorWithValue("category", "must be one of the supported categories", s)
	}
	return c, nil
}
