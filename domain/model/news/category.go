package news

type Category string

const (
	CategoryAttacks         = Category("Latest Attacks")
	CategoryVulnerabilities = Category("Vulnerabilities")
	CategoryTools           = Category("New Tools")
	CategoryThreatIntel     = Category("Threat Intelligence")
	CategoryGeneral         = Category("General")
)

func (c Category) String() string {
	return string(c)
}

// Categories lists every known category in dashboard order.
func Categories() []Category {
	return []Category{
		CategoryAttacks,
		CategoryTools,
		CategoryThreatIntel,
		CategoryVulnerabilities,
		CategoryGeneral,
	}
}

// ParseCategory maps a raw label to a known category. Unknown labels
// fall back to General.
func ParseCategory(s string) Category {
	for _, c := range Categories() {
		if string(c) == s {
			return c
		}
	}
	return CategoryGeneral
}

// Categorize groups items by category. Unknown categories fall back to
// General so the grouping is total.
func Categorize(items []Item) map[Category][]Item {
	known := map[Category]struct{}{}
	for _, c := range Categories() {
		known[c] = struct{}{}
	}
	out := map[Category][]Item{}
	for _, it := range items {
		c := it.Category
		if _, ok := known[c]; !ok {
			c = CategoryGeneral
		}
		out[c] = append(out[c], it)
	}
	return out
}
