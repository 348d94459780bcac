// Package catalog holds the static, ordered table of transaction categories.
package catalog

// Category describes how a category key is displayed.
type Category struct {
	Key   string
	Name  string
	Icon  string // Feather icon name
	Color string // Hex color
}

// UnknownKey is the key of the sentinel returned for unmatched lookups.
const UnknownKey = "unknown"

// Unknown is returned by Lookup when a key is not in the catalog.
var Unknown = Category{
	Key:   UnknownKey,
	Name:  "Desconhecida",
	Icon:  "help-circle",
	Color: "#969CB3",
}

// categories is ordered; breakdowns are emitted in this order.
var categories = []Category{
	{Key: "purchases", Name: "Compras", Icon: "shopping-bag", Color: "#5636D3"},
	{Key: "food", Name: "Alimentação", Icon: "coffee", Color: "#FF872C"},
	{Key: "housing", Name: "Casa", Icon: "home", Color: "#3D6BE6"},
	{Key: "salary", Name: "Salário", Icon: "dollar-sign", Color: "#12A454"},
	{Key: "car", Name: "Carro", Icon: "crosshair", Color: "#E83F5B"},
	{Key: "leisure", Name: "Lazer", Icon: "heart", Color: "#26195C"},
	{Key: "studies", Name: "Estudos", Icon: "book", Color: "#9C001A"},
}

var byKey = func() map[string]Category {
	m := make(map[string]Category, len(categories))
	for _, c := range categories {
		m[c.Key] = c
	}
	return m
}()

// All returns a copy of the catalog in display order.
func All() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// Lookup resolves key, returning Unknown when it is not in the catalog.
func Lookup(key string) Category {
	if c, ok := byKey[key]; ok {
		return c
	}
	return Unknown
}

// Has reports whether key names a catalog category.
func Has(key string) bool {
	_, ok := byKey[key]
	return ok
}

// Keys returns the catalog keys in display order.
func Keys() []string {
	keys := make([]string, len(categories))
	for i, c := range categories {
		keys[i] = c.Key
	}
	return keys
}
