package catalog

// labels maps canonical filter keys to per-locale display labels.
// Read-only after initialization.
var labels = map[string]map[string]string{
	"price": {
		"default": "Price",
		"de-de":   "Preis",
		"fr-fr":   "Prix",
		"pl-pl":   "Cena",
	},
	"category": {
		"default": "Category",
		"de-de":   "Kategorie",
		"fr-fr":   "Catégorie",
		"pl-pl":   "Kategoria",
	},
	"manufacturer": {
		"default": "Brand",
		"de-de":   "Marke",
		"fr-fr":   "Marque",
		"pl-pl":   "Producent",
	},
}

// Translate returns the display label for a canonical filter key in the
// given locale. Unmapped locales fall back to the default label, unmapped
// keys to the key itself.
func Translate(key, locale string) string {
	byLocale, ok := labels[key]
	if !ok {
		return key
	}
	if label, ok := byLocale[locale]; ok {
		return label
	}
	return byLocale["default"]
}
