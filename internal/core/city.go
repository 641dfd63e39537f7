package core

import "strings"

// ResolveCity maps a free-text object name ("Балашиха Дом 1, ул. Ленина")
// to a configured city. It takes the first whitespace-delimited token and
// returns the first configured city that starts with it, in configuration
// order. First match wins; multiple prefix matches are not disambiguated.
func ResolveCity(objectName string, cities []string) (string, bool) {
	fields := strings.Fields(objectName)
	if len(fields) == 0 {
		return "", false
	}
	token := fields[0]

	// "Сергиев Посад" is the only two-word city; its first word would
	// otherwise never prefix-match a configured key.
	if token == "Сергиев" {
		return "Сергиев Посад", true
	}

	for _, city := range cities {
		if strings.HasPrefix(city, token) {
			return city, true
		}
	}
	return "", false
}
