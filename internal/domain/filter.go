package domain

import "strings"

// StatusAll disables status filtering in FilterCars.
const StatusAll = "ALL"

// FilterCars returns the cars matching both the status choice and the text
// query, in their original order. An empty or ALL status matches any status.
// The query is matched case-insensitively as a substring of brand or model.
func FilterCars(cars []Car, query, status string) []Car {
	q := strings.ToLower(strings.TrimSpace(query))
	st := strings.ToUpper(strings.TrimSpace(status))
	if st == StatusAll {
		st = ""
	}

	out := make([]Car, 0, len(cars))
	for _, c := range cars {
		if st != "" && strings.ToUpper(string(c.Status)) != st {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(c.Brand), q) &&
			!strings.Contains(strings.ToLower(c.Model), q) {
			continue
		}
		out = append(out, c)
	}
	return out
}
