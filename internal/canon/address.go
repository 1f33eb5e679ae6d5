package canon

import (
	"regexp"
	"strings"
)

var rePunct = regexp.MustCompile(`[^\p{L}\p{N}\s,/#.&'-]`)

// Parts is an address split into its comma-separated pieces.
type Parts struct {
	Line   string
	Nearby string
	City   string
	State  string
}

// Normalize strips stray punctuation, collapses whitespace and drops empty
// comma segments. The result is what gets stored as the listing address.
func Normalize(address string) string {
	return strings.Join(segments(address), ", ")
}

// Decompose splits "line, nearby, city, state" style addresses. Shorter
// addresses fill from the right: "line, nearby, city", then "line, city".
func Decompose(address string) Parts {
	segs := segments(address)
	var p Parts
	switch n := len(segs); {
	case n == 0:
	case n == 1:
		p.Line = segs[0]
	case n == 2:
		p.Line, p.City = segs[0], segs[1]
	case n == 3:
		p.Line, p.Nearby, p.City = segs[0], segs[1], segs[2]
	default:
		p.Line = strings.Join(segs[:n-3], ", ")
		p.Nearby, p.City, p.State = segs[n-3], segs[n-2], segs[n-1]
	}
	p.City = expandCity(p.City)
	return p
}

func segments(address string) []string {
	clean := rePunct.ReplaceAllString(address, " ")
	var out []string
	for _, s := range strings.Split(clean, ",") {
		if s = collapseSpaces(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// expandCity maps a few common short forms to the name listings search on.
func expandCity(c string) string {
	m := map[string]string{
		"BLR": "Bangalore", "BENGALURU": "Bangalore",
		"BOM": "Mumbai", "BOMBAY": "Mumbai",
		"DEL": "Delhi", "NEW DELHI": "Delhi",
		"HYD": "Hyderabad",
		"MAA": "Chennai", "MADRAS": "Chennai",
		"CCU": "Kolkata", "CALCUTTA": "Kolkata",
		"PNQ": "Pune", "POONA": "Pune",
		"GURUGRAM": "Gurgaon",
	}
	if v, ok := m[strings.ToUpper(c)]; ok {
		return v
	}
	return c
}
