package match

import (
	"strings"
)

// Gazetteer supplies the fixed place-name knowledge used by location scoring:
// a table of informal abbreviations mapped to canonical strings, and a list
// of city names used as a coarse same-city signal. It is plain swappable data
// so deployments for other regions can supply their own.
type Gazetteer struct {
	// Aliases maps an informal key to the canonical location strings it may
	// stand for. Keys and values are lowercase.
	Aliases map[string][]string
	// Cities is the list of recognized city names, lowercase.
	Cities []string
}

// DefaultGazetteer returns the built-in Nigerian place-name set.
func DefaultGazetteer() Gazetteer {
	return Gazetteer{
		Aliases: map[string][]string{
			"wuse":     {"wuse 2", "wuse2", "wuse ii"},
			"v.i":      {"victoria island"},
			"vi":       {"victoria island"},
			"gra":      {"government reserved area"},
			"lekki":    {"lekki phase 1", "lekki phase 2", "lekki1"},
			"ph":       {"port harcourt"},
			"maitama":  {"maitama district"},
			"gwarinpa": {"gwarimpa"},
		},
		Cities: []string{"abuja", "lagos", "port harcourt", "ibadan", "kano"},
	}
}

// aliasMatch reports whether one of a/b contains an alias key whose mapped
// canonical value appears in the other. Inputs must be lowercase.
func (g Gazetteer) aliasMatch(a, b string) bool {
	return g.aliasOneWay(a, b) || g.aliasOneWay(b, a)
}

func (g Gazetteer) aliasOneWay(keySide, valueSide string) bool {
	for key, values := range g.Aliases {
		if !strings.Contains(keySide, key) {
			continue
		}
		for _, v := range values {
			if strings.Contains(valueSide, v) {
				return true
			}
		}
	}
	return false
}

// sharedCity reports whether both strings mention the same known city.
// Inputs must be lowercase.
func (g Gazetteer) sharedCity(a, b string) bool {
	for _, city := range g.Cities {
		if strings.Contains(a, city) && strings.Contains(b, city) {
			return true
		}
	}
	return false
}

// CityOf derives the city component of a free-text location: the substring
// after the last comma, or the whole string when there is no comma.
func CityOf(location string) string {
	if idx := strings.LastIndex(location, ","); idx >= 0 {
		return strings.TrimSpace(location[idx+1:])
	}
	return strings.TrimSpace(location)
}
