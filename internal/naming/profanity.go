package naming

import "strings"

var profaneWords = []string{
	"זונה",
	"שרמוטה",
	"כוס",
	"זין",
	"תחת",
	"חרא",
	"מניאק",
	"אידיוט",
	"טמבל",
	"מטומטם",
	"דביל",
	"חמור",
	"בהמה",
	"מפגר",
	"טיפש",
	"יא קל",
	"בן זונה",
	"fuck",
	"shit",
	"ass",
	"damn",
	"bitch",
	"stupid",
	"idiot",
}

// IsProfane reports whether name contains a blocked word, with or without its inner spaces.
func IsProfane(name string) bool {
	normalized := strings.ToLower(strings.TrimSpace(name))
	for _, word := range profaneWords {
		if strings.Contains(normalized, word) {
			return true
		}
		if strings.Contains(normalized, strings.Join(strings.Fields(word), "")) {
			return true
		}
	}
	return false
}
