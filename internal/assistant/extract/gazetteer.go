package extract

import (
	"regexp"
	"sort"
	"strings"
)

// place is one gazetteer entry: the lowercase surface form and its canonical name.
type place struct {
	name      string
	canonical string
	pattern   *regexp.Regexp
}

// placeAliases collapses synonyms to one canonical spelling.
var placeAliases = map[string]string{
	"bengaluru": "Bangalore",
	"bangalore": "Bangalore",
	"calcutta":  "Kolkata",
	"kolkata":   "Kolkata",
	"cochin":    "Kochi",
	"kochi":     "Kochi",
	"mysuru":    "Mysore",
	"mysore":    "Mysore",
	"prayagraj": "Allahabad",
	"allahabad": "Allahabad",
	"gurugram":  "Gurgaon",
	"gurgaon":   "Gurgaon",
}

var placeNames = []string{
	"mumbai", "delhi", "bangalore", "bengaluru", "hyderabad", "chennai", "kolkata", "calcutta",
	"pune", "ahmedabad", "jaipur", "lucknow", "kanpur", "nagpur", "indore", "thane", "bhopal",
	"visakhapatnam", "pimpri", "patna", "vadodara", "ghaziabad", "ludhiana", "agra", "nashik",
	"faridabad", "meerut", "rajkot", "kalyan", "vasai", "varanasi", "srinagar", "aurangabad",
	"dhanbad", "amritsar", "navi mumbai", "allahabad", "prayagraj", "ranchi", "howrah",
	"coimbatore", "jabalpur", "gwalior", "vijayawada", "jodhpur", "madurai", "raipur", "kota",
	"guwahati", "chandigarh", "solapur", "hubballi", "tiruchirappalli", "bareilly", "mysuru",
	"mysore", "tiruppur", "gurgaon", "gurugram", "aligarh", "jalandhar", "bhubaneswar", "salem",
	"warangal", "guntur", "bhiwandi", "saharanpur", "gorakhpur", "bikaner", "amravati", "noida",
	"jamshedpur", "bhilai", "cuttack", "firozabad", "kochi", "cochin", "nellore", "bhavnagar",
	"dehradun", "durgapur", "asansol",
}

var cuisineVocabulary = []string{
	"indian", "north indian", "south indian", "punjabi", "gujarati", "rajasthani",
	"bengali", "maharashtrian", "tamil", "kerala", "hyderabadi", "lucknowi", "awadhi",
	"mughlai", "tandoor", "biryani", "dosa", "thali",
	"chinese", "italian", "mexican", "thai", "japanese", "korean", "american",
	"continental", "mediterranean", "french", "greek", "turkish", "arabic",
	"lebanese", "persian", "afghan", "tibetan", "burmese", "vietnamese",
	"pizza", "burger", "pasta", "seafood", "sushi", "bbq", "barbecue",
	"street food", "fast food", "fine dining", "casual dining", "buffet",
	"vegetarian", "vegan", "non-vegetarian", "jain", "halal", "kosher",
	"kebab", "tikka", "curry", "dal", "naan", "roti", "paratha",
}

type cuisineTerm struct {
	name    string
	pattern *regexp.Regexp
}

// Built once; places keep gazetteer order, cuisines are longest first.
var (
	gazetteer = buildGazetteer()
	cuisines  = buildCuisines()
)

func buildGazetteer() []place {
	out := make([]place, 0, len(placeNames))
	for _, name := range placeNames {
		canonical, ok := placeAliases[name]
		if !ok {
			canonical = titleCase(name)
		}
		out = append(out, place{
			name:      name,
			canonical: canonical,
			pattern:   regexp.MustCompile(`\b` + regexp.QuoteMeta(name) + `\b`),
		})
	}
	return out
}

func buildCuisines() []cuisineTerm {
	sorted := make([]string, len(cuisineVocabulary))
	copy(sorted, cuisineVocabulary)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i]) > len(sorted[j])
	})

	out := make([]cuisineTerm, 0, len(sorted))
	for _, name := range sorted {
		out = append(out, cuisineTerm{
			name:    name,
			pattern: regexp.MustCompile(`\b` + regexp.QuoteMeta(name) + `(?:s|es)?\b`),
		})
	}
	return out
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
