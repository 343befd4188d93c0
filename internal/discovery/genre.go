package discovery

import "strings"

// GenreOther is returned when nothing else identifies an artist's genre.
const GenreOther = "Other"

// knownGenres maps lowercase artist names to a curated genre.
var knownGenres = map[string]string{
	"kabza de small":          "Amapiano",
	"dj maphorisa":            "Amapiano",
	"focalistic":              "Amapiano",
	"uncle waffles":           "Amapiano",
	"vigro deep":              "Amapiano",
	"tyler icu":               "Amapiano",
	"de mthuda":               "Amapiano",
	"dbn gogo":                "Amapiano",
	"kelvin momo":             "Amapiano",
	"musa keys":               "Amapiano",
	"young stunna":            "Amapiano",
	"daliwonga":               "Amapiano",
	"busta 929":               "Amapiano",
	"mr jazziq":               "Amapiano",
	"lady du":                 "Amapiano",
	"sha sha":                 "Amapiano",
	"boohle":                  "Amapiano",
	"ami faku":                "Afro Pop",
	"tyla":                    "Afro Pop",
	"brenda fassie":           "Afro Pop",
	"yvonne chaka chaka":      "Afro Pop",
	"lira":                    "Afro Pop",
	"zahara":                  "Afro Pop",
	"miriam makeba":           "Afro Pop",
	"mafikizolo":              "Afro Pop",
	"freshlyground":           "Afro Pop",
	"nasty c":                 "Hip Hop",
	"cassper nyovest":         "Hip Hop",
	"a-reece":                 "Hip Hop",
	"emtee":                   "Hip Hop",
	"shane eagle":             "Hip Hop",
	"kwesta":                  "Hip Hop",
	"nadia nakai":             "Hip Hop",
	"youngstacpt":             "Hip Hop",
	"k.o":                     "Hip Hop",
	"aka":                     "Hip Hop",
	"riky rick":               "Hip Hop",
	"stogie t":                "Hip Hop",
	"priddy ugly":             "Hip Hop",
	"blxckie":                 "Hip Hop",
	"costa titch":             "Hip Hop",
	"black coffee":            "House",
	"nomcebo zikode":          "House",
	"master kg":               "House",
	"zakes bantwini":          "Afro House",
	"shimza":                  "Afro House",
	"culoe de song":           "Afro House",
	"da capo":                 "Afro House",
	"caiiro":                  "Afro House",
	"enoo napa":               "Afro House",
	"black motion":            "Afro House",
	"oskido":                  "Kwaito",
	"arthur mafokate":         "Kwaito",
	"mandoza":                 "Kwaito",
	"trompies":                "Kwaito",
	"bongo maffin":            "Kwaito",
	"boom shaka":              "Kwaito",
	"mzekezeke":               "Kwaito",
	"dj cleo":                 "Kwaito",
	"makhadzi":                "Lekompo",
	"babes wodumo":            "Gqom",
	"dj lag":                  "Gqom",
	"dj tira":                 "Gqom",
	"sjava":                   "Maskandi",
	"ladysmith black mambazo": "Maskandi",
	"ihashi elimhlophe":       "Maskandi",
	"benjamin dube":           "Gospel",
	"rebecca malope":          "Gospel",
	"joyous celebration":      "Gospel",
	"sipho makhabane":         "Gospel",
	"hle":                     "Gospel",
	"omega khunou":            "Gospel",
	"hugh masekela":           "Jazz",
	"abdullah ibrahim":        "Jazz",
	"jonas gwangwa":           "Jazz",
	"jonathan butler":         "Jazz",
	"johnny clegg":            "Rock",
	"locusts":                 "Rock",
	"seether":                 "Rock",
	"civil twilight":          "Rock",
	"parlotones":              "Rock",
	"die antwoord":            "Electronic",
	"goldfish":                "Electronic",
}

// genreHint lists substrings of a disambiguation comment that suggest a genre.
type genreHint struct {
	genre    string
	triggers []string
}

// genreHints is scanned in order; the first genre with a matching trigger wins.
var genreHints = []genreHint{
	{"Amapiano", []string{"amapiano", "piano", "log drum", "yanos"}},
	{"House", []string{"house", "deep house", "soulful house"}},
	{"Afro House", []string{"afro house", "afro tech"}},
	{"Hip Hop", []string{"hip hop", "rap", "hip-hop", "mc", "rapper", "emcee"}},
	{"Afro Pop", []string{"afro pop", "afropop", "r&b", "pop", "afro soul"}},
	{"Gqom", []string{"gqom", "durban"}},
	{"Kwaito", []string{"kwaito"}},
	{"Maskandi", []string{"maskandi", "zulu traditional", "isicathamiya"}},
	{"Gospel", []string{"gospel", "worship", "christian", "praise", "church"}},
	{"Lekompo", []string{"lekompo", "bolobedu"}},
	{"Jazz", []string{"jazz"}},
	{"Reggae", []string{"reggae", "dancehall"}},
	{"Rock", []string{"rock", "metal", "punk", "alternative"}},
	{"Electronic", []string{"electronic", "edm", "techno", "trance"}},
}

// Classify assigns exactly one genre. The curated table is consulted with
// the source name, then the matched name; then the disambiguation text is
// scanned for hints; otherwise GenreOther.
func Classify(sourceName, matchedName, disambiguation string) string {
	if g, ok := knownGenre(sourceName); ok {
		return g
	}
	if g, ok := knownGenre(matchedName); ok {
		return g
	}

	d := strings.ToLower(disambiguation)
	if d != "" {
		for _, h := range genreHints {
			for _, trigger := range h.triggers {
				if strings.Contains(d, trigger) {
					return h.genre
				}
			}
		}
	}
	return GenreOther
}

func knownGenre(name string) (string, bool) {
	g, ok := knownGenres[strings.ToLower(strings.TrimSpace(name))]
	return g, ok
}
