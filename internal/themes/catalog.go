package themes

// Style bundles every visual attribute a rendered page needs, fully resolved.
type Style struct {
	Background   string `json:"background"`
	ButtonBg     string `json:"button_bg"`
	ButtonBorder string `json:"button_border"`
	ButtonText   string `json:"button_text"`
	ButtonHover  string `json:"button_hover"`
	ProfileBg    string `json:"profile_bg"`
	Animation    string `json:"animation"`
	BoxShadow    string `json:"box_shadow,omitempty"`
}

// Theme is one catalog entry. Entries are immutable; the catalog is never
// mutated at runtime.
type Theme struct {
	Key     string `json:"key"`
	Name    string `json:"name"`
	Preview string `json:"preview"`
	Free    bool   `json:"free"`
	Style   Style  `json:"style"`
}

// DefaultKey names the catalog entry substituted whenever a profile references
// an unknown or empty theme. It must always resolve.
const DefaultKey = "minimal"

var catalogOrder = []string{
	"minimal", "gradient", "neon", "ocean", "sunset",
	"forest", "rose", "midnight", "candy", "cosmic",
}

var catalog = map[string]Theme{
	"minimal": {
		Key: "minimal", Name: "Minimal", Preview: "🎨", Free: true,
		Style: Style{
			Background:   "linear-gradient(135deg, #667eea 0%, #764ba2 100%)",
			ButtonBg:     "rgba(255, 255, 255, 0.2)",
			ButtonBorder: "2px solid rgba(255, 255, 255, 0.3)",
			ButtonText:   "#ffffff",
			ButtonHover:  "rgba(255, 255, 255, 0.3)",
			ProfileBg:    "rgba(255, 255, 255, 0.1)",
			Animation:    "fade-in",
		},
	},
	"gradient": {
		Key: "gradient", Name: "Gradient", Preview: "🌈", Free: true,
		Style: Style{
			Background:   "linear-gradient(to right, #fa709a 0%, #fee140 100%)",
			ButtonBg:     "rgba(255, 255, 255, 0.25)",
			ButtonBorder: "2px solid rgba(255, 255, 255, 0.4)",
			ButtonText:   "#ffffff",
			ButtonHover:  "rgba(255, 255, 255, 0.35)",
			ProfileBg:    "rgba(255, 255, 255, 0.15)",
			Animation:    "slide-up",
		},
	},
	"neon": {
		Key: "neon", Name: "Neon", Preview: "⚡", Free: true,
		Style: Style{
			Background:   "linear-gradient(135deg, #000000 0%, #434343 100%)",
			ButtonBg:     "rgba(139, 92, 246, 0.3)",
			ButtonBorder: "2px solid #8b5cf6",
			ButtonText:   "#ffffff",
			ButtonHover:  "rgba(139, 92, 246, 0.5)",
			ProfileBg:    "rgba(139, 92, 246, 0.2)",
			Animation:    "bounce-in",
			BoxShadow:    "0 0 20px rgba(139, 92, 246, 0.5)",
		},
	},
	"ocean": {
		Key: "ocean", Name: "Ocean", Preview: "🌊", Free: true,
		Style: Style{
			Background:   "linear-gradient(135deg, #667eea 0%, #764ba2 100%)",
			ButtonBg:     "rgba(255, 255, 255, 0.2)",
			ButtonBorder: "2px solid rgba(255, 255, 255, 0.3)",
			ButtonText:   "#ffffff",
			ButtonHover:  "rgba(255, 255, 255, 0.3)",
			ProfileBg:    "rgba(255, 255, 255, 0.1)",
			Animation:    "fade-in",
		},
	},
	"sunset": {
		Key: "sunset", Name: "Sunset", Preview: "🌅", Free: true,
		Style: Style{
			Background:   "linear-gradient(to top, #ff9a56 0%, #ff6a88 55%, #ff99ac 100%)",
			ButtonBg:     "rgba(255, 255, 255, 0.25)",
			ButtonBorder: "2px solid rgba(255, 255, 255, 0.4)",
			ButtonText:   "#ffffff",
			ButtonHover:  "rgba(255, 255, 255, 0.35)",
			ProfileBg:    "rgba(255, 255, 255, 0.15)",
			Animation:    "slide-up",
		},
	},
	"forest": {
		Key: "forest", Name: "Forest", Preview: "🌲", Free: true,
		Style: Style{
			Background:   "linear-gradient(120deg, #134e5e 0%, #71b280 100%)",
			ButtonBg:     "rgba(255, 255, 255, 0.2)",
			ButtonBorder: "2px solid rgba(255, 255, 255, 0.3)",
			ButtonText:   "#ffffff",
			ButtonHover:  "rgba(255, 255, 255, 0.3)",
			ProfileBg:    "rgba(255, 255, 255, 0.1)",
			Animation:    "fade-in",
		},
	},
	"rose": {
		Key: "rose", Name: "Rose Gold", Preview: "🌹", Free: false,
		Style: Style{
			Background:   "linear-gradient(135deg, #f093fb 0%, #f5576c 100%)",
			ButtonBg:     "rgba(255, 255, 255, 0.25)",
			ButtonBorder: "2px solid rgba(255, 255, 255, 0.4)",
			ButtonText:   "#ffffff",
			ButtonHover:  "rgba(255, 255, 255, 0.35)",
			ProfileBg:    "rgba(255, 255, 255, 0.15)",
			Animation:    "bounce-in",
			BoxShadow:    "0 5px 15px rgba(245, 87, 108, 0.3)",
		},
	},
	"midnight": {
		Key: "midnight", Name: "Midnight", Preview: "🌙", Free: false,
		Style: Style{
			Background:   "linear-gradient(to top, #09203f 0%, #537895 100%)",
			ButtonBg:     "rgba(255, 255, 255, 0.15)",
			ButtonBorder: "2px solid rgba(255, 255, 255, 0.25)",
			ButtonText:   "#ffffff",
			ButtonHover:  "rgba(255, 255, 255, 0.25)",
			ProfileBg:    "rgba(255, 255, 255, 0.1)",
			Animation:    "float",
			BoxShadow:    "0 5px 15px rgba(0, 0, 0, 0.3)",
		},
	},
	"candy": {
		Key: "candy", Name: "Candy", Preview: "🍭", Free: false,
		Style: Style{
			Background:   "linear-gradient(to right, #ff9a9e 0%, #fecfef 50%, #fda085 100%)",
			ButtonBg:     "rgba(255, 255, 255, 0.3)",
			ButtonBorder: "2px solid rgba(255, 255, 255, 0.5)",
			ButtonText:   "#ffffff",
			ButtonHover:  "rgba(255, 255, 255, 0.4)",
			ProfileBg:    "rgba(255, 255, 255, 0.2)",
			Animation:    "bounce-in",
			BoxShadow:    "0 5px 15px rgba(255, 154, 158, 0.3)",
		},
	},
	"cosmic": {
		Key: "cosmic", Name: "Cosmic", Preview: "✨", Free: false,
		Style: Style{
			Background:   "linear-gradient(135deg, #667eea 0%, #764ba2 50%, #f093fb 100%)",
			ButtonBg:     "rgba(255, 255, 255, 0.2)",
			ButtonBorder: "2px solid rgba(255, 255, 255, 0.35)",
			ButtonText:   "#ffffff",
			ButtonHover:  "rgba(255, 255, 255, 0.3)",
			ProfileBg:    "rgba(255, 255, 255, 0.15)",
			Animation:    "float",
			BoxShadow:    "0 0 30px rgba(102, 126, 234, 0.4)",
		},
	},
}

// Resolve looks up a theme by key. The boolean reports whether the key exists.
func Resolve(key string) (Theme, bool) {
	theme, ok := catalog[key]
	return theme, ok
}

// Default returns the catalog's designated fallback theme.
func Default() Theme {
	return catalog[DefaultKey]
}

// All returns every catalog entry in stable display order.
func All() []Theme {
	entries := make([]Theme, 0, len(catalogOrder))
	for _, key := range catalogOrder {
		entries = append(entries, catalog[key])
	}
	return entries
}
