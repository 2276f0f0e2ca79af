package stats

import "strings"

// Appearance is the icon and colour a chart shows for a category.
type Appearance struct {
	Icon  string `json:"icon" mapstructure:"icon"`
	Color string `json:"color" mapstructure:"color"`
}

// KeywordRule maps free-text category names containing any of Keywords to
// an icon. Rules are tried in order; the first match wins.
type KeywordRule struct {
	Keywords []string `json:"keywords" mapstructure:"keywords"`
	Icon     string   `json:"icon" mapstructure:"icon"`
	Color    string   `json:"color,omitempty" mapstructure:"color"`
}

// DefaultFallback is used for categories no rule recognises.
var DefaultFallback = Appearance{Icon: "✨", Color: "#94a3b8"}

// DefaultKeywordRules returns the built-in rule table.
func DefaultKeywordRules() []KeywordRule {
	return []KeywordRule{
		{Keywords: []string{"吃", "餐"}, Icon: "🍔"},
		{Keywords: []string{"车", "行"}, Icon: "🚕"},
		{Keywords: []string{"房", "租"}, Icon: "🏠"},
	}
}

// MatchKeyword returns the appearance of the first rule with a keyword
// contained in name. A rule without colour takes the fallback colour.
func MatchKeyword(rules []KeywordRule, name string, fallback Appearance) Appearance {
	for _, r := range rules {
		for _, kw := range r.Keywords {
			if kw == "" || !strings.Contains(name, kw) {
				continue
			}
			ap := Appearance{Icon: r.Icon, Color: r.Color}
			if ap.Color == "" {
				ap.Color = fallback.Color
			}
			return ap
		}
	}
	return fallback
}
