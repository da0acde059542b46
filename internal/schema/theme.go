package schema

// Theme is a server-authored styling document. Options is the primary
// token surface consulted by the resolver; Colors is the fixed legacy
// palette consulted after it.
type Theme struct {
	Name    string        `json:"name,omitempty"`
	Colors  Palette       `json:"colors,omitempty"`
	Options []ThemeOption `json:"options,omitempty"`
}

// Palette is the fixed set of named colors a theme may carry.
type Palette struct {
	Background    string `json:"background,omitempty"`
	Foreground    string `json:"foreground,omitempty"`
	Primary       string `json:"primary,omitempty"`
	PrimaryText   string `json:"primaryText,omitempty"`
	Secondary     string `json:"secondary,omitempty"`
	SecondaryText string `json:"secondaryText,omitempty"`
	Border        string `json:"border,omitempty"`
	Accent        string `json:"accent,omitempty"`
}

// ThemeOption is one key/value style token. Order matters: earlier options
// win when candidates tie.
type ThemeOption struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Option returns the value for key, skipping entries whose value is empty.
func (t *Theme) Option(key string) (string, bool) {
	if t == nil {
		return "", false
	}
	for _, opt := range t.Options {
		if opt.Key == key && opt.Value != "" {
			return opt.Value, true
		}
	}
	return "", false
}
