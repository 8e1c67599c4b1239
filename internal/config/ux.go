package config

import "time"

// UIConfig holds user interface configuration.
type UIConfig struct {
	// SearchDebounce delays re-filtering the list while the user is typing.
	SearchDebounce string `yaml:"search_debounce"`

	// DarkMode selects the dark palette
	DarkMode bool `yaml:"dark_mode"`

	// ListHeight is the number of list rows shown at once (0 = fit terminal)
	ListHeight int `yaml:"list_height,omitempty"`
}

// DefaultUIConfig returns sensible UI defaults.
func DefaultUIConfig() *UIConfig {
	return &UIConfig{
		SearchDebounce: "150ms",
		DarkMode:       false,
		ListHeight:     0,
	}
}

// GetSearchDebounce returns the search debounce as a duration.
func (c *UIConfig) GetSearchDebounce() time.Duration {
	d, err := time.ParseDuration(c.SearchDebounce)
	if err != nil || d < 0 {
		return 150 * time.Millisecond
	}
	return d
}
