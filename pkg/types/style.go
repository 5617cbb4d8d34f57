// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// RGB is a 24-bit color.
type RGB struct {
	R uint8 `json:"r" yaml:"r"`
	G uint8 `json:"g" yaml:"g"`
	B uint8 `json:"b" yaml:"b"`
}

// FontStyle describes the font for one text category (title or body).
type FontStyle struct {
	// Name is the font family name (e.g. "HPE Graphik").
	Name string `json:"name" yaml:"name"`

	// FallbackName is used when the primary family is unavailable.
	FallbackName string `json:"fallback_name" yaml:"fallback_name"`

	// Bold and Italic flags.
	Bold   bool `json:"bold" yaml:"bold"`
	Italic bool `json:"italic" yaml:"italic"`

	// Color is an optional color override; nil means the theme default.
	Color *RGB `json:"color,omitempty" yaml:"color,omitempty"`
}

// StyleConfig is the resolved font/color configuration for one conversion
// run. Immutable once resolved; shared read-only across all pages.
type StyleConfig struct {
	Title FontStyle `json:"title" yaml:"title"`
	Body  FontStyle `json:"body" yaml:"body"`

	// Source records where the configuration came from: a template path,
	// or "defaults".
	Source string `json:"source" yaml:"source"`
}

// Brand default font families, applied when no template is available.
const (
	DefaultTitleFont    = "HPE Graphik Semibold"
	DefaultBodyFont     = "HPE Graphik"
	DefaultFallbackFont = "Arial"
)

// DefaultStyle returns the brand-default style configuration.
func DefaultStyle() StyleConfig {
	return StyleConfig{
		Title: FontStyle{
			Name:         DefaultTitleFont,
			FallbackName: DefaultFallbackFont,
			Bold:         true,
		},
		Body: FontStyle{
			Name:         DefaultBodyFont,
			FallbackName: DefaultFallbackFont,
		},
		Source: "defaults",
	}
}
