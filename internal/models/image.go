package models

import (
	"fmt"
	"strings"
	"time"
)

// StyleIntensity controls how strongly the paper-art style is applied.
type StyleIntensity string

const (
	IntensitySubtle   StyleIntensity = "subtle"
	IntensityModerate StyleIntensity = "moderate"
	IntensityStrong   StyleIntensity = "strong"
	IntensityExtreme  StyleIntensity = "extreme"
)

// StyleIntensities lists every intensity in display order.
var StyleIntensities = []StyleIntensity{
	IntensitySubtle,
	IntensityModerate,
	IntensityStrong,
	IntensityExtreme,
}

// Valid reports whether s is a known intensity.
func (s StyleIntensity) Valid() bool {
	for _, v := range StyleIntensities {
		if v == s {
			return true
		}
	}
	return false
}

// Label returns the capitalized display name.
func (s StyleIntensity) Label() string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(string(s[:1])) + string(s[1:])
}

// ArtStyle is the transformation style. Only paper art exists today.
type ArtStyle string

// ArtStylePaper is the paper-art style.
const ArtStylePaper ArtStyle = "paper"

// AspectRatio selects the output dimensions of a generated image.
type AspectRatio string

// Dimensions is a pixel size.
type Dimensions struct {
	Width  int
	Height int
}

// AspectRatioOption describes one output preset.
type AspectRatioOption struct {
	Ratio AspectRatio
	Label string
	Size  Dimensions
}

// DefaultAspectRatio is used when a ratio is unknown.
const DefaultAspectRatio AspectRatio = "1:1"

// AspectRatios lists the supported presets in display order.
var AspectRatios = []AspectRatioOption{
	// Mobile devices
	{"9:16", "Mobile Portrait (9:16)", Dimensions{1080, 1920}},
	{"16:9", "Mobile Landscape (16:9)", Dimensions{1920, 1080}},
	{"9:18", "Mobile Long (9:18)", Dimensions{1080, 2160}},
	// Tablets
	{"3:4", "Tablet Portrait (3:4)", Dimensions{1536, 2048}},
	{"4:3", "Tablet Landscape (4:3)", Dimensions{2048, 1536}},
	// Desktop
	{"16:10", "Desktop (16:10)", Dimensions{1920, 1200}},
	{"21:9", "Ultrawide (21:9)", Dimensions{2560, 1080}},
	{"1:1", "Square (1:1)", Dimensions{1024, 1024}},
	// 4K
	{"16:9-4k", "4K Desktop (16:9)", Dimensions{3840, 2160}},
	{"21:9-4k", "4K Ultrawide (21:9)", Dimensions{5120, 2160}},
	{"9:16-4k", "4K Mobile (9:16)", Dimensions{2160, 3840}},
	// Watches
	{"1:1-watch", "Watch Square", Dimensions{312, 312}},
	{"watch-round", "Watch Round (1:1)", Dimensions{360, 360}},
	// Social media
	{"instagram", "Instagram Square", Dimensions{1080, 1080}},
	{"instagram-story", "Instagram Story", Dimensions{1080, 1920}},
	{"youtube-thumb", "YouTube Thumbnail", Dimensions{1280, 720}},
}

// Option returns the preset for r, falling back to the square preset.
func (r AspectRatio) Option() AspectRatioOption {
	for _, opt := range AspectRatios {
		if opt.Ratio == r {
			return opt
		}
	}
	for _, opt := range AspectRatios {
		if opt.Ratio == DefaultAspectRatio {
			return opt
		}
	}
	return AspectRatioOption{Ratio: DefaultAspectRatio, Size: Dimensions{1024, 1024}}
}

// Size returns the pixel dimensions for r.
func (r AspectRatio) Size() Dimensions {
	return r.Option().Size
}

// Display returns "Label - WxH".
func (o AspectRatioOption) Display() string {
	return fmt.Sprintf("%s - %dx%d", o.Label, o.Size.Width, o.Size.Height)
}

// ImageHistoryItem is a generated image kept in local history.
type ImageHistoryItem struct {
	ID        string `json:"id"`
	URL       string `json:"url"`
	Prompt    string `json:"prompt"`
	Timestamp string `json:"timestamp"`
	UserID    string `json:"userId,omitempty"`
}

// CreatedAt parses the stored RFC 3339 timestamp. Zero on failure.
func (i ImageHistoryItem) CreatedAt() time.Time {
	t, err := time.Parse(time.RFC3339, i.Timestamp)
	if err != nil {
		return time.Time{}
	}
	return t
}

// UserPreferences are the remembered generator settings.
type UserPreferences struct {
	StyleIntensity StyleIntensity `json:"styleIntensity"`
	AspectRatio    AspectRatio    `json:"aspectRatio"`
	Timestamp      string         `json:"timestamp"`
}

// DefaultPreferences returns the settings used before anything is saved.
func DefaultPreferences() UserPreferences {
	return UserPreferences{
		StyleIntensity: IntensityModerate,
		AspectRatio:    DefaultAspectRatio,
	}
}

// LandingPageState is the saved browsing checkpoint for the gallery.
type LandingPageState struct {
	CurrentIndex int    `json:"currentIndex"`
	Timestamp    string `json:"timestamp"`
}

// UserSession is the locally remembered signed-in user.
type UserSession struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Provider string `json:"provider,omitempty"`
	SignedIn string `json:"signedIn"`
}
