package protection

import (
	"fmt"
	"strings"
)

// Fallback canvas when the source dimensions cannot be read.
const (
	defaultWidth  = 800
	defaultHeight = 600
)

// markerText is the fixed "protected version" line rendered under the
// wordmark on every protected preview.
const markerText = "PROTECTED VERSION"

// bannerFormat is the full-width bottom banner. The brand is interpolated so
// the message survives cropping of any other layer.
const bannerFormat = "DOWNLOAD FORBIDDEN - UNLOCKED AFTER PAYMENT ON %s"

// overlay describes every visible element of the watermark layer. It is a
// pure function of (dimensions, brand, attribution, year), which keeps the
// rendered content deterministic and testable independently of rasterization.
type overlay struct {
	width  int
	height int

	// diagonal tiling, two tokens alternating row by row
	tileTokenA string
	tileTokenB string

	wordmark        string
	markerLine      string
	attributionLine string
	cornerLabel     string
	bannerText      string
}

func buildOverlay(width, height int, brand, attribution string, year int) overlay {
	if width <= 0 {
		width = defaultWidth
	}
	if height <= 0 {
		height = defaultHeight
	}

	token := fmt.Sprintf("%s %d", brand, year)

	return overlay{
		width:           width,
		height:          height,
		tileTokenA:      token,
		tileTokenB:      fmt.Sprintf("© %s %d", brand, year),
		wordmark:        brand,
		markerLine:      markerText,
		attributionLine: escapeMarkup(attribution),
		cornerLabel:     token,
		bannerText:      fmt.Sprintf(bannerFormat, strings.ToUpper(brand)),
	}
}

var markupEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

// escapeMarkup neutralizes markup special characters in attacker-supplied
// attribution text before it is embedded in the watermark layer.
func escapeMarkup(s string) string {
	return markupEscaper.Replace(s)
}
