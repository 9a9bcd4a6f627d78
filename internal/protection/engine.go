package protection

import (
	"bytes"
	"fmt"
	"image"
	"math"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
)

// Config tunes the protection pipeline. The blur radius is a fixed,
// empirically chosen value, not content-adaptive.
type Config struct {
	Brand       string
	BlurSigma   float64
	JPEGQuality int
}

// Engine turns a source raster image plus an attribution string into a
// preview-safe artifact: blurred, watermarked, and re-encoded at reduced
// quality. Video assets never pass through here; only images are protected.
type Engine struct {
	cfg     Config
	regular *sfnt.Font
	bold    *sfnt.Font
}

func NewEngine(cfg Config) (*Engine, error) {
	if cfg.Brand == "" {
		cfg.Brand = "CreaX"
	}
	if cfg.BlurSigma <= 0 {
		cfg.BlurSigma = 8.0
	}
	if cfg.JPEGQuality < 1 || cfg.JPEGQuality > 100 {
		cfg.JPEGQuality = 62
	}

	regular, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse regular font: %w", err)
	}
	bold, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse bold font: %w", err)
	}

	return &Engine{cfg: cfg, regular: regular, bold: bold}, nil
}

// Dimensions reads the pixel dimensions of an encoded image, falling back to
// 800x600 when the metadata cannot be read.
func Dimensions(src []byte) (int, int) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(src))
	if err != nil || cfg.Width <= 0 || cfg.Height <= 0 {
		return defaultWidth, defaultHeight
	}
	return cfg.Width, cfg.Height
}

// Protect runs the full pipeline: blur, watermark overlay, composite,
// re-encode. Any failure is terminal for the upload; callers must never fall
// back to serving the unprotected source.
func (e *Engine) Protect(src []byte, attribution string, year int) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(src), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode source image: %w", err)
	}

	bounds := img.Bounds()
	ov := buildOverlay(bounds.Dx(), bounds.Dy(), e.cfg.Brand, attribution, year)

	blurred := imaging.Blur(img, e.cfg.BlurSigma)

	layer, err := e.renderOverlay(ov)
	if err != nil {
		return nil, fmt.Errorf("failed to render watermark layer: %w", err)
	}

	composed := imaging.Overlay(blurred, layer, image.Pt(0, 0), 1.0)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, composed, imaging.JPEG, imaging.JPEGQuality(e.cfg.JPEGQuality)); err != nil {
		return nil, fmt.Errorf("failed to encode protected image: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *Engine) face(f *sfnt.Font, size float64) (font.Face, error) {
	return opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

// renderOverlay rasterizes the overlay description onto a transparent layer
// sized to the source image.
func (e *Engine) renderOverlay(ov overlay) (image.Image, error) {
	w := float64(ov.width)
	h := float64(ov.height)
	dc := gg.NewContext(ov.width, ov.height)

	if err := e.drawTiles(dc, ov, w, h); err != nil {
		return nil, err
	}
	if err := e.drawCenter(dc, ov, w, h); err != nil {
		return nil, err
	}
	if err := e.drawCorners(dc, ov, w, h); err != nil {
		return nil, err
	}
	if err := e.drawBanner(dc, ov, w, h); err != nil {
		return nil, err
	}

	return dc.Image(), nil
}

// drawTiles covers the canvas with a rotated repeating pattern of brand+year
// tokens, alternating two token strings row by row, with every other row
// shifted half a step for density.
func (e *Engine) drawTiles(dc *gg.Context, ov overlay, w, h float64) error {
	size := math.Max(14, h/28)
	face, err := e.face(e.regular, size)
	if err != nil {
		return err
	}
	dc.SetFontFace(face)
	dc.SetRGBA(1, 1, 1, 0.28)

	tokenW, _ := dc.MeasureString(ov.tileTokenA)
	stepX := tokenW + size*3
	stepY := size * 4

	dc.Push()
	dc.RotateAbout(gg.Radians(-30), w/2, h/2)

	row := 0
	// overscan so the rotated pattern still covers the corners
	for y := -h; y < 2*h; y += stepY {
		token := ov.tileTokenA
		offset := 0.0
		if row%2 == 1 {
			token = ov.tileTokenB
			offset = stepX / 2
		}
		for x := -w; x < 2*w; x += stepX {
			dc.DrawStringAnchored(token, x+offset, y, 0, 0.5)
		}
		row++
	}

	dc.Pop()
	return nil
}

// drawCenter renders the rotated wordmark in three passes (drop shadow, fill,
// outline) so it stays legible against any background, then the fixed marker
// line and the escaped attribution line beneath it.
func (e *Engine) drawCenter(dc *gg.Context, ov overlay, w, h float64) error {
	cx, cy := w/2, h/2
	wordmarkSize := math.Max(32, w/6)

	face, err := e.face(e.bold, wordmarkSize)
	if err != nil {
		return err
	}
	dc.SetFontFace(face)

	dc.Push()
	dc.RotateAbout(gg.Radians(-30), cx, cy)

	shadow := wordmarkSize / 24
	dc.SetRGBA(0, 0, 0, 0.45)
	dc.DrawStringAnchored(ov.wordmark, cx+shadow, cy+shadow, 0.5, 0.5)

	dc.SetRGBA(1, 1, 1, 0.85)
	dc.DrawStringAnchored(ov.wordmark, cx, cy, 0.5, 0.5)

	outline := math.Max(1, wordmarkSize/48)
	dc.SetRGBA(0.1, 0.1, 0.1, 0.9)
	for _, d := range [][2]float64{{-outline, 0}, {outline, 0}, {0, -outline}, {0, outline}} {
		dc.DrawStringAnchored(ov.wordmark, cx+d[0], cy+d[1], 0.5, 0.5)
	}

	dc.Pop()

	lineSize := math.Max(16, h/24)
	lineFace, err := e.face(e.regular, lineSize)
	if err != nil {
		return err
	}
	dc.SetFontFace(lineFace)
	dc.SetRGBA(1, 1, 1, 0.9)
	dc.DrawStringAnchored(ov.markerLine, cx, cy+wordmarkSize*0.75, 0.5, 0.5)
	dc.DrawStringAnchored(ov.attributionLine, cx, cy+wordmarkSize*0.75+lineSize*1.4, 0.5, 0.5)

	return nil
}

func (e *Engine) drawCorners(dc *gg.Context, ov overlay, w, h float64) error {
	size := math.Max(12, h/40)
	face, err := e.face(e.regular, size)
	if err != nil {
		return err
	}
	dc.SetFontFace(face)
	dc.SetRGBA(1, 1, 1, 0.6)

	margin := size
	dc.DrawStringAnchored(ov.cornerLabel, margin, margin, 0, 1)
	dc.DrawStringAnchored(ov.cornerLabel, w-margin, margin, 1, 1)
	dc.DrawStringAnchored(ov.cornerLabel, margin, h-margin, 0, 0)
	dc.DrawStringAnchored(ov.cornerLabel, w-margin, h-margin, 1, 0)

	return nil
}

// drawBanner paints the opaque full-width bottom strip carrying the download
// prohibition, the one element that must not blend with the image.
func (e *Engine) drawBanner(dc *gg.Context, ov overlay, w, h float64) error {
	bannerH := math.Max(36, h/12)
	dc.SetRGBA(0, 0, 0, 1)
	dc.DrawRectangle(0, h-bannerH, w, bannerH)
	dc.Fill()

	face, err := e.face(e.bold, bannerH*0.38)
	if err != nil {
		return err
	}
	dc.SetFontFace(face)
	dc.SetRGBA(1, 1, 1, 1)
	dc.DrawStringAnchored(ov.bannerText, w/2, h-bannerH/2, 0.5, 0.5)

	return nil
}
