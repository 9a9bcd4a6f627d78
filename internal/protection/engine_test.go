package protection

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()

	engine, err := NewEngine(Config{Brand: "CreaX"})
	require.NoError(t, err)
	return engine
}

func encodePNG(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 120, A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestProtect_ProducesJPEGWithSameDimensions(t *testing.T) {
	engine := newTestEngine(t)
	src := encodePNG(t, 640, 480)

	out, err := engine.Protect(src, "Some Designer", 2026)
	require.NoError(t, err)
	require.NotEmpty(t, out)

	cfg, format, err := image.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	require.Equal(t, "jpeg", format)
	require.Equal(t, 640, cfg.Width)
	require.Equal(t, 480, cfg.Height)
}

func TestProtect_RejectsUndecodableInput(t *testing.T) {
	engine := newTestEngine(t)

	_, err := engine.Protect([]byte("definitely not an image"), "Some Designer", 2026)
	require.Error(t, err)
}

func TestProtect_OutputIsNotTheSource(t *testing.T) {
	engine := newTestEngine(t)
	src := encodePNG(t, 200, 200)

	out, err := engine.Protect(src, "Some Designer", 2026)
	require.NoError(t, err)
	require.NotEqual(t, src, out)
}

func TestProtect_AcceptsAlreadyProtectedOutput(t *testing.T) {
	engine := newTestEngine(t)
	src := encodePNG(t, 320, 240)

	first, err := engine.Protect(src, "Some Designer", 2026)
	require.NoError(t, err)

	// re-protecting a protected artifact must not fail
	second, err := engine.Protect(first, "Some Designer", 2026)
	require.NoError(t, err)
	require.NotEmpty(t, second)
}

func TestDimensions_FallsBackOnGarbage(t *testing.T) {
	w, h := Dimensions([]byte("garbage"))
	require.Equal(t, defaultWidth, w)
	require.Equal(t, defaultHeight, h)
}

func TestDimensions_ReadsRealMetadata(t *testing.T) {
	src := encodePNG(t, 123, 45)
	w, h := Dimensions(src)
	require.Equal(t, 123, w)
	require.Equal(t, 45, h)
}

func TestBuildOverlay_Deterministic(t *testing.T) {
	a := buildOverlay(800, 600, "CreaX", "Jane Doe", 2026)
	b := buildOverlay(800, 600, "CreaX", "Jane Doe", 2026)
	require.Equal(t, a, b)

	require.Equal(t, "CreaX", a.wordmark)
	require.Equal(t, "CreaX 2026", a.tileTokenA)
	require.Equal(t, "© CreaX 2026", a.tileTokenB)
	require.Equal(t, "PROTECTED VERSION", a.markerLine)
	require.Contains(t, a.bannerText, "CREAX")
}

func TestBuildOverlay_UsesFallbackCanvasForInvalidDimensions(t *testing.T) {
	o := buildOverlay(0, -10, "CreaX", "Jane Doe", 2026)
	require.Equal(t, defaultWidth, o.width)
	require.Equal(t, defaultHeight, o.height)
}

func TestEscapeMarkup(t *testing.T) {
	cases := map[string]string{
		`<script>alert("x")</script>`: "&lt;script&gt;alert(&quot;x&quot;)&lt;/script&gt;",
		"Tom & Jerry":                 "Tom &amp; Jerry",
		"O'Brien":                     "O&#39;Brien",
		"plain name":                  "plain name",
	}

	for in, want := range cases {
		require.Equal(t, want, escapeMarkup(in))
	}
}

func TestBuildOverlay_AttributionIsEscaped(t *testing.T) {
	o := buildOverlay(800, 600, "CreaX", `<b>"evil" & 'name'</b>`, 2026)

	for _, raw := range []string{"<", ">", `"`, "'"} {
		require.NotContains(t, o.attributionLine, raw)
	}
	require.Equal(t, "&lt;b&gt;&quot;evil&quot; &amp; &#39;name&#39;&lt;/b&gt;", o.attributionLine)
}
