package badge

import (
	"encoding/base64"
	"fmt"
	"math"
	"strings"
)

const (
	badgeHeight  = 20
	textPadding  = 10
	labelFill    = "#555"
	shadowFill   = "#010101"
	shadowOpaque = ".3"
)

// renderSVG produces a flat shields-style SVG with the font embedded, so the
// badge renders identically wherever it is viewed.
func (e *Engine) renderSVG(b Badge) string {
	lw := e.segmentWidth(b.Label)
	vw := e.segmentWidth(b.Value)
	total := lw + vw

	var s strings.Builder
	fmt.Fprintf(&s, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" role="img" aria-label="%s">`,
		total, badgeHeight, xmlEscape(b.Label+": "+b.Value))
	fmt.Fprintf(&s, `<title>%s</title>`, xmlEscape(b.Label+": "+b.Value))

	s.WriteString(`<defs>`)
	fmt.Fprintf(&s, `<style type="text/css">%s</style>`, fontFaceCSS(e.metrics.FontName(), e.metrics.FontData()))
	s.WriteString(`<linearGradient id="s" x2="0" y2="100%">`)
	s.WriteString(`<stop offset="0" stop-color="#bbb" stop-opacity=".1"/><stop offset="1" stop-opacity=".1"/>`)
	s.WriteString(`</linearGradient>`)
	fmt.Fprintf(&s, `<clipPath id="r"><rect width="%d" height="%d" rx="3" fill="#fff"/></clipPath>`, total, badgeHeight)
	s.WriteString(`</defs>`)

	s.WriteString(`<g clip-path="url(#r)">`)
	fmt.Fprintf(&s, `<rect width="%d" height="%d" fill="%s"/>`, lw, badgeHeight, labelFill)
	fmt.Fprintf(&s, `<rect x="%d" width="%d" height="%d" fill="%s"/>`, lw, vw, badgeHeight, xmlEscape(b.Color))
	fmt.Fprintf(&s, `<rect width="%d" height="%d" fill="url(#s)"/>`, total, badgeHeight)
	s.WriteString(`</g>`)

	family := fmt.Sprintf("'%s',Verdana,Geneva,sans-serif", e.metrics.FontName())
	fmt.Fprintf(&s, `<g fill="#fff" text-anchor="middle" font-family="%s" font-size="%g">`,
		xmlEscape(family), e.metrics.FontSize())
	writeShadowedText(&s, lw/2, b.Label)
	writeShadowedText(&s, lw+vw/2, b.Value)
	s.WriteString(`</g></svg>`)
	return s.String()
}

func (e *Engine) segmentWidth(text string) int {
	return int(math.Round(e.metrics.TextWidth(text))) + textPadding
}

func writeShadowedText(s *strings.Builder, x int, text string) {
	t := xmlEscape(text)
	fmt.Fprintf(s, `<text x="%d" y="15" fill="%s" fill-opacity="%s">%s</text>`, x, shadowFill, shadowOpaque, t)
	fmt.Fprintf(s, `<text x="%d" y="14">%s</text>`, x, t)
}

// fontFaceCSS returns a CSS @font-face rule with the font embedded as base64.
func fontFaceCSS(name string, data []byte) string {
	format, css := "ttf", "truetype"
	if len(data) >= 4 && string(data[:4]) == "OTTO" {
		format, css = "otf", "opentype"
	}
	return fmt.Sprintf(`@font-face{font-family:'%s';src:url(data:font/%s;base64,%s) format('%s')}`,
		name, format, base64.StdEncoding.EncodeToString(data), css)
}

var xmlReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	"'", "&apos;",
	`"`, "&quot;",
)

func xmlEscape(s string) string {
	return xmlReplacer.Replace(s)
}
