// ABOUTME: Digital clock renderer drawing large HH:MM:SS glyphs
// ABOUTME: Falls back to plain text when the terminal is too narrow
package ui

import (
	"fmt"
	"strings"
)

// glyphs is a 5-row banner font for the characters a clock needs.
var glyphs = map[rune][5]string{
	'0': {"█████", "█   █", "█   █", "█   █", "█████"},
	'1': {"  █  ", " ██  ", "  █  ", "  █  ", "█████"},
	'2': {"█████", "    █", "█████", "█    ", "█████"},
	'3': {"█████", "    █", " ████", "    █", "█████"},
	'4': {"█   █", "█   █", "█████", "    █", "    █"},
	'5': {"█████", "█    ", "█████", "    █", "█████"},
	'6': {"█████", "█    ", "█████", "█   █", "█████"},
	'7': {"█████", "    █", "   █ ", "  █  ", "  █  "},
	'8': {"█████", "█   █", "█████", "█   █", "█████"},
	'9': {"█████", "█   █", "█████", "    █", "█████"},
	':': {"     ", "  █  ", "     ", "  █  ", "     "},
}

const (
	glyphWidth  = 5
	glyphHeight = 5
	glyphGap    = 1
)

// bannerWidth is the rendered width of HH:MM:SS in the banner font.
const bannerWidth = 8*glyphWidth + 7*glyphGap

// renderDigital draws the current display time. The digit change was
// already aligned to the second boundary by the session; this is pure
// presentation.
func (m Model) renderDigital() string {
	if !m.haveFrame {
		return m.styles.dim.Render("  --:--:--") + "\n"
	}

	text := fmt.Sprintf("%02d:%02d:%02d", m.frame.Hour, m.frame.Minute, m.frame.Second)

	style := m.styles.hand
	if m.frame.Dim {
		style = m.styles.dim
	} else if m.frame.Highlight {
		// Watch-sync aid: emphasized on every fifth second.
		style = m.styles.accent
	}

	if m.width < bannerWidth+2 || m.height < glyphHeight+5 {
		return "  " + style.Render(text) + "\n"
	}

	banner := renderBanner(text)
	pad := (m.width - bannerWidth) / 2
	if pad < 0 {
		pad = 0
	}

	var b strings.Builder
	for _, row := range banner {
		b.WriteString(strings.Repeat(" ", pad))
		b.WriteString(style.Render(row))
		b.WriteByte('\n')
	}
	return b.String()
}

// renderBanner lays the text out in the banner font, row by row.
func renderBanner(text string) []string {
	rows := make([]string, glyphHeight)
	for row := 0; row < glyphHeight; row++ {
		var b strings.Builder
		for i, ch := range text {
			glyph, ok := glyphs[ch]
			if !ok {
				glyph = glyphs[':']
			}
			if i > 0 {
				b.WriteString(strings.Repeat(" ", glyphGap))
			}
			b.WriteString(glyph[row])
		}
		rows[row] = b.String()
	}
	return rows
}
