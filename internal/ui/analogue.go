// ABOUTME: Analogue clock renderer drawing a dial and three hands
// ABOUTME: Hand positions come straight from the phase-locked oscillator angles
package ui

import (
	"math"
	"strings"
)

// cell paint classes for the dial canvas.
const (
	paintNone byte = iota
	paintFace
	paintHand
	paintAccent
)

// renderAnalogue draws the dial sized to the current terminal.
func (m Model) renderAnalogue() string {
	radius := m.dialRadius()
	if radius < 4 {
		return m.renderDigital()
	}
	if !m.haveFrame {
		return m.styles.dim.Render("  (waiting for sync)") + "\n"
	}

	canvas, paint := newCanvas(radius)
	drawMarkers(canvas, paint, radius)
	// Hour under minute under second, so the faster hand wins a cell.
	drawHand(canvas, paint, radius, m.frame.HourDeg, 0.55, '█', paintHand)
	drawHand(canvas, paint, radius, m.frame.MinuteDeg, 0.85, '▓', paintHand)
	drawHand(canvas, paint, radius, m.frame.SecondDeg, 0.95, '·', paintAccent)
	canvas[radius][2*radius] = '●'
	paint[radius][2*radius] = paintHand

	return m.paintCanvas(canvas, paint)
}

// dialRadius fits the dial into the space left by status and help lines.
// Terminal cells are roughly twice as tall as wide, so the canvas is
// 4r+1 columns by 2r+1 rows.
func (m Model) dialRadius() int {
	byHeight := (m.height - 7) / 2
	byWidth := (m.width - 4) / 4
	r := byHeight
	if byWidth < r {
		r = byWidth
	}
	return r
}

func newCanvas(radius int) ([][]rune, [][]byte) {
	rows := 2*radius + 1
	cols := 4*radius + 1
	canvas := make([][]rune, rows)
	paint := make([][]byte, rows)
	for i := range canvas {
		canvas[i] = make([]rune, cols)
		paint[i] = make([]byte, cols)
		for j := range canvas[i] {
			canvas[i][j] = ' '
		}
	}
	return canvas, paint
}

// drawMarkers places the twelve hour markers on the rim.
func drawMarkers(canvas [][]rune, paint [][]byte, radius int) {
	for i := 0; i < 12; i++ {
		deg := float64(i) * 30
		row, col := dialCell(radius, deg, 1.0)
		mark := '·'
		if i%3 == 0 {
			mark = '○'
		}
		canvas[row][col] = mark
		paint[row][col] = paintFace
	}
}

// drawHand draws a hand from the center outward at the given angle.
func drawHand(canvas [][]rune, paint [][]byte, radius int, deg, length float64, ch rune, class byte) {
	steps := radius * 4
	for i := 1; i <= steps; i++ {
		f := length * float64(i) / float64(steps)
		row, col := dialCell(radius, deg, f)
		canvas[row][col] = ch
		paint[row][col] = class
	}
}

// dialCell maps an angle (degrees clockwise from 12) and a radial
// fraction to a canvas cell.
func dialCell(radius int, deg, fraction float64) (row, col int) {
	rad := deg * math.Pi / 180
	x := math.Sin(rad) * fraction
	y := -math.Cos(rad) * fraction
	row = radius + int(math.Round(y*float64(radius)))
	col = 2*radius + int(math.Round(x*float64(radius)*2))
	return row, col
}

// paintCanvas applies styles per paint class and centers the dial.
func (m Model) paintCanvas(canvas [][]rune, paint [][]byte) string {
	handStyle := m.styles.hand
	accentStyle := m.styles.accent
	if m.frame.Dim {
		handStyle = m.styles.dim
		accentStyle = m.styles.dim
	}

	pad := (m.width - len(canvas[0])) / 2
	if pad < 0 {
		pad = 0
	}

	var b strings.Builder
	for i, rowRunes := range canvas {
		b.WriteString(strings.Repeat(" ", pad))
		for j, ch := range rowRunes {
			s := string(ch)
			switch paint[i][j] {
			case paintFace:
				b.WriteString(m.styles.face.Render(s))
			case paintHand:
				b.WriteString(handStyle.Render(s))
			case paintAccent:
				b.WriteString(accentStyle.Render(s))
			default:
				b.WriteString(s)
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
