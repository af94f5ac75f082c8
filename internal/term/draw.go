package term

import (
	"fmt"
	"strings"
	"time"

	"github.com/faideww/fishon/internal/catch"
	"github.com/faideww/fishon/internal/fish"
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

const (
	trackRows = 20
	trackX    = 2
	trackTop  = 4
	barX      = 8
	sideX     = 14
)

var (
	styleText   = tcell.StyleDefault
	styleDim    = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleTitle  = tcell.StyleDefault.Foreground(tcell.ColorAqua).Bold(true)
	styleWater  = tcell.StyleDefault.Foreground(tcell.ColorNavy)
	styleZone   = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleGood   = tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	styleBad    = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	styleStatus = tcell.StyleDefault.Foreground(tcell.ColorYellow)
)

// drawText writes s from (x, y) and returns the column after it.
func drawText(c Canvas, x, y int, style tcell.Style, s string) int {
	w, h := c.Size()
	if y < 0 || y >= h {
		return x
	}
	for _, r := range s {
		if x >= w {
			break
		}
		c.SetContent(x, y, r, nil, style)
		x += max(runewidth.RuneWidth(r), 1)
	}
	return x
}

func meter(pct float64, cells int) string {
	filled := int(pct / 100 * float64(cells))
	filled = min(max(filled, 0), cells)
	return strings.Repeat("█", filled) + strings.Repeat("░", cells-filled)
}

func clockTime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return fmt.Sprintf("%d:%02d", int(d/time.Minute), int(d%time.Minute/time.Second))
}

// rowFor maps a track position (0 top, 100 bottom) to a screen row.
func rowFor(pos float64) int {
	row := int(pos / 100 * trackRows)
	return trackTop + min(max(row, 0), trackRows-1)
}

func tierStyle(r fish.Rarity) tcell.Style {
	return tcell.StyleDefault.Foreground(tcell.NewHexColor(int32(fish.ColorForTier(r))))
}

// Draw renders the whole frame onto c.
func (u *UI) Draw(c Canvas) {
	u.drawHeader(c)
	v := u.currentView()
	u.drawTrack(c, v)
	u.drawSide(c, v)
}

func (u *UI) drawHeader(c Canvas) {
	st := u.eco.Snapshot()
	prog := u.eco.LevelProgress()

	x := drawText(c, 0, 0, styleTitle, "🎣 FishOn ")
	x = drawText(c, x, 0, styleText, fmt.Sprintf(" Tokens %d ", st.Tokens))
	energy := fmt.Sprintf(" Energy %d/%d", st.Energy, u.eco.MaxEnergy())
	if next := u.eco.NextEnergyIn(); next > 0 {
		energy += " (+1 in " + clockTime(next) + ")"
	}
	drawText(c, x, 0, styleText, energy)

	drawText(c, 0, 1, styleText, fmt.Sprintf("Level %d  %s  %d/%d XP", st.Level, meter(prog.Percentage, 20), prog.Current, prog.Required))
	drawText(c, 0, 2, styleDim, fmt.Sprintf("Income %d/h, %d ready (c to collect)  ·  %d catches", u.eco.HourlyIncome(), u.eco.PendingIncome(), st.TotalCatches))
}

func (u *UI) drawTrack(c Canvas, v catch.View) {
	for row := trackTop; row < trackTop+trackRows; row++ {
		c.SetContent(trackX-1, row, '│', nil, styleWater)
		c.SetContent(trackX, row, '~', nil, styleWater)
		c.SetContent(trackX+2, row, '│', nil, styleWater)
		c.SetContent(barX, row, '░', nil, styleDim)
	}
	if v.State < catch.Engaging {
		return
	}

	for row := rowFor(v.Catcher - v.Zone); row <= rowFor(v.Catcher+v.Zone); row++ {
		c.SetContent(trackX, row, '█', nil, styleZone)
		c.SetContent(trackX+1, row, '█', nil, styleZone)
	}
	glyph := '>'
	if g := []rune(v.Fish.Glyph); len(g) > 0 {
		glyph = g[0]
	}
	c.SetContent(trackX, rowFor(v.FishPos), glyph, nil, tierStyle(v.Fish.Rarity))

	filled := int(v.Progress / 100 * trackRows)
	for i := 0; i < filled && i < trackRows; i++ {
		style := styleGood
		if v.Progress < 30 {
			style = styleBad
		}
		c.SetContent(barX, trackTop+trackRows-1-i, '█', nil, style)
	}
}

func (u *UI) drawSide(c Canvas, v catch.View) {
	y := trackTop
	switch v.State {
	case catch.Idle:
		drawText(c, sideX, y, styleText, "Press space to cast")
	case catch.Unavailable:
		drawText(c, sideX, y, styleBad, "Out of energy, wait for a refill")
	case catch.Casting:
		drawText(c, sideX, y, styleText, "Casting...")
	case catch.Waiting:
		drawText(c, sideX, y, styleText, "Waiting for a bite...")
	case catch.Engaging:
		drawText(c, sideX, y, styleStatus, "Fish on! Keep it in the green zone (↑/↓)")
		drawText(c, sideX, y+1, styleDim, fmt.Sprintf("progress %3.0f%%", v.Progress))
	case catch.Success:
		drawText(c, sideX, y, styleGood, "Caught "+v.Outcome.Fish.Name+"!")
		if r := v.Outcome.Result; r.LevelUp() {
			drawText(c, sideX, y+1, styleGood, fmt.Sprintf("Level up! Now level %d", r.ToLevel))
		}
	case catch.Failure:
		drawText(c, sideX, y, styleBad, "It "+v.Outcome.Reason+"...")
	}

	y += 3
	drawText(c, sideX, y, styleTitle, "Shop")
	for i, o := range u.eco.Shop() {
		y++
		line := fmt.Sprintf("%d %s %s lv %d/%d", i+1, o.Upgrade.Icon, o.Upgrade.Name, o.Level, o.Upgrade.MaxLevel)
		style := styleDim
		switch {
		case o.Maxed:
			line += "  max"
		case o.Affordable:
			line += fmt.Sprintf("  %d tokens", o.Cost)
			style = styleText
		default:
			line += fmt.Sprintf("  %d tokens", o.Cost)
		}
		drawText(c, sideX, y, style, line)
	}

	y += 2
	drawText(c, sideX, y, styleTitle, "Aquarium")
	x := sideX
	y++
	for _, t := range u.eco.Aquarium() {
		x = drawText(c, x, y, tierStyle(t.Fish.Rarity), fmt.Sprintf("%s×%d ", t.Fish.Glyph, t.Count))
	}
	if x == sideX {
		drawText(c, x, y, styleDim, "empty")
	}

	if s := u.statusLine(); s != "" {
		drawText(c, 0, trackTop+trackRows+1, styleStatus, s)
	}
	help := "space cast  ↑/↓ move  c collect  1-4 buy  R reset  q quit"
	if u.debug {
		help += "  D +tokens"
	}
	drawText(c, 0, trackTop+trackRows+2, styleDim, help)
}
