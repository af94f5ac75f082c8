package bot

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/faideww/fishon/internal/catch"
	"github.com/faideww/fishon/internal/economy"
	"github.com/faideww/fishon/internal/fish"
)

const (
	trackCells   = 24
	colorNeutral = 0x3498DB
	colorMissed  = 0x95A5A6
	colorShop    = 0xE67E22
	reelPrefix   = "reel:"
)

func reelId(userId string) string { return reelPrefix + userId }

// reelOwner returns the user a Reel button belongs to.
func reelOwner(customId string) (string, bool) {
	if !strings.HasPrefix(customId, reelPrefix) {
		return "", false
	}
	return strings.TrimPrefix(customId, reelPrefix), true
}

// trackLine draws the sweep: ▓ is the window, ◆ the indicator.
func trackLine(v catch.View) string {
	cells := make([]rune, trackCells)
	lo := v.WindowCenter - v.WindowWidth/2
	hi := v.WindowCenter + v.WindowWidth/2
	for c := range cells {
		mid := (float64(c) + 0.5) * 100 / trackCells
		cells[c] = '─'
		if mid >= lo && mid <= hi {
			cells[c] = '▓'
		}
	}
	idx := int(v.FishPos / 100 * trackCells)
	if idx >= trackCells {
		idx = trackCells - 1
	}
	if idx < 0 {
		idx = 0
	}
	cells[idx] = '◆'
	return "`" + string(cells) + "`"
}

func article(name string) string {
	// TODO: some words beginning with consonants use 'an' (hour, heir, honest).
	if name != "" && strings.ContainsRune("aeiouAEIOU", rune(name[0])) {
		return "an"
	}
	return "a"
}

// fishEmbed renders one phase of a /fish attempt. ok is false for states
// that should not replace the message, such as the idle machine after an
// outcome has been shown.
func fishEmbed(v catch.View, angler string) (*discordgo.MessageEmbed, bool) {
	switch v.State {
	case catch.Casting:
		return &discordgo.MessageEmbed{
			Title: fmt.Sprintf("🎣 %s casts a line...", angler),
			Color: colorNeutral,
		}, true
	case catch.Waiting:
		return &discordgo.MessageEmbed{
			Title:       fmt.Sprintf("🎣 %s is waiting for a bite...", angler),
			Description: "Hold tight.",
			Color:       colorNeutral,
		}, true
	case catch.Engaging:
		return &discordgo.MessageEmbed{
			Title:       "❗ Something is biting!",
			Description: trackLine(v) + "\nPress **Reel!** while ◆ is inside ▓.",
			Color:       colorNeutral,
		}, true
	case catch.Success:
		f := v.Outcome.Fish
		desc := fmt.Sprintf("Rarity: **%s**\n+%d tokens  ·  +%d XP", f.Rarity, f.Tokens, f.XP)
		if f.HourlyIncome > 0 {
			desc += fmt.Sprintf("\nEarns **%d** tokens/hour in your aquarium", f.HourlyIncome)
		}
		if r := v.Outcome.Result; r.LevelUp() {
			desc += fmt.Sprintf("\n\n⬆️ **Level up!** You are now level %d.", r.ToLevel)
		}
		return &discordgo.MessageEmbed{
			Title:       fmt.Sprintf("%s caught %s %s!", angler, article(f.Name), f.Name),
			Description: desc,
			Color:       fish.ColorForTier(f.Rarity),
			Footer:      &discordgo.MessageEmbedFooter{Text: "Tip: upgrades in /shop make rare fish easier to land"},
		}, true
	case catch.Failure:
		reason := v.Outcome.Reason
		if reason == "" {
			reason = "got away"
		}
		return &discordgo.MessageEmbed{
			Title:       "💨 The fish " + reasonPhrase(reason),
			Description: "That cost one energy.",
			Color:       colorMissed,
		}, true
	}
	return nil, false
}

func reasonPhrase(reason string) string {
	switch reason {
	case "got away":
		return "got away!"
	case "missed the window":
		return "slipped off the hook!"
	case "the line snapped":
		return "snapped the line!"
	}
	return reason
}

// fishComponents is the Reel button, enabled only while something bites.
func fishComponents(v catch.View, userId string) []discordgo.MessageComponent {
	switch v.State {
	case catch.Casting, catch.Waiting, catch.Engaging:
	default:
		return []discordgo.MessageComponent{}
	}
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Reel!",
					Style:    discordgo.PrimaryButton,
					CustomID: reelId(userId),
					Emoji:    &discordgo.ComponentEmoji{Name: "🎣"},
					Disabled: v.State != catch.Engaging,
				},
			},
		},
	}
}

func bar(pct float64, cells int) string {
	filled := int(pct / 100 * float64(cells))
	if filled > cells {
		filled = cells
	}
	if filled < 0 {
		filled = 0
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", cells-filled)
}

func statsEmbed(eco *economy.Store, angler string) *discordgo.MessageEmbed {
	st := eco.Snapshot()
	prog := eco.LevelProgress()

	energyLine := fmt.Sprintf("%d / %d", st.Energy, eco.MaxEnergy())
	if next := eco.NextEnergyIn(); next > 0 {
		energyLine += fmt.Sprintf("  (next in %s)", pretty(next))
	}

	return &discordgo.MessageEmbed{
		Title: fmt.Sprintf("📊 %s", angler),
		Color: colorNeutral,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Tokens", Value: fmt.Sprintf("%d", st.Tokens), Inline: true},
			{Name: "Level", Value: fmt.Sprintf("%d", st.Level), Inline: true},
			{Name: "Energy", Value: energyLine, Inline: true},
			{Name: "XP", Value: fmt.Sprintf("`%s` %d / %d", bar(prog.Percentage, 12), prog.Current, prog.Required)},
			{Name: "Income", Value: fmt.Sprintf("%d / hour  ·  %d ready to /collect", eco.HourlyIncome(), eco.PendingIncome()), Inline: true},
			{Name: "Catches", Value: fmt.Sprintf("%d", st.TotalCatches), Inline: true},
		},
	}
}

func shopEmbed(offers []economy.Offer, tokens int) *discordgo.MessageEmbed {
	desc := strings.Builder{}
	for _, o := range offers {
		u := o.Upgrade
		fmt.Fprintf(&desc, "**%s** (lv %d/%d) · %s\n", u.Name, o.Level, u.MaxLevel, u.Description)
		switch {
		case o.Maxed:
			desc.WriteString("  maxed out\n")
		case o.Affordable:
			fmt.Fprintf(&desc, "  next level: **%d** tokens · `/buy upgrade:%s`\n", o.Cost, u.ID)
		default:
			fmt.Fprintf(&desc, "  next level: %d tokens\n", o.Cost)
		}
	}
	return &discordgo.MessageEmbed{
		Title:       "🛒 Shop",
		Description: desc.String(),
		Color:       colorShop,
		Footer:      &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("You have %d tokens", tokens)},
	}
}

func aquariumEmbed(tanks []economy.Tank, hourly int) *discordgo.MessageEmbed {
	if len(tanks) == 0 {
		return &discordgo.MessageEmbed{
			Title:       "🐠 Aquarium",
			Description: "Empty for now - type `/fish` to make the first catch!",
			Color:       colorNeutral,
		}
	}
	desc := strings.Builder{}
	for _, t := range tanks {
		fmt.Fprintf(&desc, "%s **%s** ×%d  ·  %s  ·  %d/h\n", t.Fish.Glyph, t.Fish.Name, t.Count, t.Fish.Rarity, t.Income)
	}
	return &discordgo.MessageEmbed{
		Title:       "🐠 Aquarium",
		Description: desc.String(),
		Color:       fish.ColorForTier(tanks[0].Fish.Rarity),
		Footer:      &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("Earning %d tokens per hour", hourly)},
	}
}

func pretty(d time.Duration) string {
	// mm:ss
	if d < 0 {
		d = 0
	}
	m := int(d / time.Minute)
	s := int((d % time.Minute) / time.Second)
	return fmt.Sprintf("%d:%02d", m, s)
}
