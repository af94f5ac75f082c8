package bot

import (
	"github.com/bwmarrin/discordgo"
	"github.com/faideww/fishon/internal/fish"
)

func commandDefs(reg *fish.Registry, debug bool) []*discordgo.ApplicationCommand {
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(reg.Upgrades()))
	for _, u := range reg.Upgrades() {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: u.Name, Value: u.ID})
	}

	cmds := []*discordgo.ApplicationCommand{
		{Name: "fish", Description: "Cast a line"},
		{Name: "collect", Description: "Collect the income your aquarium has earned"},
		{Name: "shop", Description: "Show upgrades and their prices"},
		{
			Name:        "buy",
			Description: "Buy the next level of an upgrade",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "upgrade",
					Description: "Which upgrade",
					Required:    true,
					Choices:     choices,
				},
			},
		},
		{Name: "stats", Description: "Show your tokens, level and energy"},
		{Name: "aquarium", Description: "Show the fish you have caught"},
		{
			Name:        "reset",
			Description: "Start over from scratch",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionBoolean,
					Name:        "confirm",
					Description: "Yes, wipe my progress",
					Required:    true,
				},
			},
		},
	}

	if debug {
		cmds = append(cmds, &discordgo.ApplicationCommand{
			Name:        "debugtokens",
			Description: "Add tokens (debug builds only)",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "amount",
					Description: "Tokens to add, may be negative",
					Required:    true,
				},
			},
		})
	}
	return cmds
}
