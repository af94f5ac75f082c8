// Package bot plays the fishing game over Discord slash commands. Each user
// gets their own economy, catch runner and energy scheduler.
package bot

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/faideww/fishon/internal/catch"
	"github.com/faideww/fishon/internal/fish"
	"github.com/faideww/fishon/internal/ratelimit"
	"github.com/faideww/fishon/internal/store"
)

// editInterval throttles message edits while the indicator sweeps.
const editInterval = 1200 * time.Millisecond

type module struct {
	s          *discordgo.Session
	appId      string
	scopeGuild string
	reg        *fish.Registry
	lim        *ratelimit.Limiter
	players    *players
	debug      bool
	log        *log.Logger
}

func Setup(
	ctx context.Context,
	session *discordgo.Session,
	appId, scopeGuild string,
	reg *fish.Registry,
	st store.Store,
	lim *ratelimit.Limiter,
	debug bool,
	logger *log.Logger,
) (func(), error) {
	if logger == nil {
		logger = log.Default()
	}

	m := &module{
		s:          session,
		appId:      appId,
		scopeGuild: scopeGuild,
		reg:        reg,
		lim:        lim,
		players:    newPlayers(ctx, reg, st, logger),
		debug:      debug,
		log:        logger,
	}
	m.players.relay = m.relay

	cmds := commandDefs(reg, debug)

	created, err := session.ApplicationCommandBulkOverwrite(appId, scopeGuild, cmds)
	if err != nil {
		return nil, fmt.Errorf("failed to register commands: %w", err)
	}

	for _, c := range created {
		logger.Printf("command active: %s (%s)", c.Name, c.Description)
	}

	remove := session.AddHandler(m.onInteraction)

	sweepDone := make(chan struct{})
	go m.sweep(ctx, sweepDone)

	return func() {
		remove()
		close(sweepDone)
		m.players.close()
		logger.Printf("bot: closed %d games", m.players.count())
	}, nil
}

// sweep periodically drops expired cooldowns and unloads idle games.
func (m *module) sweep(ctx context.Context, done chan struct{}) {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-done:
			return
		case <-ticker.C:
			if n := m.lim.Sweep(); n > 0 {
				m.log.Printf("bot: dropped %d expired cooldowns", n)
			}
			if n := m.players.evictIdle(); n > 0 {
				m.log.Printf("bot: unloaded %d idle games", n)
			}
		}
	}
}

func (m *module) onInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
	case discordgo.InteractionMessageComponent:
		m.handleReel(s, i)
		return
	default:
		return
	}

	name := i.ApplicationCommandData().Name
	userId, _ := invoker(i)
	if userId == "" {
		return
	}

	// Rate limiting
	if ok, rem := m.lim.Try(userId, name); !ok {
		respondEphemeral(s, i, fmt.Sprintf("⏳ Easy there… try again in %s.", pretty(rem)))
		return
	}

	p, err := m.players.get(userId)
	if err != nil {
		m.log.Printf("bot: %v", err)
		respondEphemeral(s, i, "Couldn't load your save, try again later.")
		return
	}

	switch name {
	case "fish":
		m.handleFish(s, i, p)
	case "collect":
		m.handleCollect(s, i, p)
	case "shop":
		respondEmbed(s, i, shopEmbed(p.eco.Shop(), p.eco.Tokens()), true)
	case "buy":
		m.handleBuy(s, i, p)
	case "stats":
		_, display := invoker(i)
		respondEmbed(s, i, statsEmbed(p.eco, display), false)
	case "aquarium":
		respondEmbed(s, i, aquariumEmbed(p.eco.Aquarium(), p.eco.HourlyIncome()), false)
	case "reset":
		m.handleReset(s, i, p)
	case "debugtokens":
		m.handleDebugTokens(s, i, p)
	}
}

func (m *module) handleFish(s *discordgo.Session, i *discordgo.InteractionCreate, p *player) {
	if !p.eco.CanSpendEnergy() {
		respondEphemeral(s, i, fmt.Sprintf("🪫 Out of energy. The next one arrives in %s.", pretty(p.eco.NextEnergyIn())))
		return
	}

	if !p.runner.Cast() {
		respondEphemeral(s, i, "You already have a line in the water!")
		return
	}
	_, display := invoker(i)
	p.setMessage(i.Interaction, display)

	v := catch.View{State: catch.Casting}
	embed, _ := fishEmbed(v, display)
	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{embed},
			Components: fishComponents(v, p.id),
		},
	}); err != nil {
		logREST("fish response failed", err)
	}
}

func (m *module) handleReel(s *discordgo.Session, i *discordgo.InteractionCreate) {
	owner, ok := reelOwner(i.MessageComponentData().CustomID)
	if !ok {
		return
	}
	userId, _ := invoker(i)
	if userId != owner {
		respondEphemeral(s, i, "That's not your line!")
		return
	}

	p, err := m.players.get(owner)
	if err != nil {
		m.log.Printf("bot: %v", err)
		respondEphemeral(s, i, "Couldn't load your save, try again later.")
		return
	}

	if !p.runner.Commit() {
		// stale button; the relay will catch the message up
		if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseDeferredMessageUpdate,
		}); err != nil {
			logREST("reel ack failed", err)
		}
		return
	}

	v := p.runner.View()
	_, display := p.message()
	embed, ok := fishEmbed(v, display)
	if !ok {
		return
	}
	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{embed},
			Components: fishComponents(v, p.id),
		},
	}); err != nil {
		logREST("reel update failed", err)
	}
}

// relay edits the player's /fish message as their attempt moves through its
// phases. It runs on its own goroutine so REST latency never stalls the
// runner.
func (m *module) relay(ctx context.Context, p *player) {
	last := catch.Idle
	var lastEdit time.Time

	for {
		select {
		case <-ctx.Done():
			return
		case v := <-p.views:
			if v.State == last && (v.State != catch.Engaging || time.Since(lastEdit) < editInterval) {
				continue
			}
			msg, display := p.message()
			embed, ok := fishEmbed(v, display)
			// the /fish response itself shows the cast
			if !ok || msg == nil || v.State == catch.Casting {
				last = v.State
				continue
			}
			components := fishComponents(v, p.id)
			if _, err := m.s.InteractionResponseEdit(msg, &discordgo.WebhookEdit{
				Embeds:     &[]*discordgo.MessageEmbed{embed},
				Components: &components,
			}); err != nil {
				logREST("fish edit failed", err)
			}
			last = v.State
			lastEdit = time.Now()
		}
	}
}

func (m *module) handleCollect(s *discordgo.Session, i *discordgo.InteractionCreate, p *player) {
	n := p.eco.CollectIncome()
	if n == 0 {
		respondEphemeral(s, i, fmt.Sprintf("Nothing to collect yet. Your aquarium earns %d tokens/hour.", p.eco.HourlyIncome()))
		return
	}
	respondEmbed(s, i, &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("💰 Collected %d tokens", n),
		Description: fmt.Sprintf("Balance: **%d** tokens", p.eco.Tokens()),
		Color:       fish.ColorForTier(fish.Legendary),
	}, false)
}

func (m *module) handleBuy(s *discordgo.Session, i *discordgo.InteractionCreate, p *player) {
	var id string
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "upgrade" {
			id = opt.StringValue()
		}
	}
	u, ok := m.reg.Upgrade(id)
	if !ok {
		respondEphemeral(s, i, fmt.Sprintf("Unknown upgrade '%s'", id))
		return
	}

	lvl := p.eco.UpgradeLevel(id)
	if !p.eco.PurchaseUpgrade(id) {
		switch {
		case lvl >= u.MaxLevel:
			respondEphemeral(s, i, fmt.Sprintf("%s is already maxed out.", u.Name))
		default:
			respondEphemeral(s, i, fmt.Sprintf("%s costs %d tokens, you have %d.", u.Name, u.Cost(lvl), p.eco.Tokens()))
		}
		return
	}
	respondEphemeral(s, i, fmt.Sprintf("✅ %s is now level %d. %d tokens left.", u.Name, lvl+1, p.eco.Tokens()))
}

func (m *module) handleReset(s *discordgo.Session, i *discordgo.InteractionCreate, p *player) {
	confirm := false
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "confirm" {
			confirm = opt.BoolValue()
		}
	}
	if !confirm {
		respondEphemeral(s, i, "Nothing was reset.")
		return
	}
	if !p.reset() {
		respondEphemeral(s, i, "Reel in your line before resetting.")
		return
	}
	respondEphemeral(s, i, "🧹 Your progress was wiped. Fresh start!")
}

func (m *module) handleDebugTokens(s *discordgo.Session, i *discordgo.InteractionCreate, p *player) {
	if !m.debug {
		respondEphemeral(s, i, "Debug commands are disabled.")
		return
	}
	var amount int64
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "amount" {
			amount = opt.IntValue()
		}
	}
	p.eco.AddDebugTokens(int(amount))
	respondEphemeral(s, i, fmt.Sprintf("Balance: %d tokens", p.eco.Tokens()))
}

// invoker returns the user behind an interaction and the name to show for
// them. Guild interactions carry a Member, DMs a User.
func invoker(i *discordgo.InteractionCreate) (id, display string) {
	if i.Member != nil && i.Member.User != nil {
		display = i.Member.Nick
		if display == "" {
			display = i.Member.User.Username
		}
		return i.Member.User.ID, display
	}
	if i.User != nil {
		return i.User.ID, i.User.Username
	}
	return "", ""
}

func respondEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, msg string) error {
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: msg,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}

func respondEmbed(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed, ephemeral bool) {
	data := &discordgo.InteractionResponseData{Embeds: []*discordgo.MessageEmbed{embed}}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	}); err != nil {
		logREST("respond failed", err)
	}
}

func logREST(msg string, err error) {
	if rerr, ok := err.(*discordgo.RESTError); ok && rerr.Message != nil {
		log.Printf("%s: code=%d msg=%s", msg, rerr.Message.Code, rerr.Message.Message)
	} else {
		log.Printf("%s: %v", msg, err)
	}
}
