package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/bwmarrin/discordgo"
	"github.com/faideww/fishon/internal/bot"
	"github.com/faideww/fishon/internal/fish"
	"github.com/faideww/fishon/internal/ratelimit"
	"github.com/faideww/fishon/internal/store"
)

func main() {
	config, err := LoadConfig()
	if err != nil {
		log.Fatal("failed to load config:", err)
	}

	reg := fish.DefaultRegistry()
	if config.CatalogJson != "" {
		reg, err = fish.LoadRegistryFromJSON(config.CatalogJson)
		if err != nil {
			log.Fatal(err)
		}
	}

	st, err := store.OpenSQLite(config.DBPath)
	if err != nil {
		log.Fatal(err)
	}
	defer st.Close()

	session, err := discordgo.New("Bot " + config.DiscordToken)
	if err != nil {
		log.Fatal("failed to start session:", err)
	}

	session.ShardCount = config.ShardCount
	session.ShardID = config.ShardId

	if err := session.Open(); err != nil {
		log.Fatal("failed to open session connection:", err)
	}
	defer session.Close()

	appId := session.State.User.ID

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	lim := ratelimit.NewLimiter(config.CooldownCommandMin, config.CooldownCommandMax, nil)
	teardown, err := bot.Setup(ctx, session, appId, config.DevGuild, reg, st, lim, config.DebugTokens, log.Default())
	if err != nil {
		log.Fatal("failed to setup bot:", err)
	}
	defer teardown()

	log.Println("Bot is running")
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}
