package main

import (
	"flag"

	"github.com/redis/go-redis/v9"
	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/chicane-league/chicane/internal/app"
	"github.com/chicane-league/chicane/internal/bot"
	"github.com/chicane-league/chicane/internal/scoring"
	"github.com/chicane-league/chicane/internal/standings"
)

func main() {
	var configPath = flag.String("config", "config.toml", "Path to config file")
	flag.Parse()

	cfg, err := bot.ReadConfig(*configPath)
	if err != nil {
		logger.Error.Fatalf("Failed to read config: %v", err)
	}

	leagueStore, err := app.NewStore(cfg.Database.DSN, cfg.Database.MigrationsDir)
	if err != nil {
		logger.Error.Fatalf("Failed to create store: %v", err)
	}
	defer leagueStore.Close()

	opt, err := redis.ParseURL(cfg.Auth.RedisURL)
	if err != nil {
		logger.Error.Fatalf("Failed to parse redis URL: %v", err)
	}
	tokens := app.NewTokenManager(redis.NewClient(opt))
	defer tokens.Close()

	aggregator := standings.NewAggregator(leagueStore)
	engine := scoring.NewEngine(leagueStore, aggregator, nil)

	b, err := bot.New(cfg, leagueStore, engine, aggregator, tokens)
	if err != nil {
		logger.Error.Fatalf("Failed to create bot: %v", err)
	}

	logger.Info.Println("Bot intialized succesfully")
	if err := b.Start(); err != nil {
		logger.Error.Fatalf("Bot error: %v", err)
	}
}
