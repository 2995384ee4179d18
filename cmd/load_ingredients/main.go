package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"time"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

func main() {
	path := flag.String("file", "data/ingredients.json", "JSON file with [{\"name\", \"measurement_unit\"}] entries")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	raw, err := os.ReadFile(*path)
	if err != nil {
		logging.Fatal().Err(err).Str("file", *path).Msg("failed to read ingredients file")
	}

	var items []types.CreateIngredientRequest
	if err := json.Unmarshal(raw, &items); err != nil {
		logging.Fatal().Err(err).Str("file", *path).Msg("failed to parse ingredients file")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.RunMigrations(db, cfg.MigrationsDir); err != nil {
		logging.Fatal().Err(err).Msg("failed to run migrations")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	added, err := service.NewIngredientService(db).BulkLoad(ctx, items)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load ingredients")
	}

	logging.Info().
		Int("read", len(items)).
		Int("added", added).
		Int("skipped", len(items)-added).
		Msg("ingredients loaded")
}
