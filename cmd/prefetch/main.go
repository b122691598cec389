// Command prefetch warms the hotel-detail cache for a batch of ids, so
// interactive sessions hit Redis instead of the booking service. Ids
// come from the command line, one per argument.
package main

import (
	"context"
	"os"

	"github.com/rs/zerolog/log"

	"easystay/internal/adapters/backend"
	"easystay/internal/adapters/observability"
	redisad "easystay/internal/adapters/redis"
	"easystay/internal/adapters/statefile"
	"easystay/internal/app"
	"easystay/internal/shared"
)

func main() {
	ctx := context.Background()
	cfg, err := shared.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	log.Logger = observability.NewLogger(cfg.AppEnv)

	ids := os.Args[1:]
	if len(ids) == 0 {
		log.Fatal().Msg("no hotel ids given")
	}
	if cfg.RedisAddr == "" {
		log.Fatal().Msg("REDIS_ADDR is required; prefetching without a cache is pointless")
	}

	log.Info().
		Str("booking_base", cfg.BookingBase).
		Int("workers", cfg.PrefetchWorkers).
		Int("ids", len(ids)).
		Msg("prefetch starting")

	st, err := statefile.Open(cfg.StatePath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.StatePath).Msg("open state file failed")
	}

	api := backend.New(cfg.UserBase, cfg.BookingBase, st.Token, cfg.RequestTimeout, cfg.RequestRPS)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	hotels := app.NewHotels(api, cache, app.NewFilterStore(), cfg.CacheTTL, cfg.PageSize)

	if err := hotels.Prefetch(ctx, ids, cfg.PrefetchWorkers); err != nil {
		log.Fatal().Err(err).Msg("prefetch aborted")
	}
	log.Info().Msg("prefetch completed")
}
