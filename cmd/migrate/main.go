package main

import (
	"fleet/config"
	"fleet/helper"
	"fleet/shared/logger"
	"os"

	"github.com/rs/zerolog/log"
)

// Actions run in the order given, so "drop up" rebuilds the schema and reseeds
// the fee schedule in one invocation.
func main() {
	logger.InitLogger()

	actions := os.Args[1:]
	if len(actions) == 0 {
		log.Fatal().Msg("usage: migrate <up|down|step-up|drop>...")
	}

	cfg := config.Get()
	logger.SetLogLevel(cfg)

	for _, action := range actions {
		if err := helper.Runner(cfg, action); err != nil {
			log.Fatal().Err(err).Str("action", action).Msg("migration failed")
		}
	}
}
