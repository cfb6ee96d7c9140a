package main

import (
	"github.com/rs/zerolog/log"

	"github.com/google/bundletool-sub016/internal/app/server"
	"github.com/google/bundletool-sub016/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	server.Run(cfg)
}
