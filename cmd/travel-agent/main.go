package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/PrathmeshSose/ai-travel-agent/planservice"
)

func main() {
	// .env is optional; real environment variables take precedence
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("could not read .env")
	}
	if err := planservice.Run(); err != nil {
		log.Error().Err(err).Msg("travel-agent exited with error")
		os.Exit(1)
	}
}
