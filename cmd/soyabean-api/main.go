package main

import (
	"os"

	"github.com/rs/zerolog/log"
)

func main() {
	if err := newRootCmd(os.LookupEnv).Execute(); err != nil {
		log.Fatal().Err(err).Msg("soyabean-api exited")
	}
}
