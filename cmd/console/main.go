package main

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"patient-records/internal/config"
	"patient-records/internal/console"
	"patient-records/internal/db"
	"patient-records/internal/store"
)

func main() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().Timestamp().Logger()

	path := ".env"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatal().Err(err).Msg("loading configuration")
	}
	setLevel(cfg.LogLevel)

	provider := db.NewPostgres(cfg)
	patients := store.NewPatientStore(provider)
	exams := store.NewExamStore(provider)

	app := console.New(patients, exams, os.Stdin, os.Stdout)
	app.Run(context.Background())
}

func setLevel(level string) {
	if level == "" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		return
	}
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		log.Warn().Str("level", level).Msg("unknown log level, using info")
		parsed = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(parsed)
}
