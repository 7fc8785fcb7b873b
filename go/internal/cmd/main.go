package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/sockbowl/sockbowl-client/go/internal/cast"
	"github.com/sockbowl/sockbowl-client/go/internal/dispatch"
	"github.com/sockbowl/sockbowl-client/go/internal/state"
	"github.com/sockbowl/sockbowl-client/go/internal/timing"
	"github.com/sockbowl/sockbowl-client/go/internal/transport"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	config, err := loadConfig(getEnv("CONFIG_PATH", "config.yaml"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	sessionID := os.Getenv("SOCKBOWL_SESSION_ID")
	participantID := os.Getenv("SOCKBOWL_PLAYER_ID")
	if sessionID == "" || participantID == "" {
		log.Fatal().Msg("SOCKBOWL_SESSION_ID and SOCKBOWL_PLAYER_ID are required")
	}
	credential := transport.Credential{
		PlayerSecret: os.Getenv("SOCKBOWL_PLAYER_SECRET"),
		BearerToken:  os.Getenv("SOCKBOWL_BEARER_TOKEN"),
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tr := transport.New(config.transportConfig())
	if err := tr.Connect(ctx, sessionID, participantID, credential); err != nil {
		log.Fatal().Err(err).Msg("failed to connect to game server")
	}
	defer tr.Close()

	dispatcher := dispatch.New(100)
	go dispatcher.Run(ctx, tr.Messages())

	store := state.New(participantID, tr)
	go store.Run(ctx, dispatcher.Events())

	// Surface server-reported domain errors as transient notices.
	notices := dispatcher.Subscribe(dispatch.EventProcessError)
	go func() {
		for event := range notices {
			if payload, ok := event.Payload.(*dispatch.ProcessErrorPayload); ok {
				log.Warn().Str("error", payload.Error).Msg("game error")
			}
		}
	}()

	coordinator := timing.New(store, coordinatorOptions(config.Role))
	go coordinator.Run(ctx, store.Subscribe())

	if config.Role == string(timing.RoleProctor) && config.Cast.ReceiverURL != "" {
		channel := cast.NewWebsocketChannel(cast.DefaultChannelConfig(config.Cast.ReceiverURL))
		relay := cast.NewRelay(store, channel, nil, config.castThrottle())
		go relay.Run(ctx)
		if err := channel.Start(ctx); err != nil {
			log.Error().Err(err).Msg("cast receiver unavailable, continuing without cast")
		}
		defer channel.Stop()
	}

	log.Info().
		Str("session_id", sessionID).
		Str("participant_id", participantID).
		Str("role", config.Role).
		Msg("sockbowl client running")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Info().Msg("shutting down")
	cancel()
}

func coordinatorOptions(role string) timing.Options {
	switch timing.Role(role) {
	case timing.RoleProctor:
		return timing.Options{Role: timing.RoleProctor, EmitTimeouts: true}
	case timing.RoleBuzzer:
		return timing.Options{Role: timing.RoleBuzzer}
	default:
		// Spectator and display surfaces read server-reported
		// countdowns instead of timing locally.
		return timing.Options{Role: timing.RoleDisplay, UseServerTiming: true}
	}
}
