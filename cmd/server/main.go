package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/aspekts/musictracker/auth"
	"github.com/aspekts/musictracker/insights"
	"github.com/aspekts/musictracker/internal/config"
	"github.com/aspekts/musictracker/server"
	"github.com/aspekts/musictracker/spotify"
	"github.com/aspekts/musictracker/token"
	tokensql "github.com/aspekts/musictracker/token/sqlrepo"
	"github.com/aspekts/musictracker/users/sqlrepo"
)

func main() {
	for {
		if err := run(); err != nil {
			log.Fatal().Err(err).Msg("error running server")
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Info().Msg("server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	configureLogging(c)
	displayAppname(c.GetAppName())

	httpHandler, cleanup, err := buildServer(c)
	if err != nil {
		return err
	}
	defer cleanup()

	httpServer := &http.Server{Addr: c.GetPort(), Handler: httpHandler}
	go listenAndServe(httpServer)
	waitForStopSignal()
	returnError = shutdown(httpServer)
	return returnError
}

func buildServer(c config.Config) (*server.Server, func(), error) {
	db, err := sqlrepo.Open(c.GetDatabasePath())
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}
	cleanup := func() { _ = db.Close() }

	if err := tokensql.Migrate(db); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("migrating database: %w", err)
	}
	userRepo := sqlrepo.NewUserRepo(db)

	signingKey := c.GetSessionSigningKey()
	if signingKey == "" {
		cleanup()
		return nil, nil, errors.New("SESSION_SIGNING_KEY is required")
	}
	sessions := token.New(tokensql.NewRefreshTokenRepo(db), token.NewHMACSigner(signingKey))

	authenticator, err := spotify.NewAuthenticator(
		c.GetSpotifyClientID(),
		c.GetSpotifyClientSecret(),
		c.GetSpotifyRedirectURL(),
	)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("creating spotify authenticator: %w", err)
	}
	client := spotify.NewClient()

	authService, err := auth.NewAuthorizationService(
		auth.Repos{Users: userRepo},
		sessions,
		authenticator,
		client,
	)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("creating authorization service: %w", err)
	}

	guardian := auth.NewTokenGuardian(userRepo, authenticator)
	api := spotify.NewDelegatedClient(guardian, client)
	insightsService := insights.NewService(api)

	return server.New(c, authService, sessions, api, insightsService), cleanup, nil
}

func configureLogging(c config.Config) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if c.GetEnv() == "DEV" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
}

func listenAndServe(httpServer *http.Server) error {
	log.Info().Str("addr", httpServer.Addr).Msg("server listening")
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(httpServer *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
