package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/adwski/sora-connect/client/config"
	httpServer "github.com/adwski/sora-connect/client/server/http"
	"github.com/adwski/sora-connect/client/service"
	store "github.com/adwski/sora-connect/client/storage/memory"
	websocketTransport "github.com/adwski/sora-connect/client/transport/websocket"
	"github.com/adwski/sora-connect/client/webrtc"
	"github.com/davecgh/go-spew/spew"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
)

// wsTransport adapts the websocket client to the service transport.
type wsTransport struct {
	*websocketTransport.Client
}

func (t wsTransport) Open(ctx context.Context, connect []byte) (service.Session, error) {
	s, err := t.Client.Open(ctx, connect)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	fs := pflag.NewFlagSet("main", pflag.ContinueOnError)

	var (
		configPath    = fs.StringP("config", "c", "config.yaml", "path to config file")
		profile       = fs.StringP("profile", "p", "default", "profile to connect with")
		signalingURL  = fs.StringP("url", "u", "", "signaling url, overrides config")
		apiListenAddr = fs.StringP("api-listen-addr", "a", "", "inspection api listen address, disabled if empty")
		logLevel      = fs.StringP("log-level", "l", "info", "log level")
		dump          = fs.Bool("dump", false, "dump the connect message at debug level")
		previewOnly   = fs.Bool("preview", false, "print the connect document and exit")
	)
	overrides := config.BindOverrides(fs)
	if err := fs.Parse(os.Args[1:]); err != nil {
		logger.Fatal().Err(err).Msg("failed to parse command line arguments")
	}

	lvl, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to parse loglevel")
	}
	logger = logger.Level(lvl)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal().Err(err).Str("path", *configPath).Msg("failed to load config")
	}
	if *signalingURL != "" {
		cfg.SignalingURL = *signalingURL
	}

	profiles := store.NewMemStoreFromFile(cfg)
	p, err := profiles.GetProfile(*profile)
	if err != nil {
		logger.Fatal().Err(err).Str("profile", *profile).Msg("unknown profile")
	}
	overrides.Apply(p)
	if err = profiles.PutProfile(p); err != nil {
		logger.Fatal().Err(err).Msg("failed to store profile")
	}

	offers, err := webrtc.NewOfferProvider()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init offer provider")
	}

	svc := service.NewService(service.Config{
		ProfileStore:  profiles,
		OfferProvider: offers,
		Transport: wsTransport{websocketTransport.NewClient(websocketTransport.Config{
			Logger:           &logger,
			URL:              cfg.SignalingURL,
			HandshakeTimeout: cfg.HandshakeTimeout,
			WriteTimeout:     cfg.WriteTimeout,
			PingInterval:     cfg.PingInterval,
			PongWait:         cfg.PongWait,
		})},
		Logger: &logger,
	})

	if *dump && logger.GetLevel() <= zerolog.DebugLevel {
		if msg, mErr := svc.Message(*profile); mErr == nil {
			logger.Debug().Msg("connect message:\n" + spew.Sdump(msg.Redacted()))
		}
	}

	if *previewOnly {
		doc, pErr := svc.Preview(*profile)
		if pErr != nil {
			logger.Fatal().Err(pErr).Msg("invalid connect configuration")
		}
		_, _ = os.Stdout.Write(append(doc, '\n'))
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var (
		wg          = &sync.WaitGroup{}
		errc        = make(chan error, 2)
		sessionDone = make(chan struct{})
	)
	if *apiListenAddr != "" {
		apiSrv := httpServer.NewServer(httpServer.Config{
			Logger:         &logger,
			ConnectService: svc,
			ListenAddr:     *apiListenAddr,
		})
		wg.Add(1)
		go apiSrv.Run(ctx, wg, errc)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		if rErr := svc.Run(ctx, *profile); rErr != nil {
			errc <- rErr
			return
		}
		if ctx.Err() == nil {
			close(sessionDone)
		}
	}()

	select {
	case err = <-errc:
		if errors.Is(err, service.ErrConfiguration) {
			logger.Error().Err(err).Msg("invalid connect configuration, not connecting")
		} else {
			logger.Error().Err(err).Msg("unexpected error, shutting down")
		}
	case <-sessionDone:
		logger.Info().Msg("signaling session ended, shutting down")
	case <-ctx.Done():
		logger.Warn().Msg("interrupted")
	}
	cancel()
	wg.Wait()
	if err != nil {
		os.Exit(1)
	}
}
