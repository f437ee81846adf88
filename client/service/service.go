package service

import (
	"context"
	"errors"

	"github.com/adwski/sora-connect/client/config"
	"github.com/adwski/sora-connect/client/model"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	ErrProfile       = errors.New("unable to get profile")
	ErrConfiguration = errors.New("invalid connect configuration")
	ErrConnect       = errors.New("unable to connect")
)

type (
	ProfileStore interface {
		GetProfile(name string) (*config.Profile, error)
		ListProfiles() []string
	}

	OfferProvider interface {
		Offer(role model.Role, video, audio bool) (string, error)
	}

	Session interface {
		Inbound() <-chan []byte
		Done() <-chan struct{}
		Err() error
		Close()
	}

	Transport interface {
		Open(ctx context.Context, connect []byte) (Session, error)
	}

	Service struct {
		store  ProfileStore
		offers OfferProvider
		tr     Transport
		logger zerolog.Logger
	}

	Config struct {
		ProfileStore  ProfileStore
		OfferProvider OfferProvider // optional, profiles asking for an offer fail without it
		Transport     Transport
		Logger        *zerolog.Logger
	}
)

func NewService(cfg Config) *Service {
	return &Service{
		store:  cfg.ProfileStore,
		offers: cfg.OfferProvider,
		tr:     cfg.Transport,
		logger: cfg.Logger.With().Str("component", "connect").Logger(),
	}
}

func (svc *Service) ListProfiles() []string {
	return svc.store.ListProfiles()
}

// Message snapshots a profile into a connect message, attaching an SDP
// offer if the profile asks for one.
func (svc *Service) Message(name string) (*model.ConnectMessage, error) {
	p, err := svc.store.GetProfile(name)
	if err != nil {
		return nil, errors.Join(ErrProfile, err)
	}
	if err = p.Validate(); err != nil {
		return nil, errors.Join(ErrConfiguration, err)
	}

	var sdp *string
	if p.Offer {
		if svc.offers == nil {
			return nil, errors.Join(ErrConfiguration, errors.New("offer requested but no offer provider configured"))
		}
		offer, err := svc.offers.Offer(p.Role, p.VideoEnabled(), p.AudioEnabled())
		if err != nil {
			return nil, errors.Join(ErrConfiguration, err)
		}
		sdp = &offer
	}
	return p.ConnectMessage(sdp), nil
}

// Preview returns the connect document for a profile without connecting.
func (svc *Service) Preview(name string) ([]byte, error) {
	msg, err := svc.Message(name)
	if err != nil {
		return nil, err
	}
	b, err := msg.Encode()
	if err != nil {
		return nil, errors.Join(ErrConfiguration, err)
	}
	return b, nil
}

// Connect encodes the profile and opens a signaling session with it.
// Encode failures are configuration errors and never reach the transport.
func (svc *Service) Connect(ctx context.Context, name string) (Session, error) {
	logger := svc.logger.With().
		Str("profile", name).
		Str("attempt", uuid.NewString()).
		Logger()

	b, err := svc.Preview(name)
	if err != nil {
		logger.Error().Err(err).Msg("failed to build connect message")
		return nil, err
	}
	logger.Debug().RawJSON("connect", b).Msg("connect message encoded")

	s, err := svc.tr.Open(ctx, b)
	if err != nil {
		logger.Error().Err(err).Msg("failed to open signaling session")
		return nil, errors.Join(ErrConnect, err)
	}
	logger.Info().Msg("signaling session established")
	return s, nil
}

// Run connects and logs inbound frames until the session ends.
func (svc *Service) Run(ctx context.Context, name string) error {
	s, err := svc.Connect(ctx, name)
	if err != nil {
		return err
	}
	defer s.Close()

	logger := svc.logger.With().Str("profile", name).Logger()
	for {
		select {
		case msg, ok := <-s.Inbound():
			if !ok {
				<-s.Done()
				if err = s.Err(); err != nil {
					return errors.Join(ErrConnect, err)
				}
				return nil
			}
			logger.Debug().Bytes("message", msg).Msg("inbound signaling message")
		case <-ctx.Done():
			return nil
		}
	}
}
