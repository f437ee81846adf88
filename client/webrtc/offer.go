// Package webrtc builds the SDP offer sent in the connect message, which the
// server uses to learn what the client is capable of.
package webrtc

import (
	"errors"

	"github.com/adwski/sora-connect/client/model"
	"github.com/pion/webrtc/v4"
)

var ErrOffer = errors.New("unable to create offer")

type OfferProvider struct {
	api *webrtc.API
}

func NewOfferProvider() (*OfferProvider, error) {
	m := &webrtc.MediaEngine{}
	if err := m.RegisterDefaultCodecs(); err != nil {
		return nil, errors.Join(ErrOffer, err)
	}
	return &OfferProvider{
		api: webrtc.NewAPI(webrtc.WithMediaEngine(m)),
	}, nil
}

// Offer creates an SDP offer with one transceiver per enabled media kind,
// facing the direction implied by role. The peer connection is discarded.
func (op *OfferProvider) Offer(role model.Role, video, audio bool) (sdp string, err error) {
	pc, err := op.api.NewPeerConnection(webrtc.Configuration{})
	if err != nil {
		return "", errors.Join(ErrOffer, err)
	}
	defer func() {
		if cErr := pc.Close(); cErr != nil && err == nil {
			err = errors.Join(ErrOffer, cErr)
		}
	}()

	trInit := webrtc.RTPTransceiverInit{Direction: direction(role)}
	if video {
		if _, err = pc.AddTransceiverFromKind(webrtc.RTPCodecTypeVideo, trInit); err != nil {
			return "", errors.Join(ErrOffer, err)
		}
	}
	if audio {
		if _, err = pc.AddTransceiverFromKind(webrtc.RTPCodecTypeAudio, trInit); err != nil {
			return "", errors.Join(ErrOffer, err)
		}
	}
	if !video && !audio {
		// an offer needs at least one section
		if _, err = pc.CreateDataChannel("signaling", nil); err != nil {
			return "", errors.Join(ErrOffer, err)
		}
	}

	offer, err := pc.CreateOffer(nil)
	if err != nil {
		return "", errors.Join(ErrOffer, err)
	}
	return offer.SDP, nil
}

func direction(role model.Role) webrtc.RTPTransceiverDirection {
	switch {
	case role.Sends() && role.Receives():
		return webrtc.RTPTransceiverDirectionSendrecv
	case role.Sends():
		return webrtc.RTPTransceiverDirectionSendonly
	default:
		return webrtc.RTPTransceiverDirectionRecvonly
	}
}
