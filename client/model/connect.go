package model

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// Metadata slots as they appear on the wire.
const (
	SlotMetadata       = "metadata"
	SlotNotifyMetadata = "signaling_notify_metadata"
)

// MetadataError tags a failure of a caller-supplied metadata serializer
// with the slot it was encoding.
type MetadataError struct {
	Slot string
	Err  error
}

func (e *MetadataError) Error() string {
	return fmt.Sprintf("failed to encode %s: %v", e.Slot, e.Err)
}

func (e *MetadataError) Unwrap() error {
	return e.Err
}

// ConnectMessage is the "connect" signaling message, sent first after the
// signaling connection is established. Nil pointers and nil metadata mean
// the field is absent.
type ConnectMessage struct {
	Role      Role
	ChannelID string

	// Metadata and NotifyMetadata are opaque to the encoder and serialized
	// with encoding/json, so a json.Marshaler controls its own document.
	// A nil pointer, map, slice or interface counts as absent.
	Metadata       any
	NotifyMetadata any

	// SDP identifies client capability to the server.
	SDP *string

	MultistreamEnabled bool
	PlanBEnabled       bool

	// Spotlight and Simulcast are reserved and not written by Encode.
	Spotlight *int
	Simulcast *Simulcast

	VideoEnabled bool
	VideoCodec   VideoCodec
	VideoBitRate *int

	AudioEnabled bool
	AudioCodec   AudioCodec

	// MaxNumberOfSpeakers is sent as "vad".
	MaxNumberOfSpeakers *int
}

type connectDocument struct {
	Role           string          `json:"role"`
	ChannelID      string          `json:"channel_id"`
	SDP            *string         `json:"sdp,omitempty"`
	Metadata       json.RawMessage `json:"metadata,omitempty"`
	NotifyMetadata json.RawMessage `json:"signaling_notify_metadata,omitempty"`
	Multistream    bool            `json:"multistream,omitempty"`
	PlanB          bool            `json:"plan_b,omitempty"`
	Video          any             `json:"video,omitempty"` // false or *videoDocument
	Audio          any             `json:"audio,omitempty"` // false or *audioDocument
	VAD            *int            `json:"vad,omitempty"`
}

type videoDocument struct {
	CodecType string `json:"codec_type,omitempty"`
	BitRate   *int   `json:"bit_rate,omitempty"`
}

type audioDocument struct {
	CodecType string `json:"codec_type"`
}

// Encode returns the wire document for m. On error no document is returned.
func (m ConnectMessage) Encode() ([]byte, error) {
	doc, err := m.document()
	if err != nil {
		return nil, err
	}
	return json.Marshal(doc)
}

// MarshalJSON lets a ConnectMessage be embedded in other documents, by
// value or by pointer.
func (m ConnectMessage) MarshalJSON() ([]byte, error) {
	return m.Encode()
}

func (m ConnectMessage) document() (*connectDocument, error) {
	role, err := roleTable.Encode(m.Role)
	if err != nil {
		return nil, err
	}
	doc := &connectDocument{
		Role:        role,
		ChannelID:   m.ChannelID,
		SDP:         m.SDP,
		Multistream: m.MultistreamEnabled,
		PlanB:       m.PlanBEnabled,
		VAD:         m.MaxNumberOfSpeakers,
	}

	if present(m.Metadata) {
		if doc.Metadata, err = json.Marshal(m.Metadata); err != nil {
			return nil, &MetadataError{Slot: SlotMetadata, Err: err}
		}
	}
	if present(m.NotifyMetadata) {
		if doc.NotifyMetadata, err = json.Marshal(m.NotifyMetadata); err != nil {
			return nil, &MetadataError{Slot: SlotNotifyMetadata, Err: err}
		}
	}

	if !m.VideoEnabled {
		doc.Video = false
	} else if m.VideoCodec != VideoCodecDefault || m.VideoBitRate != nil {
		video := &videoDocument{BitRate: m.VideoBitRate}
		if m.VideoCodec != VideoCodecDefault {
			if video.CodecType, err = videoCodecTable.Encode(m.VideoCodec); err != nil {
				return nil, err
			}
		}
		doc.Video = video
	}

	if !m.AudioEnabled {
		doc.Audio = false
	} else if m.AudioCodec != AudioCodecDefault {
		codec, err := audioCodecTable.Encode(m.AudioCodec)
		if err != nil {
			return nil, err
		}
		doc.Audio = &audioDocument{CodecType: codec}
	}

	return doc, nil
}

// present reports whether an opaque metadata value should be written.
func present(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return !rv.IsNil()
	}
	return true
}

// Redacted returns a copy safe for diagnostics: present metadata is replaced
// with a placeholder since it usually carries credentials.
func (m ConnectMessage) Redacted() ConnectMessage {
	if present(m.Metadata) {
		m.Metadata = redactedMetadata
	}
	if present(m.NotifyMetadata) {
		m.NotifyMetadata = redactedMetadata
	}
	return m
}

const redactedMetadata = "<redacted>"
