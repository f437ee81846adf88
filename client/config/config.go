// Package config loads connection profiles from YAML and applies
// command line overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/adwski/sora-connect/client/model"
	"gopkg.in/yaml.v3"
)

const (
	defaultHandshakeTimeout = 5 * time.Second
	defaultWriteTimeout     = 5 * time.Second
	defaultPingInterval     = 5 * time.Second
	defaultPongWait         = 7 * time.Second
)

var (
	ErrNoSignalingURL = errors.New("signaling_url is not set")
	ErrNoProfiles     = errors.New("no profiles defined")
	ErrInvalidProfile = errors.New("invalid profile")
)

type (
	File struct {
		SignalingURL string `yaml:"signaling_url"`

		HandshakeTimeout time.Duration `yaml:"handshake_timeout"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`

		// PongWait - PingInterval is how long the server has to answer a ping.
		PingInterval time.Duration `yaml:"ping_interval"`
		PongWait     time.Duration `yaml:"pong_wait"`

		Profiles map[string]*Profile `yaml:"profiles"`
	}

	// Profile is the user facing description of one connect message.
	Profile struct {
		Name string `yaml:"-"`

		ChannelID      string     `yaml:"channel_id"`
		Role           model.Role `yaml:"role"`
		Metadata       any        `yaml:"metadata"`
		NotifyMetadata any        `yaml:"notify_metadata"`

		// Offer asks the client to attach a locally generated SDP offer.
		Offer bool `yaml:"offer"`

		Multistream bool `yaml:"multistream"`
		PlanB       bool `yaml:"plan_b"`

		Spotlight *int             `yaml:"spotlight"`
		Simulcast *model.Simulcast `yaml:"simulcast"`

		Video VideoConfig `yaml:"video"`
		Audio AudioConfig `yaml:"audio"`

		MaxNumberOfSpeakers *int `yaml:"vad"`
	}

	VideoConfig struct {
		Enabled *bool            `yaml:"enabled"`
		Codec   model.VideoCodec `yaml:"codec"`
		BitRate *int             `yaml:"bit_rate"`
	}

	AudioConfig struct {
		Enabled *bool            `yaml:"enabled"`
		Codec   model.AudioCodec `yaml:"codec"`
	}
)

// Load reads and validates a YAML config file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates YAML config data, applying defaults.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if f.SignalingURL == "" {
		return nil, ErrNoSignalingURL
	}
	if len(f.Profiles) == 0 {
		return nil, ErrNoProfiles
	}
	f.setDefaults()
	for name, p := range f.Profiles {
		if p == nil {
			p = &Profile{}
			f.Profiles[name] = p
		}
		p.Name = name
		if err := p.Validate(); err != nil {
			return nil, err
		}
	}
	return &f, nil
}

func (f *File) setDefaults() {
	if f.HandshakeTimeout == 0 {
		f.HandshakeTimeout = defaultHandshakeTimeout
	}
	if f.WriteTimeout == 0 {
		f.WriteTimeout = defaultWriteTimeout
	}
	if f.PingInterval == 0 {
		f.PingInterval = defaultPingInterval
	}
	if f.PongWait == 0 {
		f.PongWait = defaultPongWait
	}
}

// ProfileNames returns profile names in sorted order.
func (f *File) ProfileNames() []string {
	names := make([]string, 0, len(f.Profiles))
	for name := range f.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks the fields the server cannot default for us.
func (p *Profile) Validate() error {
	if p.ChannelID == "" {
		return fmt.Errorf("%w %q: channel_id is required", ErrInvalidProfile, p.Name)
	}
	if _, err := p.Role.MarshalText(); err != nil {
		return errors.Join(fmt.Errorf("%w %q: role", ErrInvalidProfile, p.Name), err)
	}
	if p.Video.BitRate != nil && *p.Video.BitRate < 0 {
		return fmt.Errorf("%w %q: negative video bit rate", ErrInvalidProfile, p.Name)
	}
	if p.MaxNumberOfSpeakers != nil && *p.MaxNumberOfSpeakers < 0 {
		return fmt.Errorf("%w %q: negative vad", ErrInvalidProfile, p.Name)
	}
	if p.Spotlight != nil && *p.Spotlight < 0 {
		return fmt.Errorf("%w %q: negative spotlight", ErrInvalidProfile, p.Name)
	}
	return nil
}

// VideoEnabled defaults to true when not configured.
func (p *Profile) VideoEnabled() bool {
	return p.Video.Enabled == nil || *p.Video.Enabled
}

// AudioEnabled defaults to true when not configured.
func (p *Profile) AudioEnabled() bool {
	return p.Audio.Enabled == nil || *p.Audio.Enabled
}

// ConnectMessage snapshots the profile into a connect message. Optional
// values and YAML decoded metadata (maps and lists) are deep copied so later
// edits do not leak into an encode in progress; metadata of any other type
// is shared as is.
func (p *Profile) ConnectMessage(sdp *string) *model.ConnectMessage {
	return &model.ConnectMessage{
		Role:                p.Role,
		ChannelID:           p.ChannelID,
		Metadata:            copyMetadata(p.Metadata),
		NotifyMetadata:      copyMetadata(p.NotifyMetadata),
		SDP:                 sdp,
		MultistreamEnabled:  p.Multistream,
		PlanBEnabled:        p.PlanB,
		Spotlight:           copyInt(p.Spotlight),
		Simulcast:           copySimulcast(p.Simulcast),
		VideoEnabled:        p.VideoEnabled(),
		VideoCodec:          p.Video.Codec,
		VideoBitRate:        copyInt(p.Video.BitRate),
		AudioEnabled:        p.AudioEnabled(),
		AudioCodec:          p.Audio.Codec,
		MaxNumberOfSpeakers: copyInt(p.MaxNumberOfSpeakers),
	}
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func copySimulcast(v *model.Simulcast) *model.Simulcast {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func copyMetadata(v any) any {
	switch t := v.(type) {
	case map[string]any:
		c := make(map[string]any, len(t))
		for k, e := range t {
			c[k] = copyMetadata(e)
		}
		return c
	case []any:
		c := make([]any, len(t))
		for i, e := range t {
			c[i] = copyMetadata(e)
		}
		return c
	}
	return v
}
