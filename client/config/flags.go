package config

import (
	"strings"

	"github.com/adwski/sora-connect/client/model"
	"github.com/spf13/pflag"
)

// Overrides holds profile fields that may be set on the command line.
// Only flags that were explicitly passed are applied.
type Overrides struct {
	fs *pflag.FlagSet

	channelID    string
	role         model.Role
	multistream  bool
	planB        bool
	offer        bool
	videoEnabled bool
	videoCodec   model.VideoCodec
	videoBitRate int
	audioEnabled bool
	audioCodec   model.AudioCodec
	vad          int
}

// BindOverrides registers override flags on fs.
func BindOverrides(fs *pflag.FlagSet) *Overrides {
	o := &Overrides{fs: fs}
	fs.StringVar(&o.channelID, "channel-id", "", "channel id")
	fs.Var(&o.role, "role", "role: "+strings.Join(model.RoleTable().Wires(), ", "))
	fs.BoolVar(&o.multistream, "multistream", false, "enable multistream")
	fs.BoolVar(&o.planB, "plan-b", false, "enable plan b")
	fs.BoolVar(&o.offer, "offer", false, "attach a locally generated sdp offer")
	fs.BoolVar(&o.videoEnabled, "video", true, "enable video")
	fs.Var(&o.videoCodec, "video-codec",
		"video codec: "+strings.Join(append([]string{model.DefaultCodecName}, model.VideoCodecTable().Wires()...), ", "))
	fs.IntVar(&o.videoBitRate, "video-bit-rate", 0, "video bit rate")
	fs.BoolVar(&o.audioEnabled, "audio", true, "enable audio")
	fs.Var(&o.audioCodec, "audio-codec",
		"audio codec: "+strings.Join(append([]string{model.DefaultCodecName}, model.AudioCodecTable().Wires()...), ", "))
	fs.IntVar(&o.vad, "vad", 0, "max number of speakers")
	return o
}

// Apply copies explicitly passed flags onto p.
func (o *Overrides) Apply(p *Profile) {
	if o.fs.Changed("channel-id") {
		p.ChannelID = o.channelID
	}
	if o.fs.Changed("role") {
		p.Role = o.role
	}
	if o.fs.Changed("multistream") {
		p.Multistream = o.multistream
	}
	if o.fs.Changed("plan-b") {
		p.PlanB = o.planB
	}
	if o.fs.Changed("offer") {
		p.Offer = o.offer
	}
	if o.fs.Changed("video") {
		v := o.videoEnabled
		p.Video.Enabled = &v
	}
	if o.fs.Changed("video-codec") {
		p.Video.Codec = o.videoCodec
	}
	if o.fs.Changed("video-bit-rate") {
		v := o.videoBitRate
		p.Video.BitRate = &v
	}
	if o.fs.Changed("audio") {
		v := o.audioEnabled
		p.Audio.Enabled = &v
	}
	if o.fs.Changed("audio-codec") {
		p.Audio.Codec = o.audioCodec
	}
	if o.fs.Changed("vad") {
		v := o.vad
		p.MaxNumberOfSpeakers = &v
	}
}
