package model

import "fmt"

// DefaultCodecName is how a default codec is spelled in config and flags.
// It is never written to the signaling wire.
const DefaultCodecName = "default"

// VideoCodec selects the video codec. The zero value leaves the choice to the server.
type VideoCodec uint8

const (
	VideoCodecDefault VideoCodec = iota
	VideoCodecVP8
	VideoCodecVP9
	VideoCodecAV1
	VideoCodecH264
	VideoCodecH265
)

var videoCodecTable = NewPairTable("VideoCodec",
	Pair[VideoCodec]{"VP8", VideoCodecVP8},
	Pair[VideoCodec]{"VP9", VideoCodecVP9},
	Pair[VideoCodec]{"AV1", VideoCodecAV1},
	Pair[VideoCodec]{"H264", VideoCodecH264},
	Pair[VideoCodec]{"H265", VideoCodecH265},
)

// VideoCodecTable exposes the video codec mapping. The default variant has no pair.
func VideoCodecTable() *PairTable[VideoCodec] {
	return videoCodecTable
}

func (c VideoCodec) String() string {
	if c == VideoCodecDefault {
		return DefaultCodecName
	}
	s, err := videoCodecTable.Encode(c)
	if err != nil {
		return fmt.Sprintf("VideoCodec(%d)", uint8(c))
	}
	return s
}

func (c VideoCodec) MarshalText() ([]byte, error) {
	if c == VideoCodecDefault {
		return []byte(DefaultCodecName), nil
	}
	s, err := videoCodecTable.Encode(c)
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}

func (c *VideoCodec) UnmarshalText(text []byte) error {
	return c.Set(string(text))
}

// Set accepts a wire string or DefaultCodecName.
func (c *VideoCodec) Set(s string) error {
	if s == DefaultCodecName {
		*c = VideoCodecDefault
		return nil
	}
	v, err := videoCodecTable.Decode(s)
	if err != nil {
		return err
	}
	*c = v
	return nil
}

func (c *VideoCodec) Type() string {
	return "video-codec"
}

// AudioCodec selects the audio codec. The zero value leaves the choice to the server.
type AudioCodec uint8

const (
	AudioCodecDefault AudioCodec = iota
	AudioCodecOpus
	AudioCodecPCMU
)

var audioCodecTable = NewPairTable("AudioCodec",
	Pair[AudioCodec]{"OPUS", AudioCodecOpus},
	Pair[AudioCodec]{"PCMU", AudioCodecPCMU},
)

// AudioCodecTable exposes the audio codec mapping. The default variant has no pair.
func AudioCodecTable() *PairTable[AudioCodec] {
	return audioCodecTable
}

func (c AudioCodec) String() string {
	if c == AudioCodecDefault {
		return DefaultCodecName
	}
	s, err := audioCodecTable.Encode(c)
	if err != nil {
		return fmt.Sprintf("AudioCodec(%d)", uint8(c))
	}
	return s
}

func (c AudioCodec) MarshalText() ([]byte, error) {
	if c == AudioCodecDefault {
		return []byte(DefaultCodecName), nil
	}
	s, err := audioCodecTable.Encode(c)
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}

func (c *AudioCodec) UnmarshalText(text []byte) error {
	return c.Set(string(text))
}

func (c *AudioCodec) Set(s string) error {
	if s == DefaultCodecName {
		*c = AudioCodecDefault
		return nil
	}
	v, err := audioCodecTable.Decode(s)
	if err != nil {
		return err
	}
	*c = v
	return nil
}

func (c *AudioCodec) Type() string {
	return "audio-codec"
}
