package model

import "fmt"

// Simulcast is a requested simulcast quality tier. There is no default
// variant; absence is expressed with a nil *Simulcast.
type Simulcast uint8

const (
	SimulcastLow Simulcast = iota + 1
	SimulcastMiddle
	SimulcastHigh
)

var simulcastTable = NewPairTable("Simulcast",
	Pair[Simulcast]{"low", SimulcastLow},
	Pair[Simulcast]{"middle", SimulcastMiddle},
	Pair[Simulcast]{"high", SimulcastHigh},
)

// SimulcastTable exposes the simulcast mapping.
func SimulcastTable() *PairTable[Simulcast] {
	return simulcastTable
}

func (s Simulcast) String() string {
	w, err := simulcastTable.Encode(s)
	if err != nil {
		return fmt.Sprintf("Simulcast(%d)", uint8(s))
	}
	return w
}

func (s Simulcast) MarshalText() ([]byte, error) {
	w, err := simulcastTable.Encode(s)
	if err != nil {
		return nil, err
	}
	return []byte(w), nil
}

func (s *Simulcast) UnmarshalText(text []byte) error {
	return s.Set(string(text))
}

func (s *Simulcast) Set(w string) error {
	v, err := simulcastTable.Decode(w)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

func (s *Simulcast) Type() string {
	return "simulcast"
}
