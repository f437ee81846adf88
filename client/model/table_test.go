package model

import (
	"errors"
	"testing"
)

func checkRoundTrip[T comparable](t *testing.T, table *PairTable[T]) {
	t.Helper()
	for _, p := range table.Pairs() {
		w, err := table.Encode(p.Value)
		if err != nil {
			t.Fatalf("%s: encode %v: %v", table.Name(), p.Value, err)
		}
		if w != p.Wire {
			t.Errorf("%s: encode %v = %q, want %q", table.Name(), p.Value, w, p.Wire)
		}
		got, err := table.Decode(w)
		if err != nil {
			t.Fatalf("%s: decode %q: %v", table.Name(), w, err)
		}
		if got != p.Value {
			t.Errorf("%s: decode(encode(%v)) = %v", table.Name(), p.Value, got)
		}
	}
}

func TestPairTableRoundTrip(t *testing.T) {
	t.Run("role", func(t *testing.T) { checkRoundTrip(t, roleTable) })
	t.Run("simulcast", func(t *testing.T) { checkRoundTrip(t, simulcastTable) })
	t.Run("video codec", func(t *testing.T) { checkRoundTrip(t, videoCodecTable) })
	t.Run("audio codec", func(t *testing.T) { checkRoundTrip(t, audioCodecTable) })
}

// Every declared variant must have exactly one pair.
func TestTablesAreComplete(t *testing.T) {
	for r := RoleUpstream; r <= RoleSendRecv; r++ {
		if _, err := roleTable.Encode(r); err != nil {
			t.Errorf("role %d: %v", r, err)
		}
	}
	for s := SimulcastLow; s <= SimulcastHigh; s++ {
		if _, err := simulcastTable.Encode(s); err != nil {
			t.Errorf("simulcast %d: %v", s, err)
		}
	}
	for c := VideoCodecVP8; c <= VideoCodecH265; c++ {
		if _, err := videoCodecTable.Encode(c); err != nil {
			t.Errorf("video codec %d: %v", c, err)
		}
	}
	for c := AudioCodecOpus; c <= AudioCodecPCMU; c++ {
		if _, err := audioCodecTable.Encode(c); err != nil {
			t.Errorf("audio codec %d: %v", c, err)
		}
	}
	if _, err := videoCodecTable.Encode(VideoCodecDefault); err == nil {
		t.Error("default video codec must not have a wire string")
	}
	if _, err := audioCodecTable.Encode(AudioCodecDefault); err == nil {
		t.Error("default audio codec must not have a wire string")
	}
}

func TestPairTableDecodeUnknown(t *testing.T) {
	for _, s := range []string{"", "h264", "Upstream", "publisher", " VP8"} {
		_, err := videoCodecTable.Decode(s)
		if !errors.Is(err, ErrMapping) {
			t.Errorf("decode %q: expected ErrMapping, got %v", s, err)
		}
		var mErr *MappingError
		if !errors.As(err, &mErr) {
			t.Fatalf("decode %q: expected *MappingError, got %T", s, err)
		}
		if mErr.Table != "VideoCodec" || mErr.Value != s {
			t.Errorf("unexpected mapping error fields: %+v", mErr)
		}
	}
}

func TestPairTableEncodeMissing(t *testing.T) {
	_, err := roleTable.Encode(Role(0))
	var mErr *MappingError
	if !errors.As(err, &mErr) {
		t.Fatalf("expected *MappingError, got %v", err)
	}
	if mErr.Table != "Role" {
		t.Errorf("table = %q", mErr.Table)
	}
	if want := "Role: no mapping for value Role(0)"; err.Error() != want {
		t.Errorf("error = %q, want %q", err.Error(), want)
	}
}

func TestNewPairTablePanicsOnDuplicates(t *testing.T) {
	testCases := []struct {
		name  string
		pairs []Pair[int]
	}{
		{
			name:  "duplicate wire string",
			pairs: []Pair[int]{{"a", 1}, {"a", 2}},
		},
		{
			name:  "duplicate value",
			pairs: []Pair[int]{{"a", 1}, {"b", 1}},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("expected panic")
				}
			}()
			NewPairTable("dup", tc.pairs...)
		})
	}
}

func TestPairsReturnsCopy(t *testing.T) {
	pairs := simulcastTable.Pairs()
	pairs[0].Wire = "mutated"
	if w, _ := simulcastTable.Encode(SimulcastLow); w != "low" {
		t.Errorf("table was mutated through Pairs: %q", w)
	}
	if got := simulcastTable.Wires(); len(got) != 3 || got[1] != "middle" {
		t.Errorf("unexpected wires %v", got)
	}
}

func TestEnumTextAndFlagValues(t *testing.T) {
	var r Role
	if err := r.Set("recvonly"); err != nil || r != RoleRecvOnly {
		t.Fatalf("Set recvonly: %v %v", r, err)
	}
	if err := r.UnmarshalText([]byte("bogus")); !errors.Is(err, ErrMapping) {
		t.Errorf("expected ErrMapping, got %v", err)
	}
	if r != RoleRecvOnly {
		t.Errorf("failed Set must not change the value, got %v", r)
	}

	var vc VideoCodec = VideoCodecH264
	if err := vc.Set(DefaultCodecName); err != nil || vc != VideoCodecDefault {
		t.Errorf("Set default: %v %v", vc, err)
	}
	if b, err := VideoCodecAV1.MarshalText(); err != nil || string(b) != "AV1" {
		t.Errorf("MarshalText AV1 = %q, %v", b, err)
	}

	var ac AudioCodec
	if err := ac.Set("PCMU"); err != nil || ac != AudioCodecPCMU {
		t.Errorf("Set PCMU: %v %v", ac, err)
	}
	if ac.String() != "PCMU" || AudioCodecDefault.String() != "default" {
		t.Errorf("unexpected String values %q %q", ac.String(), AudioCodecDefault.String())
	}

	var s Simulcast
	if err := s.Set("middle"); err != nil || s != SimulcastMiddle {
		t.Errorf("Set middle: %v %v", s, err)
	}
	if _, err := Simulcast(9).MarshalText(); !errors.Is(err, ErrMapping) {
		t.Errorf("expected ErrMapping, got %v", err)
	}
}

func TestRoleDirections(t *testing.T) {
	testCases := []struct {
		role     Role
		sends    bool
		receives bool
	}{
		{RoleUpstream, true, false},
		{RoleDownstream, false, true},
		{RoleSendOnly, true, false},
		{RoleRecvOnly, false, true},
		{RoleSendRecv, true, true},
	}
	for _, tc := range testCases {
		if tc.role.Sends() != tc.sends || tc.role.Receives() != tc.receives {
			t.Errorf("%v: sends=%v receives=%v", tc.role, tc.role.Sends(), tc.role.Receives())
		}
	}
}
