package model

import "fmt"

// Role is the part the connecting client plays in the channel.
type Role uint8

const (
	// RoleUpstream and RoleDownstream are the legacy publisher/subscriber roles.
	RoleUpstream Role = iota + 1
	RoleDownstream
	RoleSendOnly
	RoleRecvOnly
	RoleSendRecv
)

var roleTable = NewPairTable("Role",
	Pair[Role]{"upstream", RoleUpstream},
	Pair[Role]{"downstream", RoleDownstream},
	Pair[Role]{"sendonly", RoleSendOnly},
	Pair[Role]{"recvonly", RoleRecvOnly},
	Pair[Role]{"sendrecv", RoleSendRecv},
)

// RoleTable exposes the role mapping for diagnostics and flag help.
func RoleTable() *PairTable[Role] {
	return roleTable
}

// Sends reports whether the role publishes media.
func (r Role) Sends() bool {
	return r == RoleUpstream || r == RoleSendOnly || r == RoleSendRecv
}

// Receives reports whether the role subscribes to media.
func (r Role) Receives() bool {
	return r == RoleDownstream || r == RoleRecvOnly || r == RoleSendRecv
}

func (r Role) String() string {
	s, err := roleTable.Encode(r)
	if err != nil {
		return fmt.Sprintf("Role(%d)", uint8(r))
	}
	return s
}

func (r Role) MarshalText() ([]byte, error) {
	s, err := roleTable.Encode(r)
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}

func (r *Role) UnmarshalText(text []byte) error {
	return r.Set(string(text))
}

// Set implements pflag.Value.
func (r *Role) Set(s string) error {
	v, err := roleTable.Decode(s)
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// Type implements pflag.Value.
func (r *Role) Type() string {
	return "role"
}
