package memory

import (
	"errors"
	"testing"

	"github.com/adwski/sora-connect/client/config"
	"github.com/adwski/sora-connect/client/model"
)

func TestMemStore(t *testing.T) {
	ms := NewMemStoreFromFile(&config.File{
		Profiles: map[string]*config.Profile{
			"b": {ChannelID: "c2", Role: model.RoleRecvOnly},
			"a": {ChannelID: "c1", Role: model.RoleSendOnly},
		},
	})

	if names := ms.ListProfiles(); len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Fatalf("unexpected names %v", names)
	}

	p, err := ms.GetProfile("a")
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "a" || p.ChannelID != "c1" {
		t.Errorf("unexpected profile %+v", p)
	}

	p.ChannelID = "changed"
	again, _ := ms.GetProfile("a")
	if again.ChannelID != "c1" {
		t.Error("GetProfile must return a copy")
	}

	if _, err = ms.GetProfile("missing"); !errors.Is(err, ErrProfileNotFound) {
		t.Errorf("expected ErrProfileNotFound, got %v", err)
	}

	if err = ms.PutProfile(&config.Profile{}); !errors.Is(err, ErrProfileNoName) {
		t.Errorf("expected ErrProfileNoName, got %v", err)
	}
	if err = ms.PutProfile(&config.Profile{Name: "c", ChannelID: "c3", Role: model.RoleSendRecv}); err != nil {
		t.Fatal(err)
	}
	if names := ms.ListProfiles(); len(names) != 3 {
		t.Errorf("unexpected names %v", names)
	}
}
