package test

import (
	"testing"

	"github.com/hrygo/searchviz/internal/profile"
	"github.com/hrygo/searchviz/store"
	"github.com/hrygo/searchviz/store/db"
)

// NewTestingStore returns an empty graph store that is closed when t ends.
func NewTestingStore(t *testing.T) *store.Store {
	t.Helper()

	profile := getTestingProfile(t)
	driver, err := db.NewDBDriver(profile)
	if err != nil {
		t.Fatalf("failed to create graph driver: %v", err)
	}

	s := store.New(driver, profile)
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	})
	return s
}

func getTestingProfile(t *testing.T) *profile.Profile {
	t.Helper()

	p := &profile.Profile{Mode: "dev", Driver: "memory"}
	if err := p.Validate(); err != nil {
		t.Fatalf("invalid testing profile: %v", err)
	}
	return p
}
