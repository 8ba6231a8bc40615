package db

import (
	"github.com/pkg/errors"

	"github.com/hrygo/searchviz/internal/profile"
	"github.com/hrygo/searchviz/store"
	"github.com/hrygo/searchviz/store/db/memory"
)

// NewDBDriver creates new graph storage driver based on profile.
// Event history is never persisted, so the in-memory driver is the only one.
func NewDBDriver(profile *profile.Profile) (store.Driver, error) {
	var driver store.Driver
	var err error

	switch profile.Driver {
	case "", "memory":
		driver, err = memory.NewDB(profile)
	default:
		return nil, errors.Errorf("unknown graph driver %q: only 'memory' is supported", profile.Driver)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to create graph driver")
	}
	return driver, nil
}
