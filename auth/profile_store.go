package auth

import (
	"context"
	"encoding/json"

	"github.com/jrsteele09/go-ticket-client/tokenstore"
	"github.com/jrsteele09/go-ticket-client/users"
	"github.com/pkg/errors"
)

// SaveProfile persists p as JSON in the user data slot.
func SaveProfile(ctx context.Context, store tokenstore.Repo, p *users.Profile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return errors.Wrap(err, "[auth.SaveProfile] encoding")
	}
	if err := store.Set(ctx, tokenstore.SlotUserData, string(data)); err != nil {
		return errors.Wrap(err, "[auth.SaveProfile]")
	}
	return nil
}

// LoadProfile reads the persisted profile. It returns nil when none is stored
// and CorruptProfileErr when the slot does not decode.
func LoadProfile(ctx context.Context, store tokenstore.Repo) (*users.Profile, error) {
	data, err := store.Get(ctx, tokenstore.SlotUserData)
	if err != nil {
		return nil, errors.Wrap(err, "[auth.LoadProfile]")
	}
	if data == "" {
		return nil, nil
	}
	var p users.Profile
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return nil, errors.Wrapf(CorruptProfileErr, "[auth.LoadProfile] %v", err)
	}
	return &p, nil
}
