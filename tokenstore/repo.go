package tokenstore

import "context"

// Slot names a single value in the token store.
type Slot string

const (
	SlotAccessToken  Slot = "access_token"
	SlotRefreshToken Slot = "refresh_token"
	SlotUserData     Slot = "user_data"
)

// AllSlots lists every slot, in the order they are cleared.
var AllSlots = []Slot{SlotAccessToken, SlotRefreshToken, SlotUserData}

// Repo is durable key/value storage for the session. Reading an absent slot
// returns "" and no error. Writes to different slots are independent.
type Repo interface {
	Get(ctx context.Context, slot Slot) (string, error)
	Set(ctx context.Context, slot Slot, value string) error
	// Clear removes the given slots, or every slot when none are given.
	Clear(ctx context.Context, slots ...Slot) error
}

// Targets resolves the slot list used by Clear.
func Targets(slots []Slot) []Slot {
	if len(slots) == 0 {
		return AllSlots
	}
	return slots
}
