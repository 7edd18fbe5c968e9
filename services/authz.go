package services

import "fmt"

// CanMutate reports whether the acting user may mutate an entity owned by
// ownerID. Exact identifier equality; the zero id never owns anything.
func CanMutate(actorID, ownerID uint) bool {
	return actorID != 0 && actorID == ownerID
}

// AssertOwner returns ErrUnauthorized when the actor does not own the entity.
// Every delete and update of a post, comment, or profile goes through here
// before any write is attempted.
func AssertOwner(actorID, ownerID uint) error {
	if !CanMutate(actorID, ownerID) {
		return fmt.Errorf("%w: user %d may not modify an entity owned by user %d", ErrUnauthorized, actorID, ownerID)
	}
	return nil
}
