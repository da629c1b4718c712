package common

import "errors"

var (
	// ErrAuthorityWitnessFailed appears when the method must be
	// called by the authority but was not.
	ErrAuthorityWitnessFailed = errors.New("authority witness check failed")
	// ErrOwnerWitnessFailed appears when the method must be called
	// by an owner of some assets but was not.
	ErrOwnerWitnessFailed = errors.New("owner witness check failed")
)

// CheckAuthorityWitness checks that the caller is the authority.
// It returns ErrAuthorityWitnessFailed on fail.
func CheckAuthorityWitness(caller, authority string) error {
	return checkWitness(caller, authority, ErrAuthorityWitnessFailed)
}

// CheckOwnerWitness checks that the caller is the owner.
// It returns ErrOwnerWitnessFailed on fail.
func CheckOwnerWitness(caller, owner string) error {
	return checkWitness(caller, owner, ErrOwnerWitnessFailed)
}

func checkWitness(caller, expected string, err error) error {
	if caller == "" || caller != expected {
		return err
	}

	return nil
}
