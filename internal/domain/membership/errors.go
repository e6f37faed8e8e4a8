package membership

import "errors"

var (
	ErrMembershipNotFound = errors.New("membership not found")
	ErrMembershipExists   = errors.New("user already has a membership in this organization")
)
