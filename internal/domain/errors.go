package domain

import "errors"

// Error kinds returned by the bidding core. The boundary layer matches on
// these with errors.Is and translates them into user-facing responses.
var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrDuplicateGroup = errors.New("group already exists")
	ErrGroupNotFound  = errors.New("group not found")
	ErrMemberNotFound = errors.New("member not found in group")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrAdminForbidden = errors.New("admins cannot bid in their own auction")

	// ErrInvalidBidRecord signals a malformed ledger entry. Upstream
	// validation makes this unreachable for user input; seeing it means a
	// programming error.
	ErrInvalidBidRecord = errors.New("invalid bid record")

	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("incorrect username or password")
	ErrItemNotFound       = errors.New("item does not exist")
)
