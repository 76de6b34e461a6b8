package domain

import "errors"

var (
	// ErrInvalidCredentials covers both unknown email and wrong password so
	// that responses cannot be used to enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountLocked means the account is locked, temporarily or by admin.
	ErrAccountLocked = errors.New("account is locked")
	// ErrAccountInactive means the account exists but has been deactivated.
	ErrAccountInactive = errors.New("account is inactive")
	// ErrAccountNotFound means no account matches the lookup.
	ErrAccountNotFound = errors.New("account not found")
	// ErrEmailExists means the email is already registered.
	ErrEmailExists = errors.New("email already registered")
	// ErrUsernameExists means the username is already taken.
	ErrUsernameExists = errors.New("username already taken")
	// ErrPhoneExists means the rider phone number is already registered.
	ErrPhoneExists = errors.New("phone number already registered")
	// ErrUnknownRole means a role string is outside the closed set.
	ErrUnknownRole = errors.New("unknown role")
	// ErrLastAdmin guards against deleting the final administrator account.
	ErrLastAdmin = errors.New("cannot delete last admin")
	// ErrWrongPassword is returned by password change when the current
	// password does not verify.
	ErrWrongPassword = errors.New("current password is incorrect")
	// ErrRiderNotFound means no rider profile matches the lookup.
	ErrRiderNotFound = errors.New("rider not found")
	// ErrShopNotFound means no online shop matches the lookup.
	ErrShopNotFound = errors.New("online shop not found")
	// ErrMissingCredentials means login input was empty; rejected before any
	// store access.
	ErrMissingCredentials = errors.New("email and password are required")
	// ErrRoleNotAllowed means the caller asked for a role it may not assign,
	// e.g. self-registering as admin.
	ErrRoleNotAllowed = errors.New("role cannot be assigned at registration")
)
