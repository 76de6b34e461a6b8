package domain

import "time"

// LockedError is an AccountLocked failure carrying the lock deadline. A nil
// Until means a permanent admin lock.
type LockedError struct {
	Until *time.Time
}

func (e *LockedError) Error() string { return ErrAccountLocked.Error() }

// Is lets errors.Is(err, ErrAccountLocked) match a *LockedError.
func (e *LockedError) Is(target error) bool { return target == ErrAccountLocked }

// FailedLoginError is an InvalidCredentials failure after a wrong password,
// carrying the number of attempts left before lockout. Its message is
// identical to the unknown-email failure so the two cannot be told apart.
type FailedLoginError struct {
	AttemptsRemaining int
}

func (e *FailedLoginError) Error() string { return ErrInvalidCredentials.Error() }

// Is lets errors.Is(err, ErrInvalidCredentials) match a *FailedLoginError.
func (e *FailedLoginError) Is(target error) bool { return target == ErrInvalidCredentials }
