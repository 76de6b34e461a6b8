package domain

import "time"

// Account is an authenticatable identity. The lock fields drive the login
// guard: AccountLocked with a future LockUntil is a temporary lockout,
// AccountLocked with a nil LockUntil is a permanent lock set by an admin.
type Account struct {
	ID                  string     `json:"id"`
	Username            string     `json:"username"`
	Email               string     `json:"email"`
	HashedPassword      string     `json:"-"`
	Role                Role       `json:"role"`
	IsActive            bool       `json:"is_active"`
	FailedLoginAttempts int        `json:"-"`
	AccountLocked       bool       `json:"-"`
	LockUntil           *time.Time `json:"-"`
	LastLoginAt         *time.Time `json:"last_login_at,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// LockedNow reports whether the account is currently unable to log in:
// either permanently locked or inside an unexpired temporary lockout.
func (a *Account) LockedNow(now time.Time) bool {
	if !a.AccountLocked {
		return false
	}
	if a.LockUntil == nil {
		return true
	}
	return now.Before(*a.LockUntil)
}

// SafeView is the account representation returned to clients. It can never
// carry the password hash because the hash is excluded at the type level.
type SafeView struct {
	ID          string     `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	Role        Role       `json:"role"`
	IsActive    bool       `json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Safe returns the client-facing view of the account.
func (a *Account) Safe() SafeView {
	return SafeView{
		ID:          a.ID,
		Username:    a.Username,
		Email:       a.Email,
		Role:        a.Role,
		IsActive:    a.IsActive,
		LastLoginAt: a.LastLoginAt,
		CreatedAt:   a.CreatedAt,
	}
}

// Rider is the courier profile linked one-to-one to an Account. Its status
// is a domain enumeration separate from the account's active flag, though
// toggling one keeps the other in step.
type Rider struct {
	ID               string    `json:"id"`
	AccountID        string    `json:"account_id"`
	Name             string    `json:"name"`
	PhoneNumber      string    `json:"phone_number"`
	Township         string    `json:"township"`
	FullAddress      string    `json:"full_address"`
	NRC              string    `json:"nrc,omitempty"`
	JoinedDate       time.Time `json:"joined_date"`
	EmergencyContact string    `json:"emergency_contact,omitempty"`
	VehicleType      string    `json:"vehicle_type,omitempty"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`

	// Populated on reads that join the owning account.
	Account *SafeView `json:"account,omitempty"`
}

// Rider profile statuses.
const (
	RiderStatusActive   = "active"
	RiderStatusInactive = "inactive"
)

// OnlineShop is a merchant profile that deliveries can originate from.
type OnlineShop struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id,omitempty"`
	Name        string    `json:"name"`
	PhoneNumber string    `json:"phone_number"`
	Address     string    `json:"address"`
	Township    string    `json:"township"`
	Email       string    `json:"email,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
