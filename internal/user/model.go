package user

import "time"

// User represents a stored account, either a registered player or an
// ephemeral guest. The shared columns live here; the fields whose validity
// depends on the account kind live in the Variant so a guest with a password
// hash is unrepresentable.
type User struct {
	ID        int64
	Username  string
	Avatar    string
	Coins     int64
	IPAddress string
	CreatedAt time.Time
	Variant   Variant
}

// Variant discriminates guest and registered accounts.
type Variant interface {
	isVariant()
}

// Guest is a passwordless temporary account identified by a display nickname.
type Guest struct {
	Nickname string
}

// Registered is a permanent account with a derived password credential.
type Registered struct {
	PasswordHash []byte
}

func (Guest) isVariant()      {}
func (Registered) isVariant() {}

// IsGuest reports whether the account is an ephemeral guest.
func (u User) IsGuest() bool {
	_, ok := u.Variant.(Guest)
	return ok
}

// Nickname returns the guest display nickname, or empty for registered users.
func (u User) Nickname() string {
	if g, ok := u.Variant.(Guest); ok {
		return g.Nickname
	}
	return ""
}

// PasswordHash returns the stored credential for registered users.
func (u User) PasswordHash() ([]byte, bool) {
	if r, ok := u.Variant.(Registered); ok {
		return r.PasswordHash, true
	}
	return nil, false
}

// DisplayName returns the nickname for guests that have one, otherwise the
// username.
func (u User) DisplayName() string {
	if n := u.Nickname(); n != "" {
		return n
	}
	return u.Username
}
