package user

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"volunteerconnect/internal/domain/record"
)

// SessionKey is the session-storage key holding the signed-in user.
const SessionKey = "user"

// Arity is the number of serialized (visible) fields.
const Arity = 3

// Length rules.
const (
	MinNameLength     = 3
	MinPasswordLength = 8
)

// hashCost is the bcrypt cost used for stored passwords.
var hashCost = bcrypt.DefaultCost

// Domain errors
var (
	ErrPasswordAlreadySet = errors.New("password is already set; use UpdatePassword")
	ErrDuplicateUserName  = fmt.Errorf("user name must be unique: %w", record.ErrValidation)
	ErrDuplicateEmail     = fmt.Errorf("email address must be unique: %w", record.ErrValidation)
)

// User is a site account loaded from the roster or created at sign-in.
type User struct {
	userName     string
	displayName  string
	emailAddress string
	passwordHash []byte
}

// New returns a blank User.
func New() *User {
	return &User{}
}

func (u *User) UserName() string     { return u.userName }
func (u *User) DisplayName() string  { return u.displayName }
func (u *User) EmailAddress() string { return u.emailAddress }

// SetUserName requires at least three characters. Uniqueness is enforced by Registry.Add.
func (u *User) SetUserName(v string) error {
	if err := record.CheckMinLength("userName", v, MinNameLength); err != nil {
		return err
	}
	u.userName = v
	return nil
}

// SetDisplayName requires at least three characters.
func (u *User) SetDisplayName(v string) error {
	if err := record.CheckMinLength("displayName", v, MinNameLength); err != nil {
		return err
	}
	u.displayName = v
	return nil
}

// SetEmailAddress requires a basic email shape. Uniqueness is enforced by Registry.Add.
func (u *User) SetEmailAddress(v string) error {
	if err := record.CheckEmail("emailAddress", v); err != nil {
		return err
	}
	u.emailAddress = v
	return nil
}

// SetPassword sets the initial password.
// PRE: no password has been set yet
// POST: passwordHash holds a bcrypt hash of v
func (u *User) SetPassword(v string) error {
	if !ValidatePassword(v) {
		return record.Invalid("password", fmt.Sprintf("must be at least %d characters", MinPasswordLength))
	}
	if len(u.passwordHash) > 0 {
		return ErrPasswordAlreadySet
	}
	return u.setHash(v)
}

// UpdatePassword replaces the password when old matches and next meets the rules.
func (u *User) UpdatePassword(old, next string) bool {
	if !ValidatePassword(next) || !u.CheckPassword(old) {
		return false
	}
	return u.setHash(next) == nil
}

// CheckPassword reports whether plaintext matches exactly.
// INVARIANT: User fields are not mutated
func (u *User) CheckPassword(plaintext string) bool {
	if len(u.passwordHash) == 0 {
		return false
	}
	return bcrypt.CompareHashAndPassword(u.passwordHash, []byte(plaintext)) == nil
}

func (u *User) setHash(plaintext string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), hashCost)
	if err != nil {
		return err
	}
	u.passwordHash = hash
	return nil
}

// ValidatePassword reports whether v satisfies the minimum password rules.
func ValidatePassword(v string) bool {
	return len(v) >= MinPasswordLength
}

// Serialize returns userName,displayName,emailAddress; the password is never serialized.
func (u *User) Serialize() (string, bool) {
	return record.Join("user", u.userName, u.displayName, u.emailAddress)
}

// Deserialize replaces the visible fields, leaving u unchanged on arity mismatch.
func (u *User) Deserialize(text string) error {
	parts, err := record.Split("user", text, Arity)
	if err != nil {
		return err
	}
	u.userName, u.displayName, u.emailAddress = parts[0], parts[1], parts[2]
	return nil
}

func (u *User) String() string {
	return fmt.Sprintf("User Name: %s\nDisplay Name: %s\nEmail Address: %s", u.userName, u.displayName, u.emailAddress)
}
