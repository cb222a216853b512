package kernel

import "strconv"

// UserID is the synthetic primary key of a registered user.
// It is assigned by the credential store on insert and immutable afterwards.
type UserID int64

func NewUserID(id int64) UserID    { return UserID(id) }
func (u UserID) Int64() int64      { return int64(u) }
func (u UserID) String() string    { return strconv.FormatInt(int64(u), 10) }
func (u UserID) IsZero() bool      { return int64(u) == 0 }

// ParseUserID parses a decimal user ID, as carried in path params and headers.
func ParseUserID(s string) (UserID, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return UserID(id), nil
}

// Role is the authorization role stored on the user row and embedded in
// access-token claims.
type Role string

const (
	RoleUser       Role = "USER"
	RoleAdmin      Role = "ADMIN"
	RoleSuperAdmin Role = "SUPER_ADMIN"
)

func (r Role) String() string { return string(r) }

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}
