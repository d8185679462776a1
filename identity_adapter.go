package auth

// sessionIdentity is the subset of an account that goes into a session
// token. It is copied at issue time so later edits to the User do not leak
// into a token that is already being signed.
type sessionIdentity struct {
	id       string
	username string
	email    string
	role     string
}

// NewIdentityFromUser snapshots user for token issuance
func NewIdentityFromUser(user *User) Identity {
	if user == nil {
		return nil
	}
	return sessionIdentity{
		id:       user.ID.String(),
		username: user.Username,
		email:    user.Email,
		role:     user.Role,
	}
}

func (s sessionIdentity) ID() string       { return s.id }
func (s sessionIdentity) Username() string { return s.username }
func (s sessionIdentity) Email() string    { return s.email }
func (s sessionIdentity) Role() string     { return s.role }
