package session

// User is the identity record held for the authenticated customer.
// It is overwritten wholesale on every login and cleared on logout.
type User struct {
	ID      int    `json:"id"`
	Name    string `json:"nombre"`
	Email   string `json:"email"`
	Phone   string `json:"telefono,omitempty"`
	Address string `json:"direccion,omitempty"`
}

// Session is a point-in-time view of the authentication state.
// Invariant: Authenticated == (User != nil && Token != "").
type Session struct {
	User          *User
	Token         string
	Authenticated bool
}
