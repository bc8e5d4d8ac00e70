package user

// User is the canonical profile returned by the backend. Immutable for the
// lifetime of a session; replaced wholesale on re-login.
type User struct {
	ID    int    `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}
