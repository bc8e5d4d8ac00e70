package session

import "todoctl/pkg/user"

// State is a snapshot of the in-memory session. User and Token are both set
// or both empty once hydration completes; no partial session is ever
// observable. Loading is true only between app start and the end of the
// first hydration.
type State struct {
	User    *user.User
	Token   string
	Loading bool
}

// Authenticated reports whether the snapshot carries a full credential pair.
func (s State) Authenticated() bool {
	return s.User != nil && s.Token != ``
}
