package gate

import (
	"strings"

	"todoctl/pkg/session"
)

// Group is one of the two screen areas: unauthenticated screens live in
// GroupAuth, the main application in GroupTabs.
type Group string

const (
	GroupAuth Group = "auth"
	GroupTabs Group = "tabs"
)

type Screen string

const (
	ScreenLogin    Screen = "auth/login"
	ScreenRegister Screen = "auth/register"
	ScreenHome     Screen = "tabs/home"
)

func (s Screen) Group() Group {
	group, _, _ := strings.Cut(string(s), "/")
	return Group(group)
}

// Navigator renders screens; Replace with the already-active screen group
// must be a no-op.
type Navigator interface {
	Current() Group
	Replace(Screen)
}

type ISessionSource interface {
	Subscribe(func(session.State))
}

// Decide computes the redirect due for a session snapshot and the currently
// displayed group. A pure function so the policy is testable apart from the
// navigation side effect. Returns ok=false when no redirect is due: while
// the session is still loading, and whenever the displayed group already
// matches the session state.
func Decide(st session.State, current Group) (Screen, bool) {
	if st.Loading {
		return ``, false
	}
	if st.User == nil && current != GroupAuth {
		return ScreenLogin, true
	}
	if st.User != nil && current == GroupAuth {
		return ScreenHome, true
	}
	return ``, false
}

// Gate keeps the displayed screen group consistent with the session state.
type Gate struct {
	nav Navigator
}

func New(nav Navigator) *Gate {
	return &Gate{nav: nav}
}

// Attach subscribes the gate to session state changes.
func (g *Gate) Attach(src ISessionSource) {
	src.Subscribe(g.Apply)
}

// Apply reconsiders the displayed group for one snapshot.
func (g *Gate) Apply(st session.State) {
	if screen, ok := Decide(st, g.nav.Current()); ok {
		g.nav.Replace(screen)
	}
}
