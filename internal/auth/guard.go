package auth

// View names a client-side screen.
type View string

const (
	ViewHome           View = "home"
	ViewLogin          View = "login"
	ViewSignup         View = "signup"
	ViewSocieties      View = "societies"
	ViewUserDashboard  View = "user-dashboard"
	ViewAdminDashboard View = "admin-dashboard"
)

var publicViews = map[View]bool{
	ViewHome:      true,
	ViewLogin:     true,
	ViewSignup:    true,
	ViewSocieties: true,
}

// ResolveView decides which view a caller may render for the requested one.
// Anonymous callers keep public views and are sent to login for anything else;
// administrators are held on the admin dashboard and society users on theirs.
func ResolveView(isLoggedIn, isAdmin bool, requested View) (View, bool) {
	var target View
	switch {
	case !isLoggedIn:
		if publicViews[requested] {
			return requested, false
		}
		target = ViewLogin
	case isAdmin:
		target = ViewAdminDashboard
	default:
		target = ViewUserDashboard
	}
	return target, target != requested
}
