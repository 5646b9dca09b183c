package domain

// Screen paths.
const (
	PathLanding   = "/"
	PathLogin     = "/login"
	PathSignup    = "/signup"
	PathReport    = "/report"
	PathHistory   = "/history"
	PathDashboard = "/admin"
)

// Screen is a routable view and the capability it requires.
type Screen struct {
	Name     string
	Path     string
	Requires Capability
}

// Screens is the static route table.
var Screens = []Screen{
	{Name: "landing", Path: PathLanding, Requires: CapabilityNone},
	{Name: "login", Path: PathLogin, Requires: CapabilityNone},
	{Name: "signup", Path: PathSignup, Requires: CapabilityNone},
	{Name: "report", Path: PathReport, Requires: CapabilityCitizen},
	{Name: "history", Path: PathHistory, Requires: CapabilityCitizen},
	{Name: "dashboard", Path: PathDashboard, Requires: CapabilityAdmin},
}

// NavLink is one entry of the navigation bar.
type NavLink struct {
	Label  string `json:"label"`
	Path   string `json:"path"`
	Active bool   `json:"active,omitempty"`
}

// Navigation returns the links shown for a role.
func Navigation(role Role, current string) []NavLink {
	var links []NavLink
	if role.IsAdmin() {
		links = []NavLink{{Label: "Admin Dashboard", Path: PathDashboard}}
	} else {
		links = []NavLink{
			{Label: "Report Pothole", Path: PathReport},
			{Label: "My History", Path: PathHistory},
		}
	}
	for i := range links {
		links[i].Active = links[i].Path == current
	}
	return links
}

// HomePath is where a freshly logged-in role lands.
func HomePath(role Role) string {
	if role.IsAdmin() {
		return PathDashboard
	}
	return PathHistory
}
