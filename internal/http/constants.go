package httpx

// Route paths shared by handlers, the guard and templates.
const (
	PathHome       = "/"
	PathLogin      = "/login"
	PathLogout     = "/logout"
	PathForbidden  = "/forbidden"
	PathAuthStatus = "/auth/status"
	PathAPIPrefix  = "/api"
)

// Page identifiers used in templates and navigation.
const (
	PageHome      = "home"
	PageLogin     = "login"
	PageForbidden = "forbidden"
	PageSection   = "section"
)

// Section is a protected catalog area and the roles allowed to open it.
type Section struct {
	Slug  string
	Title string
	Roles []string
}

// Path returns the section's route.
func (s Section) Path() string { return "/" + s.Slug }
