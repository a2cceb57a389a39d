// internal/models/view.go
package models

// View is the screen the interface shell is showing
type View int

const (
	CreationView View = iota
	ParentalView
)

func (v View) String() string {
	switch v {
	case ParentalView:
		return "parents"
	default:
		return "create"
	}
}

// Path is the route that renders the view
func (v View) Path() string {
	if v == ParentalView {
		return "/parents"
	}
	return "/"
}

// NavItem is one of the always-visible navigation actions
type NavItem struct {
	Label  string
	Path   string
	Active bool
}

// Navigation returns both navigation actions with the current one marked
func (v View) Navigation() []NavItem {
	return []NavItem{
		{Label: "Back to the Gallery", Path: CreationView.Path(), Active: v == CreationView},
		{Label: "Parents' Corner", Path: ParentalView.Path(), Active: v == ParentalView},
	}
}

// ParentalPanel is what the parental view shows for a submitted password.
// An empty password leaves it locked with no error.
type ParentalPanel struct {
	Unlocked bool          `json:"unlocked"`
	Records  []AuditRecord `json:"records,omitempty"`
	Error    string        `json:"error,omitempty"`
}
