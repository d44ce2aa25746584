package templates

// BaseProps contains common properties shared across all pages
type BaseProps struct {
	CSRFToken string
}

// HiddenField is a form value carried unchanged from GET to POST.
type HiddenField struct {
	Name  string
	Value string
}

// ===== Page Props Structures =====

// ErrorPageProps contains properties for the error page
type ErrorPageProps struct {
	Title   string
	Message string
}

// LoginPageProps contains properties for the login page
type LoginPageProps struct {
	BaseProps
	Realm    string
	Action   string // form POST target
	Error    string
	Username string
	Hidden   []HiddenField
}
