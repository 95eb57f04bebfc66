package uitemplates

import "html/template"

// ActiveUserParams holds information about the active user.
type ActiveUserParams struct {
	// SignedIn is true if the request carried a live session.
	SignedIn bool

	DisplayName string
	Email       string
}

// page parses a page's templates on top of the base layout.
func page(text string) *template.Template {
	return template.Must(template.Must(template.Must(template.New("base").Parse(baseText)).Parse(userErrorText)).Parse(text))
}
