package httpx

import (
	"net/http"

	domainauth "github.com/rafaelq80/livraria-react-sub000/internal/domain/auth"
	"github.com/rafaelq80/livraria-react-sub000/internal/ports"
)

// PageMeta names the page being rendered.
type PageMeta struct {
	Title       string
	CurrentPage string
}

// PageData is the value every template receives.
type PageData struct {
	PageMeta
	State     domainauth.State
	Notices   []ports.Notice
	CSRFToken string
	// Sections lists the catalog areas the current identity may open.
	Sections []Section
	// Section is set on section pages.
	Section *Section
	// Form fields for the login page.
	Usuario     string
	RedirectURI string
}

// basePageData fills the fields shared by all pages.
func basePageData(r *http.Request, meta PageMeta, state domainauth.State, notices []ports.Notice) PageData {
	return PageData{
		PageMeta:  meta,
		State:     state,
		Notices:   notices,
		CSRFToken: GetCSRFToken(r),
	}
}

// visibleSections keeps the sections whose roles match the identity exactly.
func visibleSections(all []Section, identity domainauth.Identity) []Section {
	out := make([]Section, 0, len(all))
	for _, s := range all {
		if len(s.Roles) == 0 || domainauth.HasAnyRole(identity, s.Roles...) {
			out = append(out, s)
		}
	}
	return out
}
