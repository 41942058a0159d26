package httpx

import (
	"net/http"
)

// UIHandlers renders the protected catalog pages.
type UIHandlers struct {
	Renderer *TemplateRenderer
	Notices  NoticeQueue
	Sections []Section
}

// Home lists the catalog sections the signed-in identity may open.
func (h *UIHandlers) Home(w http.ResponseWriter, r *http.Request) {
	state, _ := GetStateFromContext(r.Context())
	data := basePageData(r, PageMeta{Title: "Livraria", CurrentPage: PageHome}, state, h.Notices.Drain())
	data.Sections = visibleSections(h.Sections, state.Identity)
	if err := h.Renderer.Render(w, http.StatusOK, data); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// Section returns the handler for one catalog section. Listing and CRUD
// happen in the browser against /api; the page only frames them.
func (h *UIHandlers) Section(section Section) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, _ := GetStateFromContext(r.Context())
		data := basePageData(r, PageMeta{Title: section.Title, CurrentPage: PageSection}, state, h.Notices.Drain())
		data.Sections = visibleSections(h.Sections, state.Identity)
		data.Section = &section
		if err := h.Renderer.Render(w, http.StatusOK, data); err != nil {
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		}
	}
}
