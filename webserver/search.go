package webserver

import (
	"net/http"

	"github.com/malonaz/carscout/internal/search"
	"github.com/malonaz/carscout/internal/view"
)

// examples are offered as one-click queries on the search page.
var examples = []string{
	"Honda Civic under $20,000",
	"BMW X3 with low mileage",
	"Toyota Camry 2020 or newer",
	"Electric car under $30,000",
}

// SearchPage is the data of the search page.
type SearchPage struct {
	Title    string
	Query    string
	Examples []string
	Result   *view.ResultPanel
	Error    *view.ErrorPanel
	// NoResultsText replaces the cards of an empty result.
	NoResultsText string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, "search", s.searchPage(""))
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}
	query := r.FormValue("query")
	page := s.searchPage(query)

	controller := search.New(s.client)
	panel, err := controller.Submit(r.Context(), query)
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	status := http.StatusOK
	switch panel := panel.(type) {
	case *view.ResultPanel:
		page.Result = panel
	case *view.ErrorPanel:
		page.Error = panel
		if panel.Kind == view.ErrorKindValidation {
			status = http.StatusBadRequest
		} else {
			status = http.StatusBadGateway
		}
	}
	s.render(w, status, "search", page)
}

func (s *Server) searchPage(query string) *SearchPage {
	return &SearchPage{
		Title:         "Car Search",
		Query:         query,
		Examples:      examples,
		NoResultsText: view.NoResultsText,
	}
}
