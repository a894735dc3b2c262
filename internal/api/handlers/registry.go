package handlers

import (
	"net/http"
	"strings"

	"github.com/Harshitk-cp/filinggraph/internal/domain"
)

type CompanyResolver interface {
	ResolveCompany(name string) (domain.Company, bool)
}

type RegistryHandler struct {
	resolver CompanyResolver
}

func NewRegistryHandler(resolver CompanyResolver) *RegistryHandler {
	return &RegistryHandler{resolver: resolver}
}

// Lookup resolves ?q= against the company registry, exact match first.
func (h *RegistryHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeError(w, http.StatusBadRequest, "q is required")
		return
	}

	company, ok := h.resolver.ResolveCompany(q)
	if !ok {
		writeError(w, http.StatusNotFound, "company not found")
		return
	}
	writeJSON(w, http.StatusOK, company)
}
