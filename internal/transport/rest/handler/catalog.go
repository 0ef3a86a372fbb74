package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"cnmaturity/internal/service"
)

// CatalogHandler serves the question catalog and knowledge articles
type CatalogHandler struct {
	svc *service.CatalogService
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(svc *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

// Categories handles GET /v1/catalog/categories
func (h *CatalogHandler) Categories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"categories": h.svc.Categories(),
	})
}

// Question handles GET /v1/catalog/questions/{questionId}
func (h *CatalogHandler) Question(w http.ResponseWriter, r *http.Request) {
	q, err := h.svc.Question(mux.Vars(r)["questionId"], lang(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

// Articles handles GET /v1/knowledge/articles
func (h *CatalogHandler) Articles(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"articles": h.svc.Articles(r.URL.Query().Get("category"), lang(r)),
	})
}

// Article handles GET /v1/knowledge/articles/{articleId}
func (h *CatalogHandler) Article(w http.ResponseWriter, r *http.Request) {
	a, err := h.svc.Article(mux.Vars(r)["articleId"], lang(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}
