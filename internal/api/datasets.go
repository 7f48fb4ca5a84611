package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/meur/civatlas/internal/models"
	"github.com/meur/civatlas/internal/storage"
	"go.uber.org/zap"
)

// categoryLister is implemented by sources that can report item counts
type categoryLister interface {
	Categories(ctx context.Context) ([]models.CategoryInfo, error)
}

// handleGetCategories returns every category in tab order
func (s *Server) handleGetCategories(w http.ResponseWriter, r *http.Request) {
	stored := map[models.Category]models.CategoryInfo{}
	if lister, ok := s.source.(categoryLister); ok {
		infos, err := lister.Categories(r.Context())
		if err != nil {
			s.log.Error("list categories", zap.Error(err))
			respondError(w, http.StatusInternalServerError, "Failed to fetch categories")
			return
		}
		for _, info := range infos {
			stored[info.ID] = info
		}
	}

	out := make([]models.CategoryInfo, 0, len(models.Categories()))
	for _, c := range models.Categories() {
		info, ok := stored[c]
		if !ok {
			info = models.CategoryInfo{ID: c}
		}
		info.Label = c.Label()
		out = append(out, info)
	}
	respondJSON(w, http.StatusOK, out)
}

// handleGetDataset returns the raw dataset of a category
func (s *Server) handleGetDataset(w http.ResponseWriter, r *http.Request) {
	c, err := models.ParseCategory(chi.URLParam(r, "category"))
	if err != nil {
		respondError(w, http.StatusNotFound, "Category not found")
		return
	}

	ds, err := s.source.Fetch(r.Context(), c)
	if errors.Is(err, storage.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Dataset not found")
		return
	}
	if err != nil {
		s.log.Error("fetch dataset", zap.String("category", string(c)), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to fetch dataset")
		return
	}

	respondJSON(w, http.StatusOK, ds)
}
