package api

import (
	"net/http"

	"github.com/goliatone/go-inventory/inventory"
)

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	s, _ := scopeFrom(r.Context())
	list, err := s.workspace.Categories.List(r.Context(), s.owner, reloadParam(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// CategoryOptions lists id/name pairs for the product form selector.
func (h *Handler) CategoryOptions(w http.ResponseWriter, r *http.Request) {
	s, _ := scopeFrom(r.Context())
	opts, err := s.workspace.Categories.Options(r.Context(), s.owner)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, opts)
}

func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	s, _ := scopeFrom(r.Context())
	var form inventory.CategoryForm
	if err := decode(r, &form); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := s.workspace.Categories.Create(r.Context(), s.owner, form)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newCategoryResponse(res))
}

func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	s, _ := scopeFrom(r.Context())
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var form inventory.CategoryForm
	if err := decode(r, &form); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := s.workspace.Categories.Update(r.Context(), s.owner, id, form)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newCategoryResponse(res))
}

func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	s, _ := scopeFrom(r.Context())
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := s.workspace.Categories.Delete(r.Context(), s.owner, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newCategoryResponse(res))
}
