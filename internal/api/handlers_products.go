package api

import (
	"net/http"

	"github.com/goliatone/go-inventory/inventory"
)

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	s, _ := scopeFrom(r.Context())
	list, err := s.workspace.Products.List(r.Context(), s.owner, inventory.ListOptions{
		ForceReload: reloadParam(r),
		Filter:      r.URL.Query().Get("q"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	s, _ := scopeFrom(r.Context())
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	p, err := s.workspace.Products.Get(r.Context(), s.owner, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	s, _ := scopeFrom(r.Context())
	var form inventory.ProductForm
	if err := decode(r, &form); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := s.workspace.Products.Create(r.Context(), s.owner, form)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newProductResponse(res))
}

func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	s, _ := scopeFrom(r.Context())
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var form inventory.ProductForm
	if err := decode(r, &form); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := s.workspace.Products.Update(r.Context(), s.owner, id, form)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newProductResponse(res))
}

func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	s, _ := scopeFrom(r.Context())
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := s.workspace.Products.Delete(r.Context(), s.owner, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newProductResponse(res))
}

// UpdateStock applies the inline stock editor.
func (h *Handler) UpdateStock(w http.ResponseWriter, r *http.Request) {
	s, _ := scopeFrom(r.Context())
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var form inventory.StockForm
	if err := decode(r, &form); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := s.workspace.Products.UpdateStock(r.Context(), s.owner, id, form)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newProductResponse(res))
}
