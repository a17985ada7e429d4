package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/agentur-schein/propshop/internal/domain/catalog"
)

// propResponse is the wire shape of one catalog entry. Images are emitted as
// bare URL strings in position order.
type propResponse struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	PrintCost   decimal.Decimal `json:"print_cost"`
	Category    string          `json:"category"`
	Images      []string        `json:"images"`
	CreatedAt   time.Time       `json:"created_at"`
}

// propRequest is the wire shape of an admin create or update. Images accept
// bare URL strings as well as {"image_url": …} objects.
type propRequest struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Price       decimal.Decimal    `json:"price"`
	PrintCost   decimal.Decimal    `json:"print_cost"`
	Category    string             `json:"category"`
	Images      []catalog.ImageRef `json:"images"`
}

func (req propRequest) validate() string {
	if strings.TrimSpace(req.Name) == "" {
		return "name is required"
	}
	if req.Price.IsNegative() {
		return "price must not be negative"
	}
	if req.PrintCost.IsNegative() {
		return "print_cost must not be negative"
	}
	return ""
}

func (req propRequest) toInput() catalog.PropInput {
	return catalog.PropInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		PrintCost:   req.PrintCost,
		Category:    req.Category,
		ImageURLs:   catalog.ImageURLs(req.Images),
	}
}

func toPropResponse(p *catalog.Prop) propResponse {
	images := make([]string, len(p.Images))
	for i, img := range p.Images {
		images[i] = img.URL
	}
	return propResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		PrintCost:   p.PrintCost,
		Category:    p.Category,
		Images:      images,
		CreatedAt:   p.CreatedAt,
	}
}

// ListProps handles GET /api/props.
func (h *Handler) ListProps(w http.ResponseWriter, r *http.Request) {
	props, err := h.catalog.List(r.Context())
	if err != nil {
		writeInternalError(w, r, err)
		return
	}

	resp := make([]propResponse, len(props))
	for i := range props {
		resp[i] = toPropResponse(&props[i])
	}
	writeJSON(w, r, http.StatusOK, resp)
}

// GetProp handles GET /api/props/{id}.
func (h *Handler) GetProp(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	p, err := h.catalog.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "prop not found")
			return
		}
		writeInternalError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toPropResponse(p))
}

// CreateProp handles POST /api/admin/props.
func (h *Handler) CreateProp(w http.ResponseWriter, r *http.Request) {
	var req propRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, r, http.StatusBadRequest, msg)
		return
	}

	p, err := h.catalog.Create(r.Context(), req.toInput())
	if err != nil {
		writeInternalError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, toPropResponse(p))
}

// UpdateProp handles PUT /api/admin/props/{id}.
func (h *Handler) UpdateProp(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req propRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, r, http.StatusBadRequest, msg)
		return
	}

	p, err := h.catalog.Update(r.Context(), id, req.toInput())
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "prop not found")
			return
		}
		writeInternalError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toPropResponse(p))
}

// DeleteProp handles DELETE /api/admin/props/{id}.
func (h *Handler) DeleteProp(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := h.catalog.Delete(r.Context(), id); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "prop not found")
			return
		}
		writeInternalError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id < 1 {
		writeError(w, r, http.StatusBadRequest, "malformed prop id")
		return 0, false
	}
	return id, true
}
