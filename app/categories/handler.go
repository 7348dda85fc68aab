package categories

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/mytheresa/parts-catalog/app/api"
	"github.com/mytheresa/parts-catalog/app/assets"
	"github.com/mytheresa/parts-catalog/models"
)

type CategoryResponse struct {
	ID           uint      `json:"id"`
	Name         string    `json:"name"`
	Description  *string   `json:"description,omitempty"`
	ImageURL     *string   `json:"image_url,omitempty"`
	ProductCount int64     `json:"product_count"`
	CreatedAt    time.Time `json:"created_at"`
}

type ProductSummary struct {
	ID         uint    `json:"id"`
	Name       string  `json:"name"`
	PartNumber string  `json:"part_number"`
	Status     string  `json:"status"`
	ImageURL   *string `json:"image_url,omitempty"`
}

type CategoryDetailResponse struct {
	Category CategoryResponse `json:"category"`
	Products []ProductSummary `json:"products"`
}

type CategoryProvider interface {
	List(ctx context.Context) ([]models.Category, error)
	Get(ctx context.Context, id uint) (*models.Category, error)
	Products(ctx context.Context, id uint) ([]models.Product, error)
	CreateWithAsset(ctx context.Context, in models.CategoryInput, up *assets.Upload) (*models.Category, error)
	UpdateWithAsset(ctx context.Context, id uint, in models.CategoryInput, up *assets.Upload) (*models.Category, error)
	DeleteWithAsset(ctx context.Context, id uint) (*models.Category, error)
}

type CategoryHandler struct {
	api.Responder
	svc       CategoryProvider
	maxUpload int64
}

func NewCategoryHandler(svc CategoryProvider) *CategoryHandler {
	return &CategoryHandler{Responder: api.NewResponder(nil), svc: svc, maxUpload: api.DefaultMaxUpload}
}

func (h *CategoryHandler) WithLogger(l *log.Logger) *CategoryHandler {
	h.Responder = api.NewResponder(l)
	return h
}

// WithMaxUpload sets the largest form body accepted.
func (h *CategoryHandler) WithMaxUpload(n int64) *CategoryHandler {
	h.maxUpload = n
	return h
}

func (h *CategoryHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /categories", h.HandleGetAll)
	mux.HandleFunc("GET /categories/{id}", h.HandleGet)
	mux.HandleFunc("POST /categories", h.HandleCreate)
	mux.HandleFunc("POST /categories/{id}", h.HandleUpdate)
	mux.HandleFunc("POST /categories/{id}/delete", h.HandleDelete)
}

var messages = api.Messages{
	NotFound:  "Category not found",
	Conflict:  "Category name already exists",
	Invalid:   "Invalid category",
	Unhandled: "Failed to process category",
}

func (h *CategoryHandler) HandleGetAll(w http.ResponseWriter, r *http.Request) {
	categories, err := h.svc.List(r.Context())
	if err != nil {
		h.Failure(w, err, api.Messages{Unhandled: "failed to fetch categories"})
		return
	}

	response := make([]CategoryResponse, len(categories))
	for i, c := range categories {
		response[i] = toResponse(c)
	}
	h.OKResponse(w, response)
}

func (h *CategoryHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := api.PathID(r)
	if !ok {
		h.ErrorResponse(w, http.StatusNotFound, messages.NotFound)
		return
	}

	category, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.Failure(w, err, api.Messages{NotFound: messages.NotFound, Unhandled: "Unable to fetch category"})
		return
	}
	products, err := h.svc.Products(r.Context(), id)
	if err != nil {
		h.Failure(w, err, api.Messages{NotFound: messages.NotFound, Unhandled: "Unable to fetch category"})
		return
	}

	summaries := make([]ProductSummary, len(products))
	for i, p := range products {
		summaries[i] = ProductSummary{
			ID:         p.ID,
			Name:       p.Name,
			PartNumber: p.PartNumber,
			Status:     p.Status,
			ImageURL:   p.ImageURL,
		}
	}
	h.OKResponse(w, CategoryDetailResponse{
		Category: toResponse(*category),
		Products: summaries,
	})
}

func (h *CategoryHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	in, up, done, ok := h.readForm(w, r)
	if !ok {
		return
	}
	defer done()

	category, err := h.svc.CreateWithAsset(r.Context(), in, up)
	if err != nil {
		h.Failure(w, err, withUnhandled("Failed to create category"))
		return
	}
	h.WriteJSON(w, http.StatusCreated, toResponse(*category))
}

func (h *CategoryHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := api.PathID(r)
	if !ok {
		h.ErrorResponse(w, http.StatusNotFound, messages.NotFound)
		return
	}
	in, up, done, ok := h.readForm(w, r)
	if !ok {
		return
	}
	defer done()

	category, err := h.svc.UpdateWithAsset(r.Context(), id, in, up)
	if err != nil {
		h.Failure(w, err, withUnhandled("Failed to update category"))
		return
	}
	h.OKResponse(w, toResponse(*category))
}

func (h *CategoryHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := api.PathID(r)
	if !ok {
		h.ErrorResponse(w, http.StatusNotFound, messages.NotFound)
		return
	}

	category, err := h.svc.DeleteWithAsset(r.Context(), id)
	if err != nil {
		h.Failure(w, err, withUnhandled("Failed to delete category"))
		return
	}
	h.OKResponse(w, toResponse(*category))
}

// readForm parses the category form. On failure the response has been written.
func (h *CategoryHandler) readForm(w http.ResponseWriter, r *http.Request) (models.CategoryInput, *assets.Upload, func(), bool) {
	if err := api.ParseForm(w, r, h.maxUpload); err != nil {
		h.FormFailure(w, err)
		return models.CategoryInput{}, nil, nil, false
	}

	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		h.ErrorResponse(w, http.StatusBadRequest, "Missing name")
		return models.CategoryInput{}, nil, nil, false
	}

	up, done, err := api.FormUpload(r, "image")
	if err != nil {
		h.ErrorResponse(w, http.StatusBadRequest, "Invalid image upload")
		return models.CategoryInput{}, nil, nil, false
	}

	return models.CategoryInput{
		Name:        name,
		Description: api.OptionalString(r.FormValue("description")),
	}, up, done, true
}

func withUnhandled(msg string) api.Messages {
	m := messages
	m.Unhandled = msg
	return m
}

func toResponse(c models.Category) CategoryResponse {
	return CategoryResponse{
		ID:           c.ID,
		Name:         c.Name,
		Description:  c.Description,
		ImageURL:     c.ImageURL,
		ProductCount: c.ProductCount,
		CreatedAt:    c.CreatedAt,
	}
}
