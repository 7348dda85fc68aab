package catalog

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

type Response struct {
	Total    int       `json:"total"`
	Products []Product `json:"products"`
}

type Category struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type Product struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	PartNumber  string    `json:"part_number"`
	Status      string    `json:"status"`
	Category    *Category `json:"category,omitempty"`
	ImageURL    *string   `json:"image_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type Material struct {
	Name             string  `json:"name"`
	Unit             string  `json:"unit"`
	QuantityRequired float64 `json:"quantity_required"`
	LineCost         float64 `json:"line_cost"`
	Notes            *string `json:"notes,omitempty"`
}

type ProductDetail struct {
	Product
	Materials []Material `json:"materials"`
}

type ProductProvider interface {
	List(ctx context.Context, filters models.ProductFilters) ([]models.Product, error)
	Get(ctx context.Context, id uint) (*models.Product, error)
	BillOfMaterials(ctx context.Context, id uint) ([]models.ProductMaterial, error)
	CreateWithAsset(ctx context.Context, in models.ProductInput, up *assets.Upload) (*models.Product, error)
	UpdateWithAsset(ctx context.Context, id uint, in models.ProductInput, up *assets.Upload) (*models.Product, error)
	DeleteWithAsset(ctx context.Context, id uint) (*models.Product, error)
}

type CatalogHandler struct {
	api.Responder
	svc       ProductProvider
	maxUpload int64
}

func NewCatalogHandler(svc ProductProvider) *CatalogHandler {
	return &CatalogHandler{
		Responder: api.NewResponder(nil),
		svc:       svc,
		maxUpload: api.DefaultMaxUpload,
	}
}

func (h *CatalogHandler) WithLogger(l *log.Logger) *CatalogHandler {
	h.Responder = api.NewResponder(l)
	return h
}

func (h *CatalogHandler) WithMaxUpload(n int64) *CatalogHandler {
	h.maxUpload = n
	return h
}

func (h *CatalogHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /products", h.HandleGet)
	mux.HandleFunc("GET /products/{id}", h.HandleGetProduct)
	mux.HandleFunc("POST /products", h.HandleCreate)
	mux.HandleFunc("POST /products/{id}", h.HandleUpdate)
	mux.HandleFunc("POST /products/{id}/delete", h.HandleDelete)
}

var messages = api.Messages{
	NotFound:  "Product not found",
	Conflict:  "Product name or part number already exists",
	InUse:     "Product is still used by a bill of materials",
	Invalid:   "Category does not exist",
	Unhandled: "Failed to process product",
}

func (h *CatalogHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	// An unparsable category_id is ignored, like the other list parameters.
	var filters models.ProductFilters
	if id, err := api.OptionalID(r.URL.Query().Get("category_id")); err == nil {
		filters.CategoryID = id
	}

	res, err := h.svc.List(r.Context(), filters)
	if err != nil {
		h.Failure(w, err, api.Messages{Unhandled: "failed to get products"})
		return
	}

	products := make([]Product, len(res))
	for i, p := range res {
		products[i] = toProduct(p)
	}

	h.OKResponse(w, Response{
		Total:    len(products),
		Products: products,
	})
}

func (h *CatalogHandler) HandleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := api.PathID(r)
	if !ok {
		h.ErrorResponse(w, http.StatusNotFound, messages.NotFound)
		return
	}

	product, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.Failure(w, err, api.Messages{NotFound: messages.NotFound, Unhandled: "Failed to retrieve product"})
		return
	}

	lines, err := h.svc.BillOfMaterials(r.Context(), id)
	if err != nil {
		h.Failure(w, err, api.Messages{NotFound: messages.NotFound, Unhandled: "Failed to retrieve product"})
		return
	}

	materials := make([]Material, len(lines))
	for i, l := range lines {
		materials[i] = Material{
			Name:             l.MaterialName,
			Unit:             l.Unit,
			QuantityRequired: l.QuantityRequired.InexactFloat64(),
			LineCost:         l.LineCost().InexactFloat64(),
			Notes:            l.Notes,
		}
	}

	h.OKResponse(w, ProductDetail{
		Product:   toProduct(*product),
		Materials: materials,
	})
}

func (h *CatalogHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	in, up, done, ok := h.readForm(w, r)
	if !ok {
		return
	}
	defer done()

	product, err := h.svc.CreateWithAsset(r.Context(), in, up)
	if err != nil {
		h.Failure(w, err, withUnhandled("Unable to create product"))
		return
	}
	h.WriteJSON(w, http.StatusCreated, toProduct(*product))
}

func (h *CatalogHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
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

	product, err := h.svc.UpdateWithAsset(r.Context(), id, in, up)
	if err != nil {
		h.Failure(w, err, withUnhandled("Unable to update product"))
		return
	}
	h.OKResponse(w, toProduct(*product))
}

func (h *CatalogHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := api.PathID(r)
	if !ok {
		h.ErrorResponse(w, http.StatusNotFound, messages.NotFound)
		return
	}

	product, err := h.svc.DeleteWithAsset(r.Context(), id)
	if err != nil {
		h.Failure(w, err, withUnhandled("Unable to delete product"))
		return
	}
	h.OKResponse(w, toProduct(*product))
}

func (h *CatalogHandler) readForm(w http.ResponseWriter, r *http.Request) (models.ProductInput, *assets.Upload, func(), bool) {
	if err := api.ParseForm(w, r, h.maxUpload); err != nil {
		h.FormFailure(w, err)
		return models.ProductInput{}, nil, nil, false
	}

	in := models.ProductInput{
		Name:        strings.TrimSpace(r.FormValue("name")),
		Description: api.OptionalString(r.FormValue("description")),
		PartNumber:  strings.TrimSpace(r.FormValue("part_number")),
		Status:      strings.TrimSpace(r.FormValue("status")),
	}
	if in.Name == "" || in.PartNumber == "" || in.Status == "" {
		h.ErrorResponse(w, http.StatusBadRequest, "Missing name, part_number or status")
		return models.ProductInput{}, nil, nil, false
	}

	categoryID, err := api.OptionalID(r.FormValue("category_id"))
	if err != nil {
		h.ErrorResponse(w, http.StatusBadRequest, "Invalid category_id")
		return models.ProductInput{}, nil, nil, false
	}
	in.CategoryID = categoryID

	up, done, err := api.FormUpload(r, "image")
	if err != nil {
		h.ErrorResponse(w, http.StatusBadRequest, "Invalid image upload")
		return models.ProductInput{}, nil, nil, false
	}
	return in, up, done, true
}

func withUnhandled(msg string) api.Messages {
	m := messages
	m.Unhandled = msg
	return m
}

func toProduct(p models.Product) Product {
	out := Product{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		PartNumber:  p.PartNumber,
		Status:      p.Status,
		ImageURL:    p.ImageURL,
		CreatedAt:   p.CreatedAt,
	}
	if p.CategoryID != nil {
		out.Category = &Category{ID: *p.CategoryID}
		if p.CategoryName != nil {
			out.Category.Name = *p.CategoryName
		}
	}
	return out
}
