package materials

import (
	"context"
	"log"
	"net/http"

	"github.com/mytheresa/parts-catalog/app/api"
	"github.com/mytheresa/parts-catalog/models"
)

type MaterialResponse struct {
	ID           uint    `json:"id"`
	Name         string  `json:"name"`
	Description  *string `json:"description,omitempty"`
	CurrentStock float64 `json:"current_stock"`
	Unit         string  `json:"unit"`
	Supplier     *string `json:"supplier,omitempty"`
	UnitCost     float64 `json:"unit_cost"`
	StockValue   string  `json:"stock_value"`
}

type MaterialProvider interface {
	List(ctx context.Context) ([]models.Material, error)
}

type MaterialHandler struct {
	api.Responder
	repo MaterialProvider
}

func NewMaterialHandler(r MaterialProvider) *MaterialHandler {
	return &MaterialHandler{Responder: api.NewResponder(nil), repo: r}
}

func (h *MaterialHandler) WithLogger(l *log.Logger) *MaterialHandler {
	h.Responder = api.NewResponder(l)
	return h
}

func (h *MaterialHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /materials", h.HandleGetAll)
}

func (h *MaterialHandler) HandleGetAll(w http.ResponseWriter, r *http.Request) {
	materials, err := h.repo.List(r.Context())
	if err != nil {
		h.Failure(w, err, api.Messages{Unhandled: "failed to fetch materials"})
		return
	}

	response := make([]MaterialResponse, len(materials))
	for i, m := range materials {
		response[i] = MaterialResponse{
			ID:           m.ID,
			Name:         m.Name,
			Description:  m.Description,
			CurrentStock: m.CurrentStock.InexactFloat64(),
			Unit:         m.Unit,
			Supplier:     m.Supplier,
			UnitCost:     m.UnitCost.InexactFloat64(),
			StockValue:   m.CurrentStock.Mul(m.UnitCost).StringFixed(2),
		}
	}
	h.OKResponse(w, response)
}
