package stock

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tienda-shop/tienda-shop/internal/platform/httpx"
)

type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

type setStockForm struct {
	Stock int `json:"stock"`
}

type adjustStockForm struct {
	Delta int `json:"delta"`
}

func (h *Handler) GetBreakdown(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid product id")
		return
	}
	breakdown, err := h.service.GetBreakdown(r.Context(), productID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, breakdown)
}

func (h *Handler) SetTalleStock(w http.ResponseWriter, r *http.Request) {
	productID, err1 := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	talleID, err2 := strconv.ParseInt(chi.URLParam(r, "talleID"), 10, 64)
	if err1 != nil || err2 != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid id")
		return
	}
	var form setStockForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.service.SetTalleStock(r.Context(), productID, talleID, form.Stock); err != nil {
		h.respondStockError(w, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) AdjustTalleStock(w http.ResponseWriter, r *http.Request) {
	productID, err1 := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	talleID, err2 := strconv.ParseInt(chi.URLParam(r, "talleID"), 10, 64)
	if err1 != nil || err2 != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid id")
		return
	}
	var form adjustStockForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.service.AdjustTalleStock(r.Context(), productID, talleID, form.Delta); err != nil {
		h.respondStockError(w, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) SetColorStock(w http.ResponseWriter, r *http.Request) {
	productID, err1 := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	colorID, err2 := strconv.ParseInt(chi.URLParam(r, "colorID"), 10, 64)
	if err1 != nil || err2 != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid id")
		return
	}
	var form setStockForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.service.SetColorStock(r.Context(), productID, colorID, form.Stock); err != nil {
		h.respondStockError(w, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) AdjustColorStock(w http.ResponseWriter, r *http.Request) {
	productID, err1 := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	colorID, err2 := strconv.ParseInt(chi.URLParam(r, "colorID"), 10, 64)
	if err1 != nil || err2 != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid id")
		return
	}
	var form adjustStockForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.service.AdjustColorStock(r.Context(), productID, colorID, form.Delta); err != nil {
		h.respondStockError(w, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) AdjustVariantStock(w http.ResponseWriter, r *http.Request) {
	variantID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid variant id")
		return
	}
	var form adjustStockForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.service.AdjustVariantStock(r.Context(), variantID, form.Delta); err != nil {
		h.respondStockError(w, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) respondStockError(w http.ResponseWriter, err error) {
	switch err {
	case ErrNegativeStock:
		httpx.Problem(w, http.StatusUnprocessableEntity, "Invalid State", err.Error())
	case ErrInvalidQuantity:
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		httpx.RespondError(w, err)
	}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/products/{id}/stock", func(r chi.Router) {
		r.Get("/", h.GetBreakdown)
		r.Put("/talles/{talleID}", h.SetTalleStock)
		r.Patch("/talles/{talleID}", h.AdjustTalleStock)
		r.Put("/colors/{colorID}", h.SetColorStock)
		r.Patch("/colors/{colorID}", h.AdjustColorStock)
	})
	r.Patch("/variants/{id}/stock", h.AdjustVariantStock)
}
