// Package rest provides the HTTP surface of the application: session,
// clients, products, orders, the pending cart and the reports view.
package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"ventas/internal/cart"
	"ventas/internal/domain"
	"ventas/internal/metrics"
	"ventas/internal/report"
	"ventas/internal/store"
	"ventas/pkg/web"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

// reportWindowDays is the default reporting window when no dates are given.
const reportWindowDays = 30

type Handler struct {
	clients  *store.ClientStore
	products *store.ProductStore
	orders   *store.OrderStore
	session  *store.SessionStore
	cart     *cart.Builder
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandler creates the HTTP handler over the stores and the cart builder.
func NewHandler(clients *store.ClientStore, products *store.ProductStore, orders *store.OrderStore, session *store.SessionStore, builder *cart.Builder, logger *slog.Logger) *Handler {
	return &Handler{
		clients:  clients,
		products: products,
		orders:   orders,
		session:  session,
		cart:     builder,
		validate: validator.New(),
		logger:   logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the HTTP routes. Everything except the session
// endpoints sits behind the display-name guard.
func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Get("/healthz", h.HealthCheck)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/session", func(r chi.Router) {
			r.Get("/", h.GetSession)
			r.Put("/", h.PutSession)
			r.Delete("/", h.DeleteSession)
		})

		r.Group(func(r chi.Router) {
			r.Use(h.RequireDisplayName)

			r.Route("/clients", func(r chi.Router) {
				r.Get("/", h.ListClients)
				r.Post("/", h.CreateClient)
				r.Delete("/{id}", h.DeleteClient)
			})
			r.Route("/products", func(r chi.Router) {
				r.Get("/", h.ListProducts)
				r.Post("/", h.CreateProduct)
				r.Delete("/{id}", h.DeleteProduct)
			})
			r.Route("/orders", func(r chi.Router) {
				r.Get("/", h.ListOrders)
				r.Delete("/{id}", h.DeleteOrder)
			})
			r.Route("/cart", func(r chi.Router) {
				r.Get("/", h.GetCart)
				r.Put("/client", h.SelectCartClient)
				r.Post("/items", h.AddCartItem)
				r.Patch("/items/{index}", h.UpdateCartItem)
				r.Delete("/items/{index}", h.RemoveCartItem)
				r.Post("/checkout", h.Checkout)
			})
			r.Get("/reports", h.GetReport)
		})
	})
}

// RequireDisplayName is the route guard: screens behind it are reachable only
// once a display name is set.
func (h *Handler) RequireDisplayName(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.session.HasDisplayName() {
			web.RespondError(w, h.logger, http.StatusUnauthorized, "Display name required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	web.RespondJSON(w, h.logger, http.StatusOK, map[string]string{"status": "ok"})
}

// --- session ---

type sessionDto struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}

func (h *Handler) GetSession(w http.ResponseWriter, _ *http.Request) {
	name, ok := h.session.DisplayName()
	if !ok {
		web.RespondError(w, h.logger, http.StatusNotFound, "No display name set")
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, sessionDto{Name: name})
}

func (h *Handler) PutSession(w http.ResponseWriter, r *http.Request) {
	var dto sessionDto
	if !h.decodeAndValidate(w, r, &dto) {
		return
	}
	h.session.SetDisplayName(r.Context(), dto.Name)
	web.RespondJSON(w, h.logger, http.StatusOK, sessionDto{Name: dto.Name})
}

func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	h.session.Clear(r.Context())
	web.RespondJSON(w, h.logger, http.StatusNoContent, nil)
}

// --- clients ---

type clientCreateDto struct {
	Name    string `json:"name"    validate:"required,min=2,max=100"`
	Email   string `json:"email"   validate:"required,email"`
	Phone   string `json:"phone"   validate:"required,max=30"`
	Address string `json:"address" validate:"max=200"`
}

func (h *Handler) ListClients(w http.ResponseWriter, _ *http.Request) {
	web.RespondJSON(w, h.logger, http.StatusOK, h.clients.List())
}

func (h *Handler) CreateClient(w http.ResponseWriter, r *http.Request) {
	var dto clientCreateDto
	if !h.decodeAndValidate(w, r, &dto) {
		return
	}
	client := h.clients.Add(r.Context(), store.ClientFields{
		Name:    dto.Name,
		Email:   dto.Email,
		Phone:   dto.Phone,
		Address: dto.Address,
	})
	h.logger.DebugContext(r.Context(), "Client created", "ID", client.ID)
	web.RespondJSON(w, h.logger, http.StatusCreated, client)
}

func (h *Handler) DeleteClient(w http.ResponseWriter, r *http.Request) {
	id, ok := web.ParseID(w, r, h.logger)
	if !ok {
		return
	}
	// Deleting a nonexistent ID is a silent no-op.
	h.clients.Remove(r.Context(), id)
	web.RespondJSON(w, h.logger, http.StatusNoContent, nil)
}

// --- products ---

type productCreateDto struct {
	Name        string          `json:"name"        validate:"required,min=2,max=100"`
	Description string          `json:"description" validate:"required,max=500"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"       validate:"min=0"`
	Category    string          `json:"category"    validate:"max=50"`
}

func (h *Handler) ListProducts(w http.ResponseWriter, _ *http.Request) {
	web.RespondJSON(w, h.logger, http.StatusOK, h.products.List())
}

func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var dto productCreateDto
	if !h.decodeAndValidate(w, r, &dto) {
		return
	}
	if dto.Price.IsNegative() {
		web.RespondError(w, h.logger, http.StatusBadRequest, "Price must not be negative")
		return
	}
	product := h.products.Add(r.Context(), store.ProductFields{
		Name:        dto.Name,
		Description: dto.Description,
		Price:       dto.Price,
		Stock:       dto.Stock,
		Category:    dto.Category,
	})
	h.logger.DebugContext(r.Context(), "Product created", "ID", product.ID)
	web.RespondJSON(w, h.logger, http.StatusCreated, product)
}

func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := web.ParseID(w, r, h.logger)
	if !ok {
		return
	}
	h.products.Remove(r.Context(), id)
	web.RespondJSON(w, h.logger, http.StatusNoContent, nil)
}

// --- orders ---

func (h *Handler) ListOrders(w http.ResponseWriter, _ *http.Request) {
	web.RespondJSON(w, h.logger, http.StatusOK, h.orders.List())
}

func (h *Handler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := web.ParseID(w, r, h.logger)
	if !ok {
		return
	}
	h.orders.Remove(r.Context(), id)
	web.RespondJSON(w, h.logger, http.StatusNoContent, nil)
}

// --- cart ---

type cartClientDto struct {
	ClientID string `json:"client_id" validate:"required"`
}

type cartItemDto struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity"   validate:"min=1"`
}

type cartQuantityDto struct {
	// Zero or negative removes the item.
	Quantity int `json:"quantity"`
}

type cartView struct {
	Client       *domain.Client     `json:"client,omitempty"`
	Items        []domain.OrderItem `json:"items"`
	Total        decimal.Decimal    `json:"total"`
	StockLimited bool               `json:"stock_limited,omitempty"`
}

func (h *Handler) cartViewWith(stockLimited bool) cartView {
	view := cartView{
		Items:        h.cart.Items(),
		Total:        h.cart.Total(),
		StockLimited: stockLimited,
	}
	if client, ok := h.cart.Client(); ok {
		view.Client = &client
	}
	return view
}

func (h *Handler) GetCart(w http.ResponseWriter, _ *http.Request) {
	web.RespondJSON(w, h.logger, http.StatusOK, h.cartViewWith(false))
}

func (h *Handler) SelectCartClient(w http.ResponseWriter, r *http.Request) {
	var dto cartClientDto
	if !h.decodeAndValidate(w, r, &dto) {
		return
	}
	client, ok := h.clients.FindByID(dto.ClientID)
	if !ok {
		web.RespondError(w, h.logger, http.StatusNotFound, fmt.Sprintf("Client with ID %s not found", dto.ClientID))
		return
	}
	h.cart.SelectClient(client)
	web.RespondJSON(w, h.logger, http.StatusOK, h.cartViewWith(false))
}

func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	var dto cartItemDto
	if !h.decodeAndValidate(w, r, &dto) {
		return
	}
	product, ok := h.products.FindByID(dto.ProductID)
	if !ok {
		web.RespondError(w, h.logger, http.StatusNotFound, fmt.Sprintf("Product with ID %s not found", dto.ProductID))
		return
	}

	clamped, err := h.cart.AddItem(product, dto.Quantity)
	if err != nil {
		if errors.Is(err, cart.ErrOutOfStock) {
			metrics.CartStockLimitsTotal.WithLabelValues(metrics.OutcomeRejected).Inc()
			web.RespondError(w, h.logger, http.StatusConflict, fmt.Sprintf("Product %s is out of stock", product.Name))
			return
		}
		h.logger.ErrorContext(r.Context(), "Error adding cart item", "error", err)
		web.RespondError(w, h.logger, http.StatusInternalServerError, "Failed to add item to cart")
		return
	}
	if clamped {
		metrics.CartStockLimitsTotal.WithLabelValues(metrics.OutcomeClamped).Inc()
	}
	web.RespondJSON(w, h.logger, http.StatusOK, h.cartViewWith(clamped))
}

func (h *Handler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	index, ok := web.ParseIndex(w, r, h.logger)
	if !ok {
		return
	}
	var dto cartQuantityDto
	if !h.decodeAndValidate(w, r, &dto) {
		return
	}

	clamped, err := h.cart.UpdateQuantity(index, dto.Quantity)
	if err != nil {
		if errors.Is(err, cart.ErrItemNotFound) {
			web.RespondError(w, h.logger, http.StatusNotFound, fmt.Sprintf("Cart item %d not found", index))
			return
		}
		h.logger.ErrorContext(r.Context(), "Error updating cart item", "error", err)
		web.RespondError(w, h.logger, http.StatusInternalServerError, "Failed to update cart item")
		return
	}
	if clamped {
		metrics.CartStockLimitsTotal.WithLabelValues(metrics.OutcomeClamped).Inc()
	}
	web.RespondJSON(w, h.logger, http.StatusOK, h.cartViewWith(clamped))
}

func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	index, ok := web.ParseIndex(w, r, h.logger)
	if !ok {
		return
	}
	if err := h.cart.RemoveItem(index); err != nil {
		web.RespondError(w, h.logger, http.StatusNotFound, fmt.Sprintf("Cart item %d not found", index))
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, h.cartViewWith(false))
}

func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	draft, err := h.cart.Finalize()
	if err != nil {
		if errors.Is(err, cart.ErrNoClientSelected) || errors.Is(err, cart.ErrEmptyCart) {
			web.RespondError(w, h.logger, http.StatusUnprocessableEntity, err.Error())
			return
		}
		h.logger.ErrorContext(r.Context(), "Error finalizing cart", "error", err)
		web.RespondError(w, h.logger, http.StatusInternalServerError, "Failed to create order")
		return
	}

	order := h.orders.Add(r.Context(), draft)
	metrics.OrdersCreatedTotal.Inc()
	h.logger.InfoContext(r.Context(), "Order created", "ID", order.ID, "total", order.Total)
	web.RespondJSON(w, h.logger, http.StatusCreated, order)
}

// --- reports ---

func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	to := time.Now().UTC()
	from := to.AddDate(0, 0, -reportWindowDays)

	var err error
	if raw := r.URL.Query().Get("from"); raw != "" {
		if from, err = time.ParseInLocation("2006-01-02", raw, time.UTC); err != nil {
			web.RespondError(w, h.logger, http.StatusBadRequest, fmt.Sprintf("Invalid from date: %s", raw))
			return
		}
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		if to, err = time.ParseInLocation("2006-01-02", raw, time.UTC); err != nil {
			web.RespondError(w, h.logger, http.StatusBadRequest, fmt.Sprintf("Invalid to date: %s", raw))
			return
		}
	}

	summary := report.Build(h.orders.List(), from, to)
	web.RespondJSON(w, h.logger, http.StatusOK, summary)
}

// decodeAndValidate decodes the JSON body into dto and runs struct
// validation, writing a 400 response on failure.
func (h *Handler) decodeAndValidate(w http.ResponseWriter, r *http.Request, dto any) bool {
	if err := json.NewDecoder(r.Body).Decode(dto); err != nil {
		web.RespondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := h.validate.Struct(dto); err != nil {
		web.RespondError(w, h.logger, http.StatusBadRequest, fmt.Sprintf("Validation failed: %v", err))
		return false
	}
	return true
}
