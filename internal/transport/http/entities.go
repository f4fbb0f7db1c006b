package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/you/wellness-commerce/internal/domain"
	"github.com/you/wellness-commerce/internal/service"
)

type BookingHandler struct {
	svc *service.BookingSvc
}

func NewBookingHandler(svc *service.BookingSvc) *BookingHandler {
	return &BookingHandler{svc: svc}
}

type createBookingBody struct {
	ClientName  string `json:"clientName" binding:"required"`
	ClientEmail string `json:"clientEmail" binding:"required,email"`
	ClientPhone string `json:"clientPhone"`
	Service     string `json:"service" binding:"required"`
	Start       string `json:"start" binding:"required"`
	End         string `json:"end" binding:"required"`
	Price       string `json:"price" binding:"required"`
	Notes       string `json:"notes"`
}

func (h *BookingHandler) Create(c *gin.Context) {
	var body createBookingBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	price, err := decimal.NewFromString(body.Price)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid price"})
		return
	}

	b, err := h.svc.Create(c.Request.Context(), service.CreateBookingInput{
		ClientName:  body.ClientName,
		ClientEmail: body.ClientEmail,
		ClientPhone: body.ClientPhone,
		Service:     body.Service,
		StartISO:    body.Start,
		EndISO:      body.End,
		Price:       price,
		Notes:       body.Notes,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, b)
}

func (h *BookingHandler) Get(c *gin.Context) {
	b, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrBookingNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, b)
}

// ProductStore is the slice of the order repository the catalog needs.
type ProductStore interface {
	CreateProduct(ctx context.Context, p *domain.Product) error
	ProductByID(ctx context.Context, id string) (*domain.Product, error)
}

type CatalogHandler struct {
	store ProductStore
}

func NewCatalogHandler(store ProductStore) *CatalogHandler {
	return &CatalogHandler{store: store}
}

type createProductBody struct {
	Name      string `json:"name" binding:"required"`
	Price     string `json:"price" binding:"required"`
	Stock     int    `json:"stock"`
	IsDigital bool   `json:"isDigital"`
}

func (h *CatalogHandler) Create(c *gin.Context) {
	var body createProductBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	price, err := decimal.NewFromString(body.Price)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid price"})
		return
	}

	p := &domain.Product{
		ID:        uuid.NewString(),
		Name:      body.Name,
		Price:     price,
		Stock:     body.Stock,
		IsDigital: body.IsDigital,
	}
	if err := h.store.CreateProduct(c.Request.Context(), p); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *CatalogHandler) Get(c *gin.Context) {
	p, err := h.store.ProductByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, p)
}
