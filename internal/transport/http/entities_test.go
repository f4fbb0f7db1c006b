package http

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/you/wellness-commerce/internal/domain"
)

func TestCreateAndFetchBooking(t *testing.T) {
	e := newEnv(t)

	w := doJSON(e.router, http.MethodPost, "/api/bookings", gin.H{
		"clientName":  "Amina",
		"clientEmail": "amina@example.com",
		"service":     "Nutrition Consultation",
		"start":       "2026-09-01T09:00:00Z",
		"end":         "2026-09-01T10:00:00Z",
		"price":       "1500.00",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var b domain.Booking
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &b))
	assert.Equal(t, domain.BookingStatusPending, b.Status)
	assert.False(t, b.Paid)
	assert.NotEmpty(t, b.BookingNumber)

	w = doJSON(e.router, http.MethodGet, "/api/bookings/"+b.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCreateBookingRejectsBadWindow(t *testing.T) {
	e := newEnv(t)

	w := doJSON(e.router, http.MethodPost, "/api/bookings", gin.H{
		"clientName":  "Amina",
		"clientEmail": "amina@example.com",
		"service":     "Nutrition Consultation",
		"start":       "2026-09-01T10:00:00Z",
		"end":         "2026-09-01T09:00:00Z",
		"price":       "1500.00",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProductEndpoints(t *testing.T) {
	e := newEnv(t)

	w := doJSON(e.router, http.MethodPost, "/api/products", gin.H{
		"name":  "Meal Plan eBook",
		"price": "750.00",
		"stock": 0, "isDigital": true,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var p domain.Product
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	assert.True(t, p.IsDigital)

	w = doJSON(e.router, http.MethodGet, "/api/products/"+p.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(e.router, http.MethodGet, "/api/products/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
