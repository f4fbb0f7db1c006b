package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/you/wellness-commerce/internal/domain"
	"github.com/you/wellness-commerce/internal/events"
	"github.com/you/wellness-commerce/internal/repository"
)

type BookingSvc struct {
	repo *repository.BookingRepo
	pub  Publisher
}

func NewBookingSvc(r *repository.BookingRepo, pub Publisher) *BookingSvc {
	return &BookingSvc{repo: r, pub: pub}
}

type CreateBookingInput struct {
	ClientName  string
	ClientEmail string
	ClientPhone string
	Service     string
	StartISO    string
	EndISO      string
	Price       decimal.Decimal
	Notes       string
}

func (s *BookingSvc) Create(ctx context.Context, in CreateBookingInput) (*domain.Booking, error) {
	st, err := parseRFC3339UTC(in.StartISO)
	if err != nil {
		return nil, err
	}
	et, err := parseRFC3339UTC(in.EndISO)
	if err != nil {
		return nil, err
	}
	if !et.After(st) {
		return nil, errors.New("end must be after start")
	}
	if in.Price.IsNegative() {
		return nil, errors.New("price must not be negative")
	}

	b := &domain.Booking{
		ID:            uuid.NewString(),
		BookingNumber: newBookingNumber(),
		ClientName:    in.ClientName,
		ClientEmail:   in.ClientEmail,
		ClientPhone:   in.ClientPhone,
		Service:       in.Service,
		StartTime:     st,
		EndTime:       et,
		Price:         in.Price,
		Status:        domain.BookingStatusPending,
		Notes:         in.Notes,
	}
	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}

	if s.pub != nil {
		_ = s.pub.PublishJSON(ctx, events.RKBookingCreated, events.BookingCreated{
			BookingID:     b.ID,
			BookingNumber: b.BookingNumber,
			Service:       b.Service,
			Start:         b.StartTime.Unix(),
			End:           b.EndTime.Unix(),
		})
	}
	return b, nil
}

func (s *BookingSvc) Get(ctx context.Context, id string) (*domain.Booking, error) {
	return s.repo.ByID(ctx, id)
}

func parseRFC3339UTC(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
