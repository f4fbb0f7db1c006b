package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/you/wellness-commerce/internal/domain"
)

type BookingRepo struct{ db *gorm.DB }

func NewBookingRepo(db *gorm.DB) *BookingRepo {
	return &BookingRepo{db: db}
}

func (r *BookingRepo) Migrate() error {
	return r.db.AutoMigrate(&domain.Booking{})
}

func (r *BookingRepo) Create(ctx context.Context, b *domain.Booking) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *BookingRepo) ByID(ctx context.Context, id string) (*domain.Booking, error) {
	var b domain.Booking
	if err := r.db.WithContext(ctx).First(&b, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, err
	}
	return &b, nil
}

// FindByReference tries the booking number and the explicit reference
// column first, then falls back to scanning notes for the bracketed
// marker legacy bookings carry. The marker match is the full bracketed
// substring (in any of its outcome forms), never a bare prefix, so
// reference prefix collisions cannot resolve to the wrong booking.
// Returns (nil, nil) when nothing matches.
func (r *BookingRepo) FindByReference(ctx context.Context, reference string) (*domain.Booking, error) {
	if reference == "" {
		return nil, nil
	}
	var b domain.Booking
	err := r.db.WithContext(ctx).
		Where("booking_number = ? OR payment_reference = ?", reference, reference).
		First(&b).Error
	if err == nil {
		return &b, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	err = r.db.WithContext(ctx).
		Where(`notes LIKE ? ESCAPE '\'`, "%"+escapeLike(domain.PaymentMarker(reference))+"%").
		Or(`notes LIKE ? ESCAPE '\'`, "%"+escapeLike(domain.PaidMarker(reference))+"%").
		Or(`notes LIKE ? ESCAPE '\'`, "%"+escapeLike(domain.FailedMarker(reference))+"%").
		First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// escapeLike neutralises LIKE wildcards so marker matching stays a
// literal substring check; gateway references often contain underscores.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// SetPaymentReference stamps the reference column and, when the
// reference differs from the booking number, appends the notes marker
// once so legacy reference scanning keeps working.
func (r *BookingRepo) SetPaymentReference(ctx context.Context, id, reference string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var b domain.Booking
		if err := tx.First(&b, "id = ?", id).Error; err != nil {
			return err
		}
		b.PaymentReference = reference
		marker := domain.PaymentMarker(reference)
		if reference != b.BookingNumber && !strings.Contains(b.Notes, marker) {
			if b.Notes != "" {
				b.Notes += "\n"
			}
			b.Notes += marker
		}
		return tx.Save(&b).Error
	})
}

// MarkPaid flips paid exactly once and confirms the booking. The notes
// marker for the reference is rewritten in place to its PAID form, so
// replays neither duplicate the marker nor touch the row at all.
func (r *BookingRepo) MarkPaid(ctx context.Context, id, reference string) (bool, error) {
	applied := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// a cancelled booking stays cancelled; only pending work confirms
		res := tx.Model(&domain.Booking{}).
			Where("id = ? AND paid = ? AND status <> ?", id, false, domain.BookingStatusCancelled).
			Updates(map[string]any{
				"paid":   true,
				"status": domain.BookingStatusConfirmed,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		applied = true
		return r.rewriteMarker(tx, id, reference, domain.PaidMarker(reference))
	})
	return applied, err
}

// MarkFailed rewrites the marker to its FAILED form while the booking
// is still unpaid. A paid booking ignores late failure notifications.
func (r *BookingRepo) MarkFailed(ctx context.Context, id, reference string) (bool, error) {
	applied := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var b domain.Booking
		if err := tx.First(&b, "id = ?", id).Error; err != nil {
			return err
		}
		if b.Paid {
			return nil
		}
		applied = true
		return r.rewriteMarker(tx, id, reference, domain.FailedMarker(reference))
	})
	return applied, err
}

func (r *BookingRepo) rewriteMarker(tx *gorm.DB, id, reference, to string) error {
	var b domain.Booking
	if err := tx.First(&b, "id = ?", id).Error; err != nil {
		return err
	}
	notes := b.Notes
	for _, from := range []string{
		domain.PaymentMarker(reference),
		domain.PaidMarker(reference),
		domain.FailedMarker(reference),
	} {
		if from == to {
			continue
		}
		notes = strings.Replace(notes, from, to, 1)
	}
	if notes == b.Notes {
		return nil
	}
	return tx.Model(&domain.Booking{}).Where("id = ?", id).
		Update("notes", notes).Error
}
