package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/you/wellness-commerce/internal/domain"
)

type OrderRepo struct{ db *gorm.DB }

func NewOrderRepo(db *gorm.DB) *OrderRepo {
	return &OrderRepo{db: db}
}

func (r *OrderRepo) Migrate() error {
	return r.db.AutoMigrate(&domain.Product{}, &domain.Order{}, &domain.OrderItem{})
}

func (r *OrderRepo) CreateProduct(ctx context.Context, p *domain.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *OrderRepo) ProductByID(ctx context.Context, id string) (*domain.Product, error) {
	var p domain.Product
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProductNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *OrderRepo) Create(ctx context.Context, o *domain.Order) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *OrderRepo) ByID(ctx context.Context, id string) (*domain.Order, error) {
	var o domain.Order
	err := r.db.WithContext(ctx).Preload("Items.Product").First(&o, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepo) SetPaymentIntent(ctx context.Context, id, reference string) error {
	return r.db.WithContext(ctx).Model(&domain.Order{}).
		Where("id = ?", id).
		Update("payment_intent", reference).Error
}

// FindByReference matches the gateway reference against either field
// the checkout may have sent: the stored intent or the order number.
// Returns (nil, nil) when no order matches.
func (r *OrderRepo) FindByReference(ctx context.Context, reference string) (*domain.Order, error) {
	if reference == "" {
		return nil, nil
	}
	var o domain.Order
	err := r.db.WithContext(ctx).Preload("Items.Product").
		Where("payment_intent = ? OR order_number = ?", reference, reference).
		First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// MarkPaid applies the PENDING->PAID transition at most once. The
// guard is the WHERE clause itself: zero affected rows means another
// caller already reconciled this order and nothing is written, stock
// included. A FAILED order may still move to PAID on a retried
// payment.
func (r *OrderRepo) MarkPaid(ctx context.Context, orderID string) (bool, error) {
	applied := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.Order{}).
			Where("id = ? AND payment_status IN ?", orderID,
				[]string{domain.PaymentStatusPending, domain.PaymentStatusFailed}).
			Updates(map[string]any{
				"payment_status": domain.PaymentStatusPaid,
				"status":         domain.OrderStatusProcessing,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		applied = true

		// Stock moves with the same transition: physical items only.
		var items []domain.OrderItem
		if err := tx.Where("order_id = ?", orderID).Find(&items).Error; err != nil {
			return err
		}
		for _, it := range items {
			if err := tx.Model(&domain.Product{}).
				Where("id = ? AND is_digital = ?", it.ProductID, false).
				UpdateColumn("stock", gorm.Expr("stock - ?", it.Quantity)).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return applied, err
}

// MarkFailed records a failed transaction attempt. A PAID order is
// never downgraded by a stale failure notification.
func (r *OrderRepo) MarkFailed(ctx context.Context, orderID string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.Order{}).
		Where("id = ? AND payment_status = ?", orderID, domain.PaymentStatusPending).
		Update("payment_status", domain.PaymentStatusFailed)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
