package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"storefront-shipping-service/internal/kv"
	"storefront-shipping-service/internal/model"
)

var ErrNotFound = errors.New("orden no encontrada")

const ordersKey = "orders"

// OrderRepository persiste la lista completa de órdenes como un blob JSON
// bajo una única clave. Toda escritura es read-modify-write sobre ese blob.
type OrderRepository struct {
	store kv.Store
}

func NewOrderRepository(store kv.Store) *OrderRepository {
	return &OrderRepository{store: store}
}

// load lee y normaliza la lista. Un blob corrupto o ausente se trata como
// lista vacía; solo los errores reales de I/O se propagan.
func (r *OrderRepository) load(ctx context.Context) ([]model.Order, error) {
	raw, ok, err := r.store.GetItem(ctx, ordersKey)
	if err != nil {
		return nil, err
	}
	if !ok || raw == "" {
		return []model.Order{}, nil
	}

	var orders []model.Order
	if err := json.Unmarshal([]byte(raw), &orders); err != nil {
		return []model.Order{}, nil
	}
	for i := range orders {
		orders[i].Shipping.Normalize()
	}
	return orders, nil
}

func (r *OrderRepository) save(ctx context.Context, orders []model.Order) error {
	data, err := json.Marshal(orders)
	if err != nil {
		return err
	}
	return r.store.SetItem(ctx, ordersKey, string(data))
}

func (r *OrderRepository) GetAll(ctx context.Context) ([]model.Order, error) {
	return r.load(ctx)
}

func (r *OrderRepository) GetByID(ctx context.Context, orderID string) (*model.Order, error) {
	orders, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		if orders[i].ID == orderID {
			return &orders[i], nil
		}
	}
	return nil, ErrNotFound
}

// Add inserta la orden al frente de la lista (orden más reciente primero).
func (r *OrderRepository) Add(ctx context.Context, order model.Order) error {
	orders, err := r.load(ctx)
	if err != nil {
		return err
	}
	next := append([]model.Order{order}, orders...)
	return r.save(ctx, next)
}

// ShippingPatch actualiza solo los campos presentes del sub-registro de
// envío; los omitidos se preservan.
type ShippingPatch struct {
	Status    *string
	StepIndex *int
}

type OrderPatch struct {
	Shipping *ShippingPatch
}

// Update aplica el patch con merge superficial sobre shipping y refresca
// updatedAt de la orden y del envío. Nunca pisa campos no incluidos.
func (r *OrderRepository) Update(ctx context.Context, orderID string, patch OrderPatch) (*model.Order, error) {
	orders, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	var updated *model.Order
	for i := range orders {
		if orders[i].ID != orderID {
			continue
		}
		if patch.Shipping != nil {
			if patch.Shipping.Status != nil {
				orders[i].Shipping.Status = *patch.Shipping.Status
			}
			if patch.Shipping.StepIndex != nil {
				orders[i].Shipping.StepIndex = *patch.Shipping.StepIndex
			}
			orders[i].Shipping.UpdatedAt = now
		}
		orders[i].UpdatedAt = now
		updated = &orders[i]
		break
	}
	if updated == nil {
		return nil, ErrNotFound
	}

	if err := r.save(ctx, orders); err != nil {
		return nil, err
	}
	return updated, nil
}
