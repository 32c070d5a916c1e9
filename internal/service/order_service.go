package service

import (
	"context"
	"math"
	"time"

	"storefront-shipping-service/internal/model"
	"storefront-shipping-service/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderService crea órdenes en el checkout y expone las lecturas.
// La mutación del envío queda en manos exclusivas del motor de progresión.
type OrderService struct {
	repo *repository.OrderRepository
	log  *zap.Logger
}

func NewOrderService(repo *repository.OrderRepository, log *zap.Logger) *OrderService {
	return &OrderService{repo: repo, log: log}
}

type CreateOrderInput struct {
	Items     []model.OrderItem
	Total     float64
	Address   *model.Address
	AddressID string
}

// CreateOrder arma la orden con el envío en su estado inicial y la persiste.
// Un total no finito se trata como 0.
func (s *OrderService) CreateOrder(ctx context.Context, in CreateOrderInput) (*model.Order, error) {
	total := in.Total
	if math.IsNaN(total) || math.IsInf(total, 0) {
		total = 0
	}

	now := time.Now().UTC()
	order := model.Order{
		ID:        uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
		Items:     in.Items,
		Total:     total,
		Address:   in.Address,
		AddressID: in.AddressID,
		Shipping: model.ShippingState{
			Status:    model.ShippingSteps[0],
			StepIndex: 0,
			UpdatedAt: now,
		},
	}

	if err := s.repo.Add(ctx, order); err != nil {
		return nil, err
	}

	s.log.Info("orden creada", zap.String("orderId", order.ID), zap.Float64("total", order.Total))
	return &order, nil
}

func (s *OrderService) GetAll(ctx context.Context) ([]model.Order, error) {
	return s.repo.GetAll(ctx)
}

func (s *OrderService) GetByID(ctx context.Context, orderID string) (*model.Order, error) {
	return s.repo.GetByID(ctx, orderID)
}
