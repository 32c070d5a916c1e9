package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"storefront-shipping-service/internal/kv"
	"storefront-shipping-service/internal/model"
)

func testOrder(id string) model.Order {
	now := time.Now().UTC()
	return model.Order{
		ID:        id,
		CreatedAt: now,
		UpdatedAt: now,
		Items:     []model.OrderItem{{ID: "i1", Name: "Café", Quantity: 2, Price: 50}},
		Total:     100,
		Shipping: model.ShippingState{
			Status:    "Preparando",
			StepIndex: 0,
			UpdatedAt: now,
		},
	}
}

func TestAddPrependsAndGetByID(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository(kv.NewMemory())

	if err := repo.Add(ctx, testOrder("o1")); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := repo.Add(ctx, testOrder("o2")); err != nil {
		t.Fatalf("add: %v", err)
	}

	orders, err := repo.GetAll(ctx)
	if err != nil {
		t.Fatalf("getAll: %v", err)
	}
	if len(orders) != 2 || orders[0].ID != "o2" {
		t.Fatalf("expected most-recent-first ordering, got %+v", orders)
	}

	got, err := repo.GetByID(ctx, "o1")
	if err != nil {
		t.Fatalf("getByID: %v", err)
	}
	if got.ID != "o1" {
		t.Fatalf("getByID returned %q", got.ID)
	}

	if _, err := repo.GetByID(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateShallowMergesShipping(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository(kv.NewMemory())

	order := testOrder("o1")
	order.Shipping.StepIndex = 0
	if err := repo.Add(ctx, order); err != nil {
		t.Fatalf("add: %v", err)
	}

	status := "Despachado"
	updated, err := repo.Update(ctx, "o1", OrderPatch{Shipping: &ShippingPatch{Status: &status}})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if updated.Shipping.Status != "Despachado" {
		t.Fatalf("status not applied: %+v", updated.Shipping)
	}
	// el campo no incluido en el patch se preserva
	if updated.Shipping.StepIndex != 0 {
		t.Fatalf("stepIndex overwritten: %+v", updated.Shipping)
	}
	if updated.Shipping.UpdatedAt.Before(order.Shipping.UpdatedAt) {
		t.Fatalf("shipping updatedAt not refreshed")
	}

	// el patch completo actualiza ambos campos
	step := 1
	updated, err = repo.Update(ctx, "o1", OrderPatch{Shipping: &ShippingPatch{Status: &status, StepIndex: &step}})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Shipping.StepIndex != 1 || updated.Shipping.Status != "Despachado" {
		t.Fatalf("full patch not applied: %+v", updated.Shipping)
	}

	if _, err := repo.Update(ctx, "nope", OrderPatch{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateWithoutShippingPatchKeepsShipping(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository(kv.NewMemory())

	order := testOrder("o1")
	if err := repo.Add(ctx, order); err != nil {
		t.Fatalf("add: %v", err)
	}

	updated, err := repo.Update(ctx, "o1", OrderPatch{})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Shipping.Status != "Preparando" || updated.Shipping.StepIndex != 0 {
		t.Fatalf("shipping mutated by empty patch: %+v", updated.Shipping)
	}
}

func TestCorruptBlobReadsAsEmpty(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	if err := store.SetItem(ctx, "orders", "{not json"); err != nil {
		t.Fatalf("setItem: %v", err)
	}

	repo := NewOrderRepository(store)
	orders, err := repo.GetAll(ctx)
	if err != nil {
		t.Fatalf("corrupt blob must not error: %v", err)
	}
	if len(orders) != 0 {
		t.Fatalf("corrupt blob should read as empty list, got %d", len(orders))
	}
}

func TestLoadNormalizesShipping(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	raw := `[{"id":"o1","items":[],"total":10,"shipping":{"status":"","stepIndex":42}}]`
	if err := store.SetItem(ctx, "orders", raw); err != nil {
		t.Fatalf("setItem: %v", err)
	}

	repo := NewOrderRepository(store)
	got, err := repo.GetByID(ctx, "o1")
	if err != nil {
		t.Fatalf("getByID: %v", err)
	}
	if got.Shipping.StepIndex != 0 || got.Shipping.Status != "Preparando" {
		t.Fatalf("shipping not normalized at store boundary: %+v", got.Shipping)
	}
}
