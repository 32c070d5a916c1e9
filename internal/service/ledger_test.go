package service

import (
	"context"
	"sync"
	"testing"

	"storefront-shipping-service/internal/kv"
	"storefront-shipping-service/internal/model"
	"storefront-shipping-service/internal/repository"

	"go.uber.org/zap"
)

type fakePush struct {
	mu    sync.Mutex
	calls int
	fail  bool
}

func (f *fakePush) Schedule(_ context.Context, _, _ string, _ map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.fail {
		return context.DeadlineExceeded
	}
	return nil
}

type fakeToasts struct {
	mu       sync.Mutex
	received []model.NotificationRecord
}

func (f *fakeToasts) Publish(record model.NotificationRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.received = append(f.received, record)
}

func newLedger(t *testing.T, push SystemNotifier, toasts ToastPublisher) (*NotificationLedger, *repository.PreferenceRepository) {
	t.Helper()
	store := kv.NewMemory()
	notifs := repository.NewNotificationRepository(store)
	prefs := repository.NewPreferenceRepository(store)
	return NewNotificationLedger(notifs, prefs, push, toasts, zap.NewNop()), prefs
}

func TestEnsureIdempotent(t *testing.T) {
	ctx := context.Background()
	ledger, _ := newLedger(t, nil, nil)

	req := EnsureRequest{OrderID: "o1", Type: model.NotificationDispatched, Title: "Pedido despachado", Body: "Tu pedido fue despachado"}

	first, err := ledger.Ensure(ctx, req)
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if first == nil {
		t.Fatalf("first ensure should create a record")
	}
	if first.Read {
		t.Fatalf("new notification should be unread")
	}

	second, err := ledger.Ensure(ctx, req)
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if second != nil {
		t.Fatalf("duplicate ensure should return nil")
	}

	list, err := ledger.GetAll(ctx)
	if err != nil {
		t.Fatalf("getAll: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected exactly one record, got %d", len(list))
	}
}

func TestEnsureConcurrent(t *testing.T) {
	ctx := context.Background()
	ledger, _ := newLedger(t, nil, nil)

	req := EnsureRequest{OrderID: "o1", Type: model.NotificationDelivered, Title: "Entrega exitosa", Body: "Gracias por tu compra!"}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := ledger.Ensure(ctx, req); err != nil {
				t.Errorf("ensure: %v", err)
			}
		}()
	}
	wg.Wait()

	list, _ := ledger.GetAll(ctx)
	if len(list) != 1 {
		t.Fatalf("concurrent ensure produced %d records, want 1", len(list))
	}
}

func TestEnsureSuppressedByOrderUpdatesPreference(t *testing.T) {
	ctx := context.Background()
	ledger, prefs := newLedger(t, nil, nil)

	p := model.DefaultPreferences()
	p.OrderUpdates = false
	if err := prefs.Save(ctx, p); err != nil {
		t.Fatalf("save prefs: %v", err)
	}

	created, err := ledger.Ensure(ctx, EnsureRequest{OrderID: "o1", Type: model.NotificationDoor, Title: "Repartidor", Body: "El repartidor está en la puerta"})
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if created != nil {
		t.Fatalf("order notification should be suppressed, got %+v", created)
	}

	list, _ := ledger.GetAll(ctx)
	if len(list) != 0 {
		t.Fatalf("suppressed notification was persisted")
	}
}

func TestEnsureForwardsWhenPushEnabled(t *testing.T) {
	ctx := context.Background()
	push := &fakePush{}
	toasts := &fakeToasts{}
	ledger, _ := newLedger(t, push, toasts)

	if _, err := ledger.Ensure(ctx, EnsureRequest{OrderID: "o1", Type: model.NotificationOnTheWay, Title: "En camino", Body: "Tu pedido está en camino"}); err != nil {
		t.Fatalf("ensure: %v", err)
	}

	if push.calls != 1 {
		t.Fatalf("expected one system notification, got %d", push.calls)
	}
	if len(toasts.received) != 1 {
		t.Fatalf("expected one toast, got %d", len(toasts.received))
	}
}

func TestEnsureSwallowsPushFailure(t *testing.T) {
	ctx := context.Background()
	push := &fakePush{fail: true}
	ledger, _ := newLedger(t, push, nil)

	created, err := ledger.Ensure(ctx, EnsureRequest{OrderID: "o1", Type: model.NotificationPreparing, Title: "Pedido confirmado", Body: "Estamos preparando tu pedido"})
	if err != nil {
		t.Fatalf("push failure must not propagate: %v", err)
	}
	if created == nil {
		t.Fatalf("record must be created even if push fails")
	}
}

func TestEnsureSkipsForwardingWhenPushDisabled(t *testing.T) {
	ctx := context.Background()
	push := &fakePush{}
	toasts := &fakeToasts{}
	ledger, prefs := newLedger(t, push, toasts)

	p := model.DefaultPreferences()
	p.Push = false
	if err := prefs.Save(ctx, p); err != nil {
		t.Fatalf("save prefs: %v", err)
	}

	created, err := ledger.Ensure(ctx, EnsureRequest{OrderID: "o1", Type: model.NotificationDispatched, Title: "Pedido despachado", Body: "Tu pedido fue despachado"})
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if created == nil {
		t.Fatalf("record should still be created with push disabled")
	}
	if push.calls != 0 || len(toasts.received) != 0 {
		t.Fatalf("forwarding should be skipped with push disabled")
	}
}

func TestClearAllResetsDeduplication(t *testing.T) {
	ctx := context.Background()
	ledger, _ := newLedger(t, nil, nil)

	req := EnsureRequest{OrderID: "o1", Type: model.NotificationRate, Title: "¿Cómo fue tu compra?", Body: "Calificá tu pedido con estrellas"}
	if _, err := ledger.Ensure(ctx, req); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if err := ledger.ClearAll(ctx); err != nil {
		t.Fatalf("clearAll: %v", err)
	}

	created, err := ledger.Ensure(ctx, req)
	if err != nil {
		t.Fatalf("ensure after clear: %v", err)
	}
	if created == nil {
		t.Fatalf("clearAll should reset the dedup history")
	}
}

func TestMarkReadAndUnreadCount(t *testing.T) {
	ctx := context.Background()
	ledger, _ := newLedger(t, nil, nil)

	a, _ := ledger.Ensure(ctx, EnsureRequest{OrderID: "o1", Type: model.NotificationDispatched, Title: "t", Body: "b"})
	if _, err := ledger.Ensure(ctx, EnsureRequest{OrderID: "o2", Type: model.NotificationDispatched, Title: "t", Body: "b"}); err != nil {
		t.Fatalf("ensure: %v", err)
	}

	count, err := ledger.UnreadCount(ctx)
	if err != nil || count != 2 {
		t.Fatalf("unread count = %d (%v), want 2", count, err)
	}

	if err := ledger.MarkRead(ctx, a.ID); err != nil {
		t.Fatalf("markRead: %v", err)
	}
	count, _ = ledger.UnreadCount(ctx)
	if count != 1 {
		t.Fatalf("unread count after markRead = %d, want 1", count)
	}

	if err := ledger.MarkAllRead(ctx); err != nil {
		t.Fatalf("markAllRead: %v", err)
	}
	count, _ = ledger.UnreadCount(ctx)
	if count != 0 {
		t.Fatalf("unread count after markAllRead = %d, want 0", count)
	}
}
