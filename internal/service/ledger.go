package service

import (
	"context"
	"sync"
	"time"

	"storefront-shipping-service/internal/model"
	"storefront-shipping-service/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SystemNotifier es el colaborador de notificaciones de plataforma.
// Sus fallas se registran y se descartan, nunca se propagan.
type SystemNotifier interface {
	Schedule(ctx context.Context, title, body string, data map[string]string) error
}

// ToastPublisher es el canal de toasts in-app. Publicar sin suscriptores
// es un no-op.
type ToastPublisher interface {
	Publish(record model.NotificationRecord)
}

// EnsureRequest pide crear una notificación si aún no existe una con la
// misma clave (orderId, type).
type EnsureRequest struct {
	OrderID string
	Type    string
	Title   string
	Body    string
}

// NotificationLedger mantiene el log de notificaciones con garantía de
// at-most-once por (orderId, type). Todos los drivers comparten una misma
// instancia; el mutex serializa Ensure y el índice da el lookup O(1).
type NotificationLedger struct {
	repo   *repository.NotificationRepository
	prefs  *repository.PreferenceRepository
	push   SystemNotifier
	toasts ToastPublisher
	log    *zap.Logger

	mu   sync.Mutex
	seen map[string]bool // clave orderID+"|"+type; nil hasta el primer uso
}

func NewNotificationLedger(
	repo *repository.NotificationRepository,
	prefs *repository.PreferenceRepository,
	push SystemNotifier,
	toasts ToastPublisher,
	log *zap.Logger,
) *NotificationLedger {
	return &NotificationLedger{
		repo:   repo,
		prefs:  prefs,
		push:   push,
		toasts: toasts,
		log:    log,
	}
}

func dedupKey(orderID, notifType string) string {
	return orderID + "|" + notifType
}

// Ensure crea la notificación solo si no existe ya una con la misma clave.
// Devuelve nil sin error cuando fue deduplicada o suprimida por preferencias.
func (l *NotificationLedger) Ensure(ctx context.Context, req EnsureRequest) (*model.NotificationRecord, error) {
	prefs, err := l.prefs.Get(ctx)
	if err != nil {
		return nil, err
	}

	// Las actualizaciones de pedido deshabilitadas suprimen la creación,
	// no solo el reenvío.
	if model.IsOrderNotificationType(req.Type) && !prefs.OrderUpdates {
		return nil, nil
	}

	l.mu.Lock()
	created, err := l.ensureLocked(ctx, req)
	l.mu.Unlock()
	if err != nil || created == nil {
		return created, err
	}

	l.forward(ctx, *created, prefs)
	return created, nil
}

func (l *NotificationLedger) ensureLocked(ctx context.Context, req EnsureRequest) (*model.NotificationRecord, error) {
	key := dedupKey(req.OrderID, req.Type)

	if l.seen == nil {
		if err := l.primeIndex(ctx); err != nil {
			return nil, err
		}
	}
	if l.seen[key] {
		return nil, nil
	}

	record := model.NotificationRecord{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Title:     req.Title,
		Body:      req.Body,
		Read:      false,
		OrderID:   req.OrderID,
		Type:      req.Type,
	}
	if err := l.repo.Add(ctx, record); err != nil {
		return nil, err
	}
	l.seen[key] = true
	return &record, nil
}

// primeIndex reconstruye el índice de deduplicación desde el log persistido.
func (l *NotificationLedger) primeIndex(ctx context.Context) error {
	list, err := l.repo.GetAll(ctx)
	if err != nil {
		return err
	}
	l.seen = make(map[string]bool, len(list))
	for _, n := range list {
		if n.OrderID != "" && n.Type != "" {
			l.seen[dedupKey(n.OrderID, n.Type)] = true
		}
	}
	return nil
}

// forward reenvía a los colaboradores externos, a lo sumo dos: notificación
// de sistema y toast in-app. Ambos son best-effort.
func (l *NotificationLedger) forward(ctx context.Context, record model.NotificationRecord, prefs model.Preferences) {
	if !prefs.Push {
		return
	}

	if l.push != nil {
		data := map[string]string{"orderId": record.OrderID, "type": record.Type}
		if err := l.push.Schedule(ctx, record.Title, record.Body, data); err != nil {
			l.log.Warn("fallo notificación de sistema", zap.String("notificationId", record.ID), zap.Error(err))
		}
	}
	if l.toasts != nil {
		l.toasts.Publish(record)
	}
}

func (l *NotificationLedger) GetAll(ctx context.Context) ([]model.NotificationRecord, error) {
	return l.repo.GetAll(ctx)
}

func (l *NotificationLedger) MarkRead(ctx context.Context, id string) error {
	return l.repo.MarkRead(ctx, id)
}

func (l *NotificationLedger) MarkAllRead(ctx context.Context) error {
	return l.repo.MarkAllRead(ctx)
}

// ClearAll vacía el log y resetea el historial de deduplicación.
func (l *NotificationLedger) ClearAll(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.repo.ClearAll(ctx); err != nil {
		return err
	}
	l.seen = make(map[string]bool)
	return nil
}

func (l *NotificationLedger) UnreadCount(ctx context.Context) (int, error) {
	return l.repo.UnreadCount(ctx)
}

func (l *NotificationLedger) GetPreferences(ctx context.Context) (model.Preferences, error) {
	return l.prefs.Get(ctx)
}

func (l *NotificationLedger) SavePreferences(ctx context.Context, prefs model.Preferences) error {
	return l.prefs.Save(ctx, prefs)
}
