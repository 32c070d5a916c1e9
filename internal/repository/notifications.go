package repository

import (
	"context"
	"encoding/json"

	"storefront-shipping-service/internal/kv"
	"storefront-shipping-service/internal/model"
)

const notificationsKey = "notifications"

// NotificationRepository persiste el log de notificaciones como un blob JSON
// bajo una única clave, con la más reciente primero.
type NotificationRepository struct {
	store kv.Store
}

func NewNotificationRepository(store kv.Store) *NotificationRepository {
	return &NotificationRepository{store: store}
}

func (r *NotificationRepository) load(ctx context.Context) ([]model.NotificationRecord, error) {
	raw, ok, err := r.store.GetItem(ctx, notificationsKey)
	if err != nil {
		return nil, err
	}
	if !ok || raw == "" {
		return []model.NotificationRecord{}, nil
	}

	var list []model.NotificationRecord
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return []model.NotificationRecord{}, nil
	}
	return list, nil
}

func (r *NotificationRepository) save(ctx context.Context, list []model.NotificationRecord) error {
	data, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return r.store.SetItem(ctx, notificationsKey, string(data))
}

func (r *NotificationRepository) GetAll(ctx context.Context) ([]model.NotificationRecord, error) {
	return r.load(ctx)
}

// Add antepone el registro a la lista persistida.
func (r *NotificationRepository) Add(ctx context.Context, record model.NotificationRecord) error {
	list, err := r.load(ctx)
	if err != nil {
		return err
	}
	next := append([]model.NotificationRecord{record}, list...)
	return r.save(ctx, next)
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id string) error {
	list, err := r.load(ctx)
	if err != nil {
		return err
	}
	for i := range list {
		if list[i].ID == id {
			list[i].Read = true
		}
	}
	return r.save(ctx, list)
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context) error {
	list, err := r.load(ctx)
	if err != nil {
		return err
	}
	for i := range list {
		list[i].Read = true
	}
	return r.save(ctx, list)
}

func (r *NotificationRepository) ClearAll(ctx context.Context) error {
	return r.save(ctx, []model.NotificationRecord{})
}

func (r *NotificationRepository) UnreadCount(ctx context.Context) (int, error) {
	list, err := r.load(ctx)
	if err != nil {
		return 0, err
	}
	count := 0
	for i := range list {
		if !list[i].Read {
			count++
		}
	}
	return count, nil
}
