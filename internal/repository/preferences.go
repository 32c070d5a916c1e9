package repository

import (
	"context"
	"encoding/json"

	"storefront-shipping-service/internal/kv"
	"storefront-shipping-service/internal/model"
)

const preferencesKey = "notification_preferences"

// PreferenceRepository guarda las preferencias de notificación bajo su
// propia clave. Un blob ausente o corrupto devuelve los valores por defecto.
type PreferenceRepository struct {
	store kv.Store
}

func NewPreferenceRepository(store kv.Store) *PreferenceRepository {
	return &PreferenceRepository{store: store}
}

func (r *PreferenceRepository) Get(ctx context.Context) (model.Preferences, error) {
	prefs := model.DefaultPreferences()

	raw, ok, err := r.store.GetItem(ctx, preferencesKey)
	if err != nil {
		return prefs, err
	}
	if !ok || raw == "" {
		return prefs, nil
	}
	if err := json.Unmarshal([]byte(raw), &prefs); err != nil {
		return model.DefaultPreferences(), nil
	}
	return prefs, nil
}

func (r *PreferenceRepository) Save(ctx context.Context, prefs model.Preferences) error {
	data, err := json.Marshal(prefs)
	if err != nil {
		return err
	}
	return r.store.SetItem(ctx, preferencesKey, string(data))
}
