// dto.go
package dto

import "storefront-shipping-service/internal/model"

// CheckoutRequest crea una orden desde la API (el checkout por Rabbit usa el
// mismo shape dentro del mensaje).
type CheckoutRequest struct {
	Items     []model.OrderItem `json:"items" binding:"required,min=1"`
	Total     float64           `json:"total"`
	Address   *model.Address    `json:"address"`
	AddressID string            `json:"addressId"`
}

type PreferencesRequest struct {
	Email        *bool `json:"email"`
	Push         *bool `json:"push"`
	Promotions   *bool `json:"promotions"`
	OrderUpdates *bool `json:"orderUpdates"`
}

// Apply mezcla los campos presentes sobre las preferencias actuales.
func (r PreferencesRequest) Apply(prefs model.Preferences) model.Preferences {
	if r.Email != nil {
		prefs.Email = *r.Email
	}
	if r.Push != nil {
		prefs.Push = *r.Push
	}
	if r.Promotions != nil {
		prefs.Promotions = *r.Promotions
	}
	if r.OrderUpdates != nil {
		prefs.OrderUpdates = *r.OrderUpdates
	}
	return prefs
}
