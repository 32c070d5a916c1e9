// Package kv define el colaborador de persistencia local: un almacén
// clave-valor donde cada colección vive como un blob JSON bajo una clave fija.
package kv

import "context"

// Store es el contrato mínimo que necesitan los repositorios.
// GetItem devuelve ok=false cuando la clave no existe (sin error).
type Store interface {
	GetItem(ctx context.Context, key string) (value string, ok bool, err error)
	SetItem(ctx context.Context, key, value string) error
}
