// Package kv abstrae el almacenamiento clave-valor local donde persiste el
// expediente: un directorio de archivos JSON por defecto, o Redis si esta
// configurado. El contrato es el mismo en ambos casos.
package kv

import "context"

// KV es un almacen clave-valor con semantica "ausente no es error".
type KV interface {
	// Get devuelve el valor y true si la clave existe.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	// Delete es idempotente: borrar una clave ausente no es error.
	Delete(ctx context.Context, key string) error
}
