package watermark

import "errors"

// Ошибки хранилищ watermark'ов.
var (
	// ErrNotFound — watermark для ключа не найден.
	ErrNotFound = errors.New("watermark not found")

	// ErrEmptyKey — пустой ключ.
	ErrEmptyKey = errors.New("empty watermark key")
)
