package storage

import (
	"errors"

	"github.com/lib/pq"
)

var (
	// Запись с таким ключом уже есть (хэш статьи, url источника, имя категории)
	ErrDuplicate = errors.New("already exists")
	ErrNotFound  = errors.New("not found")
)

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
