package repository

import "github.com/ntorres/acopio-api/internal/domain/entity"

// ProductRepository puerto de solo lectura sobre el catálogo de productos
// (el catálogo lo administra otra aplicación; aquí se consulta existencia
// y umbral de alerta).
type ProductRepository interface {
	GetByID(id string) (*entity.Product, error)
	List(limit, offset int) ([]*entity.Product, error)
}
