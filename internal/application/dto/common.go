package dto

import "github.com/jhoicas/storefront-inventory/internal/domain"

// Límites de paginación compartidos por los listados.
const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// PageRequest paginación para listados.
type PageRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

// Normalize aplica los valores por defecto: Limit 0 usa DefaultPageLimit y uno mayor a
// MaxPageLimit se recorta. Limit u Offset negativos son ErrInvalidInput.
func (p *PageRequest) Normalize() error {
	if p.Limit < 0 || p.Offset < 0 {
		return domain.ErrInvalidInput
	}
	if p.Limit == 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	return nil
}

// PageResponse metadatos de página en respuestas.
type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total"`
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
