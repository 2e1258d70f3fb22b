package dto

// PageRequest paginación para listados.
type PageRequest struct {
	Limit  int `query:"limit" validate:"min=1,max=100"`
	Offset int `query:"offset" validate:"min=0"`
}

// DefaultPage aplica valores por defecto si Limit/Offset son cero.
func (p *PageRequest) DefaultPage() {
	if p.Limit <= 0 {
		p.Limit = 20
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// ErrorResponse cuerpo de error HTTP. Shortages solo se llena cuando un check-in
// se rechaza por stock insuficiente (código INSUFFICIENT_STOCK).
type ErrorResponse struct {
	Code      string        `json:"code"`
	Message   string        `json:"message"`
	Shortages []ShortageDTO `json:"shortages,omitempty"`
}

// ShortageDTO línea faltante reportada al rechazar un check-in.
type ShortageDTO struct {
	ItemType  string `json:"item_type"`
	Color     string `json:"color"`
	Required  int64  `json:"required"`
	Available int64  `json:"available"`
}
