package entity

import "time"

// Customer representa un cliente al que se le emiten cotizaciones.
type Customer struct {
	ID        string
	Name      string
	Email     string
	Phone     string
	Company   string // razón social del cliente (opcional)
	CreatedAt time.Time
}
