package entity

// ItemClass distingue productos terminados de repuestos; cada clase tiene su propio
// libro de movimientos y su propia tabla resumen.
type ItemClass string

const (
	ItemClassProduct ItemClass = "product"
	ItemClassSpare   ItemClass = "spare"
)

// Valid indica si la clase es una de las conocidas.
func (c ItemClass) Valid() bool {
	return c == ItemClassProduct || c == ItemClassSpare
}

func (c ItemClass) String() string { return string(c) }
