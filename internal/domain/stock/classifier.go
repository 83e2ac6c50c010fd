package stock

import (
	"unicode"

	"github.com/jhoicas/dispatch-api/internal/domain/entity"
)

// ClassifyItemCode aplica la regla heredada: un código con alguna letra es producto,
// uno solo numérico es repuesto. Solo se usa cuando la fila no trae la clase explícita.
func ClassifyItemCode(code string) entity.ItemClass {
	for _, r := range code {
		if unicode.IsLetter(r) {
			return entity.ItemClassProduct
		}
	}
	return entity.ItemClassSpare
}

// ResolveClass devuelve la clase explícita si es válida o la deducida del código.
func ResolveClass(class entity.ItemClass, code string) entity.ItemClass {
	if class.Valid() {
		return class
	}
	return ClassifyItemCode(code)
}
