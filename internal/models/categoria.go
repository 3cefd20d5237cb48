package models

// Categoria groups questions. Cuestiones holds the associated question
// ids; membership is kept symmetric with Cuestion.Categorias through
// the join table.
type Categoria struct {
	ID         int64   `db:"id"`
	Nombre     *string `db:"nombre_categoria"`
	Disponible bool    `db:"disponible"`
	Cuestiones []int64 `db:"-"`
}

// NewCategoria builds a category, available by default.
func NewCategoria(nombre *string, disponible bool) *Categoria {
	return &Categoria{
		Nombre:     nombre,
		Disponible: disponible,
		Cuestiones: []int64{},
	}
}

// ContainsCuestion reports membership of a question id.
func (c *Categoria) ContainsCuestion(cuestionID int64) bool {
	for _, id := range c.Cuestiones {
		if id == cuestionID {
			return true
		}
	}
	return false
}

// AddCuestion adds a question id; adding a present one is a no-op.
func (c *Categoria) AddCuestion(cuestionID int64) *Categoria {
	if c.ContainsCuestion(cuestionID) {
		return c
	}
	c.Cuestiones = append(c.Cuestiones, cuestionID)
	return c
}

// RemoveCuestion removes a question id. The boolean distinguishes a
// removal from the no-op on an absent member.
func (c *Categoria) RemoveCuestion(cuestionID int64) bool {
	for i, id := range c.Cuestiones {
		if id == cuestionID {
			c.Cuestiones = append(c.Cuestiones[:i], c.Cuestiones[i+1:]...)
			return true
		}
	}
	return false
}
