package models

import "errors"

// Estado is the two-value question lifecycle state.
type Estado string

const (
	EstadoAbierta Estado = "abierta"
	EstadoCerrada Estado = "cerrada"
)

// ErrCreadorNoMaestro signals the teacher invariant: a question creator
// must have the maestro flag set.
var ErrCreadorNoMaestro = errors.New("el creador debe ser maestro")

// Cuestion represents a question stored in the cuestiones table.
// Creador is nullable: deleting a teacher detaches their questions
// instead of removing them. Categorias holds the associated category
// ids in ascending order.
type Cuestion struct {
	ID          int64   `db:"id"`
	Descripcion *string `db:"enum_descripcion"`
	Disponible  bool    `db:"enum_disponible"`
	Creador     *int64  `db:"creador"`
	Estado      Estado  `db:"estado"`
	Categorias  []int64 `db:"-"`
}

// NewCuestion builds a question. The state always initializes to
// cerrada. A non-nil creator must be maestro.
func NewCuestion(descripcion *string, creador *Usuario, disponible bool) (*Cuestion, error) {
	c := &Cuestion{
		Descripcion: descripcion,
		Disponible:  disponible,
		Estado:      EstadoCerrada,
		Categorias:  []int64{},
	}
	if creador != nil {
		if err := c.SetCreador(creador); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// SetCreador assigns the creator, enforcing the maestro invariant.
func (c *Cuestion) SetCreador(creador *Usuario) error {
	if creador != nil && !creador.IsMaestro {
		return ErrCreadorNoMaestro
	}
	if creador == nil {
		c.Creador = nil
		return nil
	}
	id := creador.ID
	c.Creador = &id
	return nil
}

// Abrir transitions the question to abierta.
func (c *Cuestion) Abrir() {
	c.Estado = EstadoAbierta
}

// Cerrar transitions the question to cerrada.
func (c *Cuestion) Cerrar() {
	c.Estado = EstadoCerrada
}

// ApplyEstado performs a transition only when the raw value matches one
// of the two state literals exactly; anything else is ignored.
func (c *Cuestion) ApplyEstado(raw string) {
	switch Estado(raw) {
	case EstadoAbierta:
		c.Abrir()
	case EstadoCerrada:
		c.Cerrar()
	}
}

// ContainsCategoria reports membership of a category id.
func (c *Cuestion) ContainsCategoria(categoriaID int64) bool {
	for _, id := range c.Categorias {
		if id == categoriaID {
			return true
		}
	}
	return false
}

// AddCategoria adds a category id; adding a present one is a no-op.
func (c *Cuestion) AddCategoria(categoriaID int64) *Cuestion {
	if c.ContainsCategoria(categoriaID) {
		return c
	}
	c.Categorias = append(c.Categorias, categoriaID)
	return c
}

// RemoveCategoria removes a category id. The boolean distinguishes a
// removal from the no-op on an absent member.
func (c *Cuestion) RemoveCategoria(categoriaID int64) bool {
	for i, id := range c.Categorias {
		if id == categoriaID {
			c.Categorias = append(c.Categorias[:i], c.Categorias[i+1:]...)
			return true
		}
	}
	return false
}

// CuestionDoc is the canonical JSON projection of a question. Creator
// and categories are referenced by id, never embedded.
type CuestionDoc struct {
	IDCuestion           int64   `json:"idCuestion"`
	EnunciadoDescripcion *string `json:"enunciadoDescripcion"`
	EnunciadoDisponible  bool    `json:"enunciadoDisponible"`
	Creador              *int64  `json:"creador"`
	Estado               Estado  `json:"estado"`
	Categorias           []int64 `json:"categorias"`
}

// CuestionEnvelope nests the projection under the wrapper key.
type CuestionEnvelope struct {
	Cuestion CuestionDoc `json:"cuestion"`
}

// Envelope returns the `{"cuestion": {...}}` projection.
func (c *Cuestion) Envelope() CuestionEnvelope {
	categorias := c.Categorias
	if categorias == nil {
		categorias = []int64{}
	}
	return CuestionEnvelope{Cuestion: CuestionDoc{
		IDCuestion:           c.ID,
		EnunciadoDescripcion: c.Descripcion,
		EnunciadoDisponible:  c.Disponible,
		Creador:              c.Creador,
		Estado:               c.Estado,
		Categorias:           categorias,
	}}
}

// CuestionesList wraps a question collection.
type CuestionesList struct {
	Cuestiones []CuestionEnvelope `json:"cuestiones"`
}

// NewCuestionesList projects a slice of questions into the collection
// wrapper.
func NewCuestionesList(cuestiones []Cuestion) CuestionesList {
	list := CuestionesList{Cuestiones: make([]CuestionEnvelope, 0, len(cuestiones))}
	for i := range cuestiones {
		list.Cuestiones = append(list.Cuestiones, cuestiones[i].Envelope())
	}
	return list
}
