package models

import (
	"golang.org/x/crypto/bcrypt"
)

// Usuario represents an application user stored in the usuarios table.
// Password holds the bcrypt hash and is never serialized. Cuestiones
// carries the ids of the questions the user created, loaded alongside
// the row.
type Usuario struct {
	ID         int64   `db:"id"`
	Username   string  `db:"username"`
	Email      string  `db:"email"`
	Password   string  `db:"password"`
	Enabled    bool    `db:"enabled"`
	IsMaestro  bool    `db:"master"`
	IsAdmin    bool    `db:"admin"`
	Cuestiones []int64 `db:"-"`
}

// NewUsuario builds a user from a plaintext password, which is hashed
// immediately and discarded.
func NewUsuario(username, email, password string, enabled, isMaestro, isAdmin bool) (*Usuario, error) {
	u := &Usuario{
		Username:   username,
		Email:      email,
		Enabled:    enabled,
		IsMaestro:  isMaestro,
		IsAdmin:    isAdmin,
		Cuestiones: []int64{},
	}
	if err := u.SetPassword(password); err != nil {
		return nil, err
	}
	return u, nil
}

// SetPassword re-hashes and stores the given plaintext password.
func (u *Usuario) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hash)
	return nil
}

// ValidatePassword compares the plaintext against the stored hash.
func (u *Usuario) ValidatePassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) == nil
}

// UsuarioDoc is the canonical JSON projection of a user. Related
// questions are referenced by id only.
type UsuarioDoc struct {
	ID         int64   `json:"id"`
	Username   string  `json:"username"`
	Email      string  `json:"email"`
	Enabled    bool    `json:"enabled"`
	Maestro    bool    `json:"maestro"`
	Admin      bool    `json:"admin"`
	Cuestiones []int64 `json:"cuestiones"`
}

// UsuarioEnvelope nests the projection under the wrapper key.
type UsuarioEnvelope struct {
	Usuario UsuarioDoc `json:"usuario"`
}

// Envelope returns the `{"usuario": {...}}` projection.
func (u *Usuario) Envelope() UsuarioEnvelope {
	cuestiones := u.Cuestiones
	if cuestiones == nil {
		cuestiones = []int64{}
	}
	return UsuarioEnvelope{Usuario: UsuarioDoc{
		ID:         u.ID,
		Username:   u.Username,
		Email:      u.Email,
		Enabled:    u.Enabled,
		Maestro:    u.IsMaestro,
		Admin:      u.IsAdmin,
		Cuestiones: cuestiones,
	}}
}

// UsuariosList wraps a user collection.
type UsuariosList struct {
	Usuarios []UsuarioEnvelope `json:"usuarios"`
}

// NewUsuariosList projects a slice of users into the collection wrapper.
func NewUsuariosList(usuarios []Usuario) UsuariosList {
	list := UsuariosList{Usuarios: make([]UsuarioEnvelope, 0, len(usuarios))}
	for i := range usuarios {
		list.Usuarios = append(list.Usuarios, usuarios[i].Envelope())
	}
	return list
}
