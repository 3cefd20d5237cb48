package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/laucv/gcuest-api/internal/models"
	"github.com/laucv/gcuest-api/internal/service"
)

type fakeUserStore struct {
	users  map[int64]*models.Usuario
	nextID int64
}

func (f *fakeUserStore) FindByID(ctx context.Context, id int64) (*models.Usuario, error) {
	if u, ok := f.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeUserStore) FindByUsername(ctx context.Context, username string) (*models.Usuario, error) {
	for _, u := range f.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeUserStore) FindByEmail(ctx context.Context, email string) (*models.Usuario, error) {
	for _, u := range f.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeUserStore) List(ctx context.Context) ([]models.Usuario, error) {
	ids := make([]int64, 0, len(f.users))
	for id := range f.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]models.Usuario, 0, len(ids))
	for _, id := range ids {
		out = append(out, *f.users[id])
	}
	return out, nil
}

func (f *fakeUserStore) Create(ctx context.Context, user *models.Usuario) error {
	f.nextID++
	user.ID = f.nextID
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserStore) Update(ctx context.Context, user *models.Usuario) error {
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserStore) Delete(ctx context.Context, id int64) error {
	if _, ok := f.users[id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.users, id)
	return nil
}

type fakeQuestionStore struct {
	cuestiones map[int64]*models.Cuestion
	nextID     int64
}

func (f *fakeQuestionStore) FindByID(ctx context.Context, id int64) (*models.Cuestion, error) {
	if c, ok := f.cuestiones[id]; ok {
		copied := *c
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeQuestionStore) List(ctx context.Context) ([]models.Cuestion, error) {
	ids := make([]int64, 0, len(f.cuestiones))
	for id := range f.cuestiones {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]models.Cuestion, 0, len(ids))
	for _, id := range ids {
		out = append(out, *f.cuestiones[id])
	}
	return out, nil
}

func (f *fakeQuestionStore) ListByCreador(ctx context.Context, creadorID int64) ([]models.Cuestion, error) {
	all, _ := f.List(ctx)
	out := make([]models.Cuestion, 0, len(all))
	for _, c := range all {
		if c.Creador != nil && *c.Creador == creadorID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeQuestionStore) Create(ctx context.Context, cuestion *models.Cuestion) error {
	f.nextID++
	cuestion.ID = f.nextID
	if cuestion.Categorias == nil {
		cuestion.Categorias = []int64{}
	}
	f.cuestiones[cuestion.ID] = cuestion
	return nil
}

func (f *fakeQuestionStore) Update(ctx context.Context, cuestion *models.Cuestion) error {
	f.cuestiones[cuestion.ID] = cuestion
	return nil
}

func (f *fakeQuestionStore) Delete(ctx context.Context, id int64) error {
	if _, ok := f.cuestiones[id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.cuestiones, id)
	return nil
}

func (f *fakeQuestionStore) AddCategoria(ctx context.Context, cuestionID, categoriaID int64) (bool, error) {
	return true, nil
}

func (f *fakeQuestionStore) RemoveCategoria(ctx context.Context, cuestionID, categoriaID int64) (bool, error) {
	return false, nil
}

type fakeCategoryStore struct{}

func (f *fakeCategoryStore) FindByID(ctx context.Context, id int64) (*models.Categoria, error) {
	return nil, sql.ErrNoRows
}

type apiFixture struct {
	router *gin.Engine
	users  *fakeUserStore
}

func mustUsuario(t *testing.T, id int64, username, email string, maestro, admin bool) *models.Usuario {
	t.Helper()
	u, err := models.NewUsuario(username, email, "secret", true, maestro, admin)
	require.NoError(t, err)
	u.ID = id
	u.Cuestiones = []int64{}
	return u
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	users := &fakeUserStore{users: map[int64]*models.Usuario{}, nextID: 10}
	users.users[1] = mustUsuario(t, 1, "admin", "admin@example.com", true, true)
	users.users[7] = mustUsuario(t, 7, "maestra", "maestra@example.com", true, false)
	users.users[2] = mustUsuario(t, 2, "alumno", "alumno@example.com", false, false)

	questions := &fakeQuestionStore{cuestiones: map[int64]*models.Cuestion{}, nextID: 20}

	authSvc := service.NewAuthService(users, zap.NewNop(), service.AuthConfig{
		Secret:     "test_secret",
		Expiration: time.Hour,
	})
	userSvc := service.NewUserService(users, validator.New(), zap.NewNop())
	questionSvc := service.NewQuestionService(questions, users, &fakeCategoryStore{}, zap.NewNop())

	router := NewRouter(RouterConfig{RutaAPI: "/api/v1", RutaLogin: "/login"}, zap.NewNop(), Services{
		Auth:      authSvc,
		Users:     userSvc,
		Questions: questionSvc,
	})

	return &apiFixture{router: router, users: users}
}

func (f *apiFixture) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *apiFixture) login(t *testing.T, username, password string) string {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/login", "", gin.H{"_username": username, "_password": password})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, rec.Header().Get("X-Token"))

	var body struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body.Token)
	require.Equal(t, body.Token, rec.Header().Get("X-Token"))
	return body.Token
}

func TestRouterLogin(t *testing.T) {
	f := newAPIFixture(t)

	token := f.login(t, "admin", "secret")
	assert.NotEmpty(t, token)

	rec := f.do(t, http.MethodPost, "/login", "", gin.H{"_username": "admin", "_password": "wrong"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var errBody struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errBody))
	assert.Equal(t, http.StatusNotFound, errBody.Code)
	assert.NotEmpty(t, errBody.Message)
}

func TestRouterRequiresToken(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodGet, "/api/v1/users", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/questions", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouterXTokenHeaderFallback(t *testing.T) {
	f := newAPIFixture(t)
	token := f.login(t, "admin", "secret")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	req.Header.Set("X-Token", token)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouterUsernameProbeIsPassthrough(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodGet, "/api/v1/users/username/maestra", "", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/users/username/nadie", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouterOptionsAllowHeaders(t *testing.T) {
	f := newAPIFixture(t)

	for path, allow := range map[string]string{
		"/api/v1/users":       "GET, POST",
		"/api/v1/users/1":     "GET, PUT, DELETE",
		"/api/v1/questions":   "GET, POST",
		"/api/v1/questions/1": "GET, PUT, DELETE",
	} {
		rec := f.do(t, http.MethodOptions, path, "", nil)
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, allow, rec.Header().Get("Allow"), path)
	}
}

func TestRouterCORSHeadersAlwaysPresent(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodGet, "/api/v1/users", "", nil)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = f.do(t, http.MethodOptions, "/api/v1/users", "", nil)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouterMethodNotAllowed(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodPatch, "/api/v1/users/1", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRouterUnknownRoute(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodGet, "/api/v1/nada", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouterHealth(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouterUserCRUD(t *testing.T) {
	f := newAPIFixture(t)
	admin := f.login(t, "admin", "secret")

	rec := f.do(t, http.MethodGet, "/api/v1/users", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Usuarios []json.RawMessage `json:"usuarios"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list.Usuarios, 3)

	rec = f.do(t, http.MethodPost, "/api/v1/users", admin, gin.H{
		"username": "nuevo", "email": "nuevo@example.com", "password": "secret",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		Usuario struct {
			ID       int64  `json:"id"`
			Username string `json:"username"`
			Enabled  bool   `json:"enabled"`
		} `json:"usuario"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "nuevo", created.Usuario.Username)
	assert.True(t, created.Usuario.Enabled)

	email := "renombrado@example.com"
	rec = f.do(t, http.MethodPut, fmt.Sprintf("/api/v1/users/%d", created.Usuario.ID), admin, gin.H{"email": email})
	require.Equal(t, 209, rec.Code)
	var updated struct {
		Usuario struct {
			Email string `json:"email"`
		} `json:"usuario"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, email, updated.Usuario.Email)

	rec = f.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/users/%d", created.Usuario.ID), admin, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/users/%d", created.Usuario.ID), admin, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouterUserCreateErrors(t *testing.T) {
	f := newAPIFixture(t)
	admin := f.login(t, "admin", "secret")
	alumno := f.login(t, "alumno", "secret")

	rec := f.do(t, http.MethodPost, "/api/v1/users", alumno, gin.H{
		"username": "x", "email": "x@example.com", "password": "secret",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/users", admin, gin.H{"username": "solo"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/users", admin, gin.H{
		"username": "maestra", "email": "otra@example.com", "password": "secret",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouterUserAccessControl(t *testing.T) {
	f := newAPIFixture(t)
	admin := f.login(t, "admin", "secret")
	alumno := f.login(t, "alumno", "secret")

	rec := f.do(t, http.MethodGet, "/api/v1/users/7", alumno, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/users/7", admin, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/users/2", alumno, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouterQuestionLifecycle(t *testing.T) {
	f := newAPIFixture(t)
	maestra := f.login(t, "maestra", "secret")

	rec := f.do(t, http.MethodPost, "/api/v1/questions", maestra, gin.H{
		"enunciadoDescripcion": "¿Capital de Francia?",
		"creador":              7,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	createdBody := rec.Body.Bytes()

	var created struct {
		Cuestion struct {
			ID     int64  `json:"idCuestion"`
			Estado string `json:"estado"`
		} `json:"cuestion"`
	}
	require.NoError(t, json.Unmarshal(createdBody, &created))
	assert.Equal(t, "cerrada", created.Cuestion.Estado)

	// The stored representation round-trips unchanged.
	rec = f.do(t, http.MethodGet, fmt.Sprintf("/api/v1/questions/%d", created.Cuestion.ID), maestra, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, string(createdBody), rec.Body.String())

	rec = f.do(t, http.MethodPut, fmt.Sprintf("/api/v1/questions/%d", created.Cuestion.ID), maestra, gin.H{
		"estado": "abierta",
	})
	require.Equal(t, 209, rec.Code)
	var updated struct {
		Cuestion struct {
			Estado string `json:"estado"`
		} `json:"cuestion"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "abierta", updated.Cuestion.Estado)

	rec = f.do(t, http.MethodPut, fmt.Sprintf("/api/v1/questions/%d", created.Cuestion.ID), maestra, gin.H{
		"estado": "suspendida",
	})
	require.Equal(t, 209, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "abierta", updated.Cuestion.Estado)

	rec = f.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/questions/%d", created.Cuestion.ID), maestra, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/questions/%d", created.Cuestion.ID), maestra, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouterQuestionRoleRules(t *testing.T) {
	f := newAPIFixture(t)
	alumno := f.login(t, "alumno", "secret")
	maestra := f.login(t, "maestra", "secret")

	rec := f.do(t, http.MethodPost, "/api/v1/questions", alumno, gin.H{
		"enunciadoDescripcion": "no deberia",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/questions", maestra, gin.H{
		"enunciadoDescripcion": "con creador alumno",
		"creador":              2,
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// An empty collection for this caller is a 404.
	rec = f.do(t, http.MethodGet, "/api/v1/questions", alumno, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
