package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"catalogapi/internal/auth"
	"catalogapi/internal/config"
	"catalogapi/internal/db/dbtest"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Success         bool                `json:"success"`
	Message         string              `json:"message"`
	Data            json.RawMessage     `json:"data"`
	ValidationError map[string][]string `json:"validationError"`
}

type page struct {
	Items      []map[string]any `json:"items"`
	Pagination struct {
		TotalItems  int `json:"totalItems"`
		TotalPages  int `json:"totalPages"`
		CurrentPage int `json:"currentPage"`
		PageSize    int `json:"pageSize"`
	} `json:"pagination"`
}

type testAPI struct {
	router *gin.Engine
	tokens *auth.Tokens
	now    time.Time
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	a := &testAPI{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	a.tokens = auth.NewTokens("test-secret", time.Hour).WithClock(func() time.Time { return a.now })

	tick := 0
	router, err := NewRouter(Deps{
		Env:    config.Env{DBDriver: "sqlite", ExportMaxRows: 500, CORSAllowedOrigins: []string{"*"}},
		DB:     dbtest.Open(t),
		Tokens: a.tokens,
		Clock: func() time.Time {
			tick++
			return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(tick) * time.Second)
		},
	})
	require.NoError(t, err)
	a.router = router
	return a
}

func (a *testAPI) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
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
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, data any) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	if data != nil {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}

// register creates a user and returns its id and a login token.
func (a *testAPI) register(t *testing.T, email string) (string, string) {
	t.Helper()
	w := a.do(t, http.MethodPost, "/api/auth/register", "", map[string]any{
		"email": email, "password": "password123", "first_name": "Test", "last_name": "User",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var user map[string]any
	decode(t, w, &user)

	w = a.do(t, http.MethodPost, "/api/auth/login", "", map[string]any{"email": email, "password": "password123"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var login struct {
		Token string `json:"token"`
	}
	decode(t, w, &login)
	require.NotEmpty(t, login.Token)
	return user["id"].(string), login.Token
}

func TestRegisterLoginProfile(t *testing.T) {
	a := newTestAPI(t)
	id, token := a.register(t, "ann@example.com")

	w := a.do(t, http.MethodPost, "/api/auth/register", "", map[string]any{
		"email": "ann@example.com", "password": "password123", "first_name": "Again",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = a.do(t, http.MethodPost, "/api/auth/login", "", map[string]any{"email": "ann@example.com", "password": "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid credentials", decode(t, w, nil).Message)

	w = a.do(t, http.MethodGet, "/api/profile/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var me map[string]any
	env := decode(t, w, &me)
	assert.True(t, env.Success)
	assert.Equal(t, id, me["id"])
	assert.Equal(t, "ann@example.com", me["email"])
	assert.NotContains(t, w.Body.String(), "password")
}

func TestRegisterValidation(t *testing.T) {
	a := newTestAPI(t)
	w := a.do(t, http.MethodPost, "/api/auth/register", "", map[string]any{"email": "not-an-email", "password": "123"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	env := decode(t, w, nil)
	assert.False(t, env.Success)
	assert.Equal(t, "Validation failed", env.Message)
	assert.Contains(t, env.ValidationError, "email")
	assert.Contains(t, env.ValidationError, "password")
	assert.Contains(t, env.ValidationError, "first_name")
	assert.Equal(t, "null", string(env.Data))
}

func TestDeletedSubjectIsUnauthenticated(t *testing.T) {
	a := newTestAPI(t)
	id, token := a.register(t, "gone@example.com")

	w := a.do(t, http.MethodGet, "/api/profile/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = a.do(t, http.MethodDelete, "/api/users/"+id, token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	deleted := a.do(t, http.MethodGet, "/api/profile/me", token, nil)
	malformed := a.do(t, http.MethodGet, "/api/profile/me", "not.a.token", nil)
	assert.Equal(t, http.StatusUnauthorized, deleted.Code)
	assert.Equal(t, malformed.Body.String(), deleted.Body.String())
}

func TestExpiredTokenMatchesMalformed(t *testing.T) {
	a := newTestAPI(t)
	id, _ := a.register(t, "exp@example.com")

	short, err := a.tokens.IssueWithTTL(id, time.Millisecond)
	require.NoError(t, err)
	a.now = a.now.Add(2 * time.Second)

	expired := a.do(t, http.MethodGet, "/api/profile/me", short, nil)
	malformed := a.do(t, http.MethodGet, "/api/profile/me", "garbage", nil)
	missing := a.do(t, http.MethodGet, "/api/profile/me", "", nil)

	assert.Equal(t, http.StatusUnauthorized, expired.Code)
	assert.JSONEq(t, `{"success":false,"message":"Authentication invalid","data":null}`, expired.Body.String())
	assert.Equal(t, malformed.Body.String(), expired.Body.String())
	assert.Equal(t, missing.Body.String(), expired.Body.String())
}

func TestCategoryPagination(t *testing.T) {
	a := newTestAPI(t)
	_, token := a.register(t, "pager@example.com")

	for i := 1; i <= 23; i++ {
		w := a.do(t, http.MethodPost, "/api/categories", token, map[string]any{"name": fmt.Sprintf("cat-%02d", i)})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	var p page
	w := a.do(t, http.MethodGet, "/api/categories?page=3&limit=10", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &p)
	require.Len(t, p.Items, 3)
	assert.Equal(t, "cat-21", p.Items[0]["name"])
	assert.Equal(t, "cat-23", p.Items[2]["name"])
	assert.Equal(t, 23, p.Pagination.TotalItems)
	assert.Equal(t, 3, p.Pagination.TotalPages)
	assert.Equal(t, 3, p.Pagination.CurrentPage)
	assert.Equal(t, 10, p.Pagination.PageSize)

	withJunk := a.do(t, http.MethodGet, "/api/categories?page=3&limit=10&owner=me&sort=desc", token, nil)
	assert.Equal(t, w.Body.String(), withJunk.Body.String())

	invalid := a.do(t, http.MethodGet, "/api/categories?page=abc&limit=-4", token, nil)
	var first page
	decode(t, invalid, &first)
	assert.Equal(t, 1, first.Pagination.CurrentPage)
	assert.Equal(t, 10, first.Pagination.PageSize)
	assert.Equal(t, "cat-01", first.Items[0]["name"])
}

func TestHugePageAndLimit(t *testing.T) {
	a := newTestAPI(t)
	_, token := a.register(t, "huge@example.com")
	for i := 1; i <= 3; i++ {
		w := a.do(t, http.MethodPost, "/api/categories", token, map[string]any{"name": fmt.Sprintf("cat-%02d", i)})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	var p page
	w := a.do(t, http.MethodGet, "/api/categories?page=1000000000000000000&limit=10", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &p)
	assert.Empty(t, p.Items)
	assert.Equal(t, 3, p.Pagination.TotalItems)
	assert.Equal(t, 1, p.Pagination.TotalPages)
	assert.Equal(t, 1000000000000000000, p.Pagination.CurrentPage)

	w = a.do(t, http.MethodGet, "/api/categories?page=1&limit=9223372036854775807", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &p)
	assert.Len(t, p.Items, 3)
	assert.Equal(t, 1, p.Pagination.TotalPages)
	assert.Equal(t, 3, p.Pagination.TotalItems)
}

func TestEmptyListHasEmptyItems(t *testing.T) {
	a := newTestAPI(t)
	_, token := a.register(t, "empty@example.com")

	w := a.do(t, http.MethodGet, "/api/products?name=nothing", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"items":[]`)
	var p page
	decode(t, w, &p)
	assert.Equal(t, 0, p.Pagination.TotalItems)
	assert.Equal(t, 0, p.Pagination.TotalPages)
	assert.Equal(t, 1, p.Pagination.CurrentPage)
	assert.Equal(t, 10, p.Pagination.PageSize)
}

func TestUserStatusFilter(t *testing.T) {
	a := newTestAPI(t)
	_, token := a.register(t, "a@example.com")
	bID, _ := a.register(t, "b@example.com")
	a.register(t, "c@example.com")

	w := a.do(t, http.MethodPut, "/api/users/"+bID, token, map[string]any{"status": false})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	counts := map[string]int{"?status=true": 2, "?status=false": 1, "": 3, "?status=": 1}
	for query, want := range counts {
		var p page
		decode(t, a.do(t, http.MethodGet, "/api/users"+query, token, nil), &p)
		assert.Equal(t, want, p.Pagination.TotalItems, query)
	}

	var p page
	decode(t, a.do(t, http.MethodGet, "/api/users?email=B@EXAMPLE", token, nil), &p)
	require.Len(t, p.Items, 1)
	assert.Equal(t, bID, p.Items[0]["id"])
}

func TestProductPriceAndNameBounds(t *testing.T) {
	a := newTestAPI(t)
	_, token := a.register(t, "bounds@example.com")

	var category map[string]any
	w := a.do(t, http.MethodPost, "/api/categories", token, map[string]any{"name": "Tools"})
	require.Equal(t, http.StatusCreated, w.Code)
	decode(t, w, &category)
	categoryID := category["id"].(string)

	cases := []struct {
		name  string
		body  map[string]any
		field string
		msg   string
	}{
		{"too many decimals", map[string]any{"name": "Saw", "price": 1.239, "categoryId": categoryID}, "price", "price must have at most 2 decimal places"},
		{"above column range", map[string]any{"name": "Saw", "price": 1e10, "categoryId": categoryID}, "price", "price must be less than or equal to 9999999999.99"},
		{"blank name", map[string]any{"name": "   ", "price": 5, "categoryId": categoryID}, "name", "name is required"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := a.do(t, http.MethodPost, "/api/products", token, tc.body)
			require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.Equal(t, []string{tc.msg}, decode(t, w, nil).ValidationError[tc.field])
		})
	}

	w = a.do(t, http.MethodPost, "/api/products", token, map[string]any{"name": "Anvil", "price": 9999999999.99, "categoryId": categoryID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created map[string]any
	decode(t, w, &created)
	assert.Equal(t, 9999999999.99, created["price"])
	productID := created["id"].(string)

	w = a.do(t, http.MethodPut, "/api/products/"+productID, token, map[string]any{"price": 0.005})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w, nil).ValidationError, "price")

	w = a.do(t, http.MethodPut, "/api/products/"+productID, token, map[string]any{"name": " \t "})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []string{"name is required"}, decode(t, w, nil).ValidationError["name"])

	w = a.do(t, http.MethodPut, "/api/products/"+productID, token, map[string]any{"name": "  Big Anvil "})
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &created)
	assert.Equal(t, "Big Anvil", created["name"])

	w = a.do(t, http.MethodPost, "/api/categories", token, map[string]any{"name": "  "})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []string{"name is required"}, decode(t, w, nil).ValidationError["name"])

	w = a.do(t, http.MethodPut, "/api/categories/"+categoryID, token, map[string]any{"name": "\n"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []string{"name is required"}, decode(t, w, nil).ValidationError["name"])
}

func TestProductLifecycle(t *testing.T) {
	a := newTestAPI(t)
	ownerID, token := a.register(t, "seller@example.com")

	var category map[string]any
	w := a.do(t, http.MethodPost, "/api/categories", token, map[string]any{"name": "Shoes"})
	require.Equal(t, http.StatusCreated, w.Code)
	decode(t, w, &category)
	categoryID := category["id"].(string)

	w = a.do(t, http.MethodPost, "/api/products", token, map[string]any{"name": "Boot", "price": 10, "categoryId": "missing"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []string{"Category not found"}, decode(t, w, nil).ValidationError["categoryId"])

	w = a.do(t, http.MethodPost, "/api/products", token, map[string]any{"price": -1})
	require.Equal(t, http.StatusBadRequest, w.Code)
	env := decode(t, w, nil)
	assert.Contains(t, env.ValidationError, "name")
	assert.Contains(t, env.ValidationError, "price")
	assert.Contains(t, env.ValidationError, "categoryId")

	input := map[string]any{"name": "Trail Boot", "description": "waterproof", "price": 120.5, "categoryId": categoryID}
	w = a.do(t, http.MethodPost, "/api/products", token, input)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created map[string]any
	decode(t, w, &created)
	productID := created["id"].(string)

	var fetched map[string]any
	w = a.do(t, http.MethodGet, "/api/products/"+productID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &fetched)
	assert.Equal(t, input["name"], fetched["name"])
	assert.Equal(t, input["description"], fetched["description"])
	assert.Equal(t, input["price"], fetched["price"])
	assert.Equal(t, categoryID, fetched["category"].(map[string]any)["id"])
	assert.Equal(t, ownerID, fetched["user"].(map[string]any)["id"])

	w = a.do(t, http.MethodDelete, "/api/categories/"+categoryID, token, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = a.do(t, http.MethodPut, "/api/products/"+productID, token, map[string]any{"price": 99})
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &fetched)
	assert.Equal(t, 99.0, fetched["price"])
	assert.Equal(t, "Trail Boot", fetched["name"])

	w = a.do(t, http.MethodGet, "/api/products?categoryId="+categoryID+"&name=TRAIL", token, nil)
	var p page
	decode(t, w, &p)
	assert.Equal(t, 1, p.Pagination.TotalItems)

	w = a.do(t, http.MethodGet, "/api/products/export?name=trail", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "%PDF"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "PRODUCTS_")

	w = a.do(t, http.MethodDelete, "/api/products/"+productID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "null", string(decode(t, w, nil).Data))

	w = a.do(t, http.MethodGet, "/api/products/"+productID, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Product not found", decode(t, w, nil).Message)

	w = a.do(t, http.MethodDelete, "/api/categories/"+categoryID, token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSystemEndpoints(t *testing.T) {
	a := newTestAPI(t)

	w := a.do(t, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = a.do(t, http.MethodGet, "/api/db-check", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"users_in_db":0`)

	w = a.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")

	w = a.do(t, http.MethodGet, "/api/nowhere", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
