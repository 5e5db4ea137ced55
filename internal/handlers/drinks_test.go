package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-authgate/coffeeshop/internal/config"
	"github.com/go-authgate/coffeeshop/internal/logger"
	"github.com/go-authgate/coffeeshop/internal/middleware"
	"github.com/go-authgate/coffeeshop/internal/models"
	"github.com/go-authgate/coffeeshop/internal/services"
	"github.com/go-authgate/coffeeshop/internal/store"
	"github.com/go-authgate/coffeeshop/internal/token"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tokenTable maps bearer tokens to their granted permissions.
type tokenTable map[string][]any

func (t tokenTable) Verify(_ context.Context, raw string) (token.Claims, error) {
	perms, ok := t[raw]
	if !ok {
		return nil, token.ErrTokenUnparseable
	}
	return token.Claims{"sub": "auth0|" + raw, "permissions": perms}, nil
}

var testTokens = tokenTable{
	"barista": {"get:drinks-detail"},
	"manager": {"get:drinks-detail", "post:drinks", "patch:drinks", "delete:drinks"},
	"nobody":  {},
}

func setupTestRouter(t *testing.T) (*gin.Engine, *store.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s, err := store.New(config.DatabaseDriverSQLite, filepath.Join(t.TempDir(), "drinks.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Reset())

	r := gin.New()
	r.Use(middleware.CORS([]string{"*"}))
	RegisterFallbacks(r)
	RegisterDrinkRoutes(r, NewDrinkHandler(services.NewDrinkService(s), nil), token.NewGate(testTokens))
	r.GET("/healthz", Health(s))
	return r, s
}

func doRequest(r *gin.Engine, method, path, bearer, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestGetDrinks_Public(t *testing.T) {
	r, _ := setupTestRouter(t)

	w := doRequest(r, http.MethodGet, "/drinks", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t,
		`[{"id":1,"title":"water","recipe":[{"color":"blue","parts":1}]}]`,
		mustMarshal(t, decode(t, w)["drinks"]))
}

func TestGetDrinks_Pagination(t *testing.T) {
	r, s := setupTestRouter(t)
	for _, title := range []string{"latte", "mocha", "chai"} {
		require.NoError(t, s.CreateDrink(&models.Drink{
			Title:  title,
			Recipe: []models.Ingredient{{Name: title, Color: "brown", Parts: 1}},
		}))
	}

	w := doRequest(r, http.MethodGet, "/drinks?page=2&page_size=3", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Len(t, body["drinks"], 1)
	pagination := body["pagination"].(map[string]any)
	assert.InDelta(t, 4, pagination["total"], 0)
	assert.InDelta(t, 2, pagination["current_page"], 0)
	assert.Equal(t, false, pagination["has_next"])
}

func TestGetDrinksDetail(t *testing.T) {
	r, _ := setupTestRouter(t)

	tests := []struct {
		name       string
		bearer     string
		wantStatus int
		wantCode   string
	}{
		{"granted", "barista", http.StatusOK, ""},
		{"no header", "", http.StatusUnauthorized, "authorization_header_missing"},
		{"bad token", "forged", http.StatusBadRequest, "token_unparseable"},
		{"not granted", "nobody", http.StatusForbidden, "no_permission"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(r, http.MethodGet, "/drinks-detail", tt.bearer, "")
			assert.Equal(t, tt.wantStatus, w.Code)
			body := decode(t, w)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, body["code"])
				return
			}
			assert.JSONEq(t,
				`[{"id":1,"title":"water","recipe":[{"name":"water","color":"blue","parts":1}]}]`,
				mustMarshal(t, body["drinks"]))
		})
	}
}

func TestCreateDrink(t *testing.T) {
	r, _ := setupTestRouter(t)

	tests := []struct {
		name       string
		bearer     string
		body       string
		wantStatus int
	}{
		{"created from list", "manager", `{"title":"latte","recipe":[{"name":"milk","color":"white","parts":3}]}`, http.StatusOK},
		{"created from object", "manager", `{"title":"espresso","recipe":{"name":"coffee","color":"black","parts":1}}`, http.StatusOK},
		{"duplicate title", "manager", `{"title":"water","recipe":{"name":"water","color":"blue","parts":1}}`, http.StatusUnprocessableEntity},
		{"missing recipe", "manager", `{"title":"tea"}`, http.StatusBadRequest},
		{"missing title", "manager", `{"recipe":{"name":"tea","color":"amber","parts":1}}`, http.StatusBadRequest},
		{"malformed json", "manager", `{"title":`, http.StatusBadRequest},
		{"forbidden", "barista", `{"title":"tea","recipe":{"name":"tea","color":"amber","parts":1}}`, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(r, http.MethodPost, "/drinks", tt.bearer, tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)

			body := decode(t, w)
			switch tt.wantStatus {
			case http.StatusOK:
				assert.Equal(t, true, body["success"])
				assert.Len(t, body["drinks"], 1)
			case http.StatusForbidden:
				assert.Equal(t, "no_permission", body["code"])
			default:
				assert.Equal(t, false, body["success"])
				assert.InDelta(t, tt.wantStatus, body["error"], 0)
			}
		})
	}
}

func TestUpdateDrink(t *testing.T) {
	r, s := setupTestRouter(t)

	w := doRequest(r, http.MethodPatch, "/drinks/1", "manager", `{"title":"sparkling water"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t,
		`[{"id":1,"title":"sparkling water","recipe":[{"name":"water","color":"blue","parts":1}]}]`,
		mustMarshal(t, decode(t, w)["drinks"]))

	drink, err := s.GetDrink(1)
	require.NoError(t, err)
	assert.Equal(t, "sparkling water", drink.Title)

	assert.Equal(t, http.StatusNotFound, doRequest(r, http.MethodPatch, "/drinks/99", "manager", `{"title":"x"}`).Code)
	assert.Equal(t, http.StatusNotFound, doRequest(r, http.MethodPatch, "/drinks/abc", "manager", `{"title":"x"}`).Code)
	assert.Equal(t, http.StatusBadRequest, doRequest(r, http.MethodPatch, "/drinks/1", "manager", `{"recipe":"x"}`).Code)
	assert.Equal(t, http.StatusForbidden, doRequest(r, http.MethodPatch, "/drinks/1", "barista", `{"title":"x"}`).Code)
}

func TestDeleteDrink(t *testing.T) {
	r, s := setupTestRouter(t)

	assert.Equal(t, http.StatusForbidden, doRequest(r, http.MethodDelete, "/drinks/1", "barista", "").Code)
	_, err := s.GetDrink(1)
	require.NoError(t, err, "a denied request must not touch the store")

	w := doRequest(r, http.MethodDelete, "/drinks/1", "manager", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"delete":1}`, w.Body.String())

	_, err = s.GetDrink(1)
	assert.True(t, errors.Is(err, store.ErrNotFound))

	w = doRequest(r, http.MethodDelete, "/drinks/1", "manager", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"success":false,"error":404,"message":"resource not found"}`, w.Body.String())
}

func TestFallbacks(t *testing.T) {
	r, _ := setupTestRouter(t)

	w := doRequest(r, http.MethodGet, "/coffee", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"success":false,"error":404,"message":"resource not found"}`, w.Body.String())

	w = doRequest(r, http.MethodPut, "/drinks", "", "")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.JSONEq(t, `{"success":false,"error":405,"message":"method not allowed"}`, w.Body.String())

	w = doRequest(r, http.MethodOptions, "/drinks", "", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestHealth(t *testing.T) {
	r, _ := setupTestRouter(t)

	w := doRequest(r, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["status"])
}

func Test_parseDrinkID(t *testing.T) {
	tests := []struct {
		input  string
		want   uint
		wantOK bool
	}{
		{"1", 1, true},
		{"42", 42, true},
		{"0", 0, false},
		{"-1", 0, false},
		{"abc", 0, false},
		{"", 0, false},
		{"1.5", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := parseDrinkID(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func mustMarshal(t *testing.T, v any) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(v))
	return buf.String()
}

func TestDeleteDrink_LogsTokenSubject(t *testing.T) {
	gin.SetMode(gin.TestMode)
	s, err := store.New(config.DatabaseDriverSQLite, filepath.Join(t.TempDir(), "drinks.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Reset())

	var buf bytes.Buffer
	r := gin.New()
	RegisterDrinkRoutes(r, NewDrinkHandler(services.NewDrinkService(s), logger.New(&buf, "info")), token.NewGate(testTokens))

	w := doRequest(r, http.MethodDelete, "/drinks/1", "manager", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, buf.String(), `msg="drink deleted"`)
	assert.Contains(t, buf.String(), "sub=auth0|manager")
}
