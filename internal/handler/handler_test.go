package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"storefront-service/internal/apperr"
	"storefront-service/internal/middleware"
	"storefront-service/internal/repository/memory"
	"storefront-service/internal/service"
	"storefront-service/pkg/jwtutil"
	"storefront-service/pkg/password"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const securityKey = "sesame"

type api struct {
	t *testing.T
	e *echo.Echo
}

func newAPI(t *testing.T) *api {
	t.Helper()

	repos := memory.New().Repositories()
	tokens := jwtutil.NewJWTUtil(&jwtutil.JWTConfig{SigningKey: "k", ExpirationHours: 720})
	accounts := service.NewAccountService(repos.Users, password.NewBcryptHasher(bcrypt.MinCost), tokens)

	return &api{t: t, e: NewRouter(Services{
		Resolver: service.NewResolver(repos.Stores),
		Gate:     service.NewGate(tokens, repos.Users, securityKey),
		Stores:   service.NewStoreService(repos.Stores, accounts, tokens),
		Accounts: accounts,
		Catalog:  service.NewCatalog(repos.Categories),
	})}
}

type response struct {
	code int
	body map[string]interface{}
}

func (a *api) do(method, path, body string, headers map[string]string) response {
	a.t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)

	res := response{code: rec.Code}
	if strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &res.body))
	}
	return res
}

// createStore creates a store with an administrator and returns the admin token
func (a *api) createStore(name string) string {
	a.t.Helper()
	res := a.do(http.MethodPost, "/api/store/"+name,
		`{"admin":{"user_id":"root","email":"root@`+name+`.test","password":"pw","confirm_password":"pw"}}`,
		map[string]string{middleware.HeaderSecurityKey: securityKey})
	require.Equal(a.t, http.StatusCreated, res.code, res.body)
	return res.body["token"].(string)
}

func scoped(store, token string) map[string]string {
	h := map[string]string{middleware.HeaderStoreName: store}
	if token != "" {
		h[echo.HeaderAuthorization] = "Bearer " + token
	}
	return h
}

func TestHealthCheck(t *testing.T) {
	a := newAPI(t)
	res := a.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, res.code)
	assert.Equal(t, "healthy", res.body["status"])
}

func TestStoreAdministration(t *testing.T) {
	a := newAPI(t)

	res := a.do(http.MethodPost, "/api/store/acme", "", nil)
	assert.Equal(t, http.StatusBadRequest, res.code)
	assert.Equal(t, StatusFailure, res.body["status"])

	res = a.do(http.MethodPost, "/api/store/acme", "", map[string]string{middleware.HeaderSecurityKey: "guess"})
	assert.Equal(t, http.StatusUnauthorized, res.code)

	token := a.createStore("acme")
	assert.NotEmpty(t, token)

	res = a.do(http.MethodPost, "/api/store/acme", "", map[string]string{middleware.HeaderSecurityKey: securityKey})
	assert.Equal(t, http.StatusConflict, res.code)
	assert.Equal(t, StatusFailure, res.body["status"])

	res = a.do(http.MethodDelete, "/api/store/acme", "", map[string]string{middleware.HeaderSecurityKey: securityKey})
	assert.Equal(t, http.StatusOK, res.code)
	assert.Equal(t, StatusSuccess, res.body["status"])

	res = a.do(http.MethodGet, "/api/category", "", scoped("acme", ""))
	assert.Equal(t, http.StatusNotFound, res.code)

	res = a.do(http.MethodDelete, "/api/store/acme", "", map[string]string{middleware.HeaderSecurityKey: securityKey})
	assert.Equal(t, http.StatusNotFound, res.code)
}

func TestAccounts(t *testing.T) {
	a := newAPI(t)
	adminToken := a.createStore("acme")

	res := a.do(http.MethodPost, "/api/user/register",
		`{"user_id":"carol","email":"carol@example.com","password":"pw","confirm_password":"pw"}`, scoped("acme", ""))
	require.Equal(t, http.StatusCreated, res.code, res.body)
	user := res.body["user"].(map[string]interface{})
	assert.Equal(t, "customer", user["rank"])
	assert.NotContains(t, user, "password")

	res = a.do(http.MethodPost, "/api/user/register",
		`{"user_id":"dave","email":"dave@example.com","password":"pw","confirm_password":"px"}`, scoped("acme", ""))
	assert.Equal(t, http.StatusBadRequest, res.code)

	res = a.do(http.MethodPost, "/api/user/login", `{"user_id":"carol","password":"nope"}`, scoped("acme", ""))
	assert.Equal(t, http.StatusUnauthorized, res.code)

	res = a.do(http.MethodPost, "/api/user/login", `{"user_id":"carol","password":"pw"}`, scoped("acme", ""))
	require.Equal(t, http.StatusOK, res.code)
	carolToken := res.body["token"].(string)

	res = a.do(http.MethodGet, "/api/user/me", "", scoped("acme", carolToken))
	require.Equal(t, http.StatusOK, res.code)
	assert.Equal(t, "carol", res.body["user"].(map[string]interface{})["user_id"])

	res = a.do(http.MethodPatch, "/api/user/"+user["id"].(string)+"/rank", `{"rank":"vip"}`, scoped("acme", carolToken))
	assert.Equal(t, http.StatusForbidden, res.code)

	res = a.do(http.MethodPatch, "/api/user/"+user["id"].(string)+"/rank", `{"rank":"emperor"}`, scoped("acme", adminToken))
	assert.Equal(t, http.StatusBadRequest, res.code)

	res = a.do(http.MethodPatch, "/api/user/"+user["id"].(string)+"/rank", `{"rank":"vip"}`, scoped("acme", adminToken))
	require.Equal(t, http.StatusOK, res.code)
	assert.Equal(t, "vip", res.body["user"].(map[string]interface{})["rank"])
}

func TestCatalogOverHTTP(t *testing.T) {
	a := newAPI(t)
	acmeAdmin := a.createStore("acme")
	globexAdmin := a.createStore("globex")

	res := a.do(http.MethodPost, "/api/category", `{"name":"fruits","description":"fresh"}`, scoped("acme", acmeAdmin))
	require.Equal(t, http.StatusCreated, res.code, res.body)
	assert.Equal(t, StatusSuccess, res.body["status"])

	res = a.do(http.MethodPost, "/api/category", `{"name":"fruits"}`, scoped("acme", acmeAdmin))
	assert.Equal(t, http.StatusConflict, res.code)

	res = a.do(http.MethodPost, "/api/category", `{"name":"fruits"}`, scoped("globex", globexAdmin))
	assert.Equal(t, http.StatusCreated, res.code)

	// acme's token is useless against globex
	res = a.do(http.MethodPost, "/api/category", `{"name":"bakery"}`, scoped("globex", acmeAdmin))
	assert.Equal(t, http.StatusUnauthorized, res.code)

	res = a.do(http.MethodPost, "/api/category/fruits/product", `{"name":"apple","price":10.0,"discount_rate":0.1}`, scoped("acme", acmeAdmin))
	require.Equal(t, http.StatusCreated, res.code, res.body)
	product := res.body["product"].(map[string]interface{})
	assert.InDelta(t, 9.0, product["final_price"], 1e-9)
	appleID := product["id"].(string)

	res = a.do(http.MethodPatch, "/api/category/fruits/product/apple/stock", `["lot-1","lot-2"]`, scoped("acme", acmeAdmin))
	require.Equal(t, http.StatusOK, res.code, res.body)

	res = a.do(http.MethodPatch, "/api/category/fruits/product/apple/stock", `{"stock":["lot-1"]}`, scoped("acme", acmeAdmin))
	assert.Equal(t, http.StatusBadRequest, res.code)

	res = a.do(http.MethodGet, "/api/category/fruits/product/"+appleID, "", scoped("acme", ""))
	require.Equal(t, http.StatusOK, res.code)
	assert.Equal(t, []interface{}{"lot-1", "lot-2"}, res.body["product"].(map[string]interface{})["stock"])

	res = a.do(http.MethodGet, "/api/category/fruits/product/"+appleID, "", scoped("globex", ""))
	assert.Equal(t, http.StatusNotFound, res.code)

	res = a.do(http.MethodGet, "/api/category/fruits", "", scoped("acme", ""))
	require.Equal(t, http.StatusOK, res.code)
	products := res.body["category"].(map[string]interface{})["products"].([]interface{})
	require.Len(t, products, 1)
	assert.InDelta(t, 9.0, products[0].(map[string]interface{})["final_price"], 1e-9)

	res = a.do(http.MethodGet, "/api/category", "", scoped("acme", ""))
	require.Equal(t, http.StatusOK, res.code)
	assert.Len(t, res.body["categories"], 1)

	res = a.do(http.MethodDelete, "/api/category/fruits/product/apple", "", scoped("acme", acmeAdmin))
	assert.Equal(t, http.StatusBadRequest, res.code)

	res = a.do(http.MethodDelete, "/api/category/fruits/product/"+appleID, "", scoped("acme", acmeAdmin))
	assert.Equal(t, http.StatusOK, res.code)

	res = a.do(http.MethodDelete, "/api/category/fruits/product/"+appleID, "", scoped("acme", acmeAdmin))
	assert.Equal(t, http.StatusNotFound, res.code)

	res = a.do(http.MethodDelete, "/api/category/fruits", "", scoped("acme", acmeAdmin))
	assert.Equal(t, http.StatusOK, res.code)

	res = a.do(http.MethodDelete, "/api/category/fruits", "", scoped("acme", acmeAdmin))
	assert.Equal(t, http.StatusNotFound, res.code)
}

func TestCatalogRequiresAdministrator(t *testing.T) {
	a := newAPI(t)
	a.createStore("acme")

	res := a.do(http.MethodPost, "/api/user/register",
		`{"user_id":"carol","email":"carol@example.com","password":"pw","confirm_password":"pw"}`, scoped("acme", ""))
	require.Equal(t, http.StatusCreated, res.code)
	customer := res.body["token"].(string)

	res = a.do(http.MethodPost, "/api/category", `{"name":"fruits"}`, scoped("acme", customer))
	assert.Equal(t, http.StatusForbidden, res.code)
	assert.Equal(t, StatusFailure, res.body["status"])

	res = a.do(http.MethodPost, "/api/category", `{"name":"fruits"}`, scoped("acme", ""))
	assert.Equal(t, http.StatusUnauthorized, res.code)

	res = a.do(http.MethodPost, "/api/category", `{"name":"fruits"}`, nil)
	assert.Equal(t, http.StatusBadRequest, res.code)

	res = a.do(http.MethodPost, "/api/category", `{"name":"fruits"}`, scoped("initech", customer))
	assert.Equal(t, http.StatusNotFound, res.code)
}

func TestHTTPErrorHandlerHidesInternalErrors(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	HTTPErrorHandler(apperr.Internal("repo.Find", assert.AnError), c)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, StatusError, body.Status)
	assert.Equal(t, "An internal error has occurred.", body.Message)
	assert.NotContains(t, rec.Body.String(), assert.AnError.Error())
}

func TestUnknownRoute(t *testing.T) {
	a := newAPI(t)
	res := a.do(http.MethodGet, "/nowhere", "", nil)
	assert.Equal(t, http.StatusNotFound, res.code)
	assert.Equal(t, StatusFailure, res.body["status"])
}
