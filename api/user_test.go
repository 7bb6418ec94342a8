package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clarusnet/bridge_service/domain"
	"github.com/clarusnet/bridge_service/entity"
	"github.com/clarusnet/bridge_service/service"
	"github.com/clarusnet/bridge_service/storage/memory"
)

const testBTCAddr = "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa"

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	userService := service.NewUserService(memory.NewUserStore(), domain.DefaultSS58Prefix, &chaincfg.MainNetParams)
	tokenService := service.NewTokenService(memory.NewTokenStore())
	return NewRouter(NewUserHandler(userService, nil), NewTokenHandler(tokenService))
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeUser(t *testing.T, w *httptest.ResponseRecorder) entity.User {
	t.Helper()
	var env struct {
		User entity.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env.User
}

func TestCreateUserRequiresEVMAddress(t *testing.T) {
	r := newTestRouter()
	w := doJSON(t, r, http.MethodPost, "/user", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateUserThenFetchOrCreate(t *testing.T) {
	r := newTestRouter()

	w := doJSON(t, r, http.MethodPost, "/user", `{"evmAddress":"0xaa"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	created := decodeUser(t, w)
	assert.NotEmpty(t, created.Mnemonic)
	assert.NotEmpty(t, created.SS58Address)
	assert.Empty(t, created.BitcoinAddress)

	// second POST with the same address returns the record, not an error
	w = doJSON(t, r, http.MethodPost, "/user", `{"evmAddress":"0xaa"}`)
	require.Equal(t, http.StatusOK, w.Code)
	again := decodeUser(t, w)
	assert.Equal(t, created.Mnemonic, again.Mnemonic)
	assert.Equal(t, created.SS58Address, again.SS58Address)
}

func TestCreateUserBitcoinConflict(t *testing.T) {
	r := newTestRouter()

	w := doJSON(t, r, http.MethodPost, "/user", `{"evmAddress":"0xaa","bitcoinAddress":"`+testBTCAddr+`"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodPost, "/user", `{"evmAddress":"0xbb","bitcoinAddress":"`+testBTCAddr+`"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "Bitcoin address")
}

func TestGetUser(t *testing.T) {
	r := newTestRouter()

	w := doJSON(t, r, http.MethodGet, "/user", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodGet, "/user?evmAddress=0xaa", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	doJSON(t, r, http.MethodPost, "/user", `{"evmAddress":"0xaa","bitcoinAddress":"`+testBTCAddr+`"}`)

	w = doJSON(t, r, http.MethodGet, "/user?evmAddress=0xaa", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0xaa", decodeUser(t, w).EVMAddress)

	w = doJSON(t, r, http.MethodGet, "/user?bitcoinAddress="+testBTCAddr, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0xaa", decodeUser(t, w).EVMAddress)
}

func TestUpdateUser(t *testing.T) {
	r := newTestRouter()
	doJSON(t, r, http.MethodPost, "/user", `{"evmAddress":"0xaa"}`)

	w := doJSON(t, r, http.MethodPut, "/user", `{"bitcoinAddress":"`+testBTCAddr+`"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code) // no identifying query param

	w = doJSON(t, r, http.MethodPut, "/user?evmAddress=0xaa", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code) // empty update

	w = doJSON(t, r, http.MethodPut, "/user?evmAddress=0xzz", `{"bitcoinAddress":"`+testBTCAddr+`"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, http.MethodPut, "/user?evmAddress=0xaa", `{"bitcoinAddress":"`+testBTCAddr+`"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, testBTCAddr, decodeUser(t, w).BitcoinAddress)
}

func TestUpdateUserConflictLeavesRecordUnchanged(t *testing.T) {
	r := newTestRouter()
	doJSON(t, r, http.MethodPost, "/user", `{"evmAddress":"0xaa","bitcoinAddress":"`+testBTCAddr+`"}`)
	doJSON(t, r, http.MethodPost, "/user", `{"evmAddress":"0xbb"}`)

	w := doJSON(t, r, http.MethodPut, "/user?evmAddress=0xbb", `{"bitcoinAddress":"`+testBTCAddr+`"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, r, http.MethodGet, "/user?evmAddress=0xbb", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeUser(t, w).BitcoinAddress)
}

func TestUnsupportedVerbsGet405WithAllow(t *testing.T) {
	r := newTestRouter()

	w := doJSON(t, r, http.MethodDelete, "/user", "")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, "POST, GET, PUT", w.Header().Get("Allow"))

	w = doJSON(t, r, http.MethodGet, "/token", "")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, "POST", w.Header().Get("Allow"))
}
