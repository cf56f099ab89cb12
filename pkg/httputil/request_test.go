package httputil

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJSON(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"email":"jane@example.com"}`))

	var body struct {
		Email string `json:"email"`
	}
	require.NoError(t, ParseJSON(req, &body))
	assert.Equal(t, "jane@example.com", body.Email)
}

func TestParseJSONInvalid(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{broken`))

	var body map[string]string
	assert.Error(t, ParseJSON(req, &body))
}

func TestParsePathString(t *testing.T) {
	router := mux.NewRouter()
	var got string
	router.HandleFunc("/developers/{email}", func(w http.ResponseWriter, r *http.Request) {
		var err error
		got, err = ParsePathString(r, "email")
		require.NoError(t, err)
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/developers/jane@example.com", nil))
	assert.Equal(t, "jane@example.com", got)
}

func TestQueryParamDefault(t *testing.T) {
	req := httptest.NewRequest("GET", "/developers?status=inactive", nil)
	assert.Equal(t, "inactive", QueryParam(req, "status", ""))
	assert.Equal(t, "fallback", QueryParam(req, "missing", "fallback"))
}
