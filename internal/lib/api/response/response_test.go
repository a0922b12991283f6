package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	BetType string  `json:"bet_type" validate:"required,oneof=red black"`
	Amount  float64 `json:"amount" validate:"min=1,max=10"`
}

func TestValidationError(t *testing.T) {
	err := validator.New().Struct(sample{Amount: 20})
	require.Error(t, err)

	res := ValidationError(err.(validator.ValidationErrors))

	assert.Equal(t, http.StatusBadRequest, res.Status)
	assert.Equal(t, "field BetType is required, field Amount must be at most 10", res.Error)

	err = validator.New().Struct(sample{BetType: "green", Amount: 0})
	require.Error(t, err)

	res = ValidationError(err.(validator.ValidationErrors))
	assert.Equal(t, "field BetType must be one of [red black], field Amount must be at least 1", res.Error)
}

func TestFailWritesStatusLine(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	Fail(w, r, "session not found", http.StatusNotFound)

	require.Equal(t, http.StatusNotFound, w.Code)

	var got Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, Response{Status: http.StatusNotFound, Error: "session not found"}, got)
}

func TestErrorDefaultsToInternal(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, Error("boom", 0).Status)
}
