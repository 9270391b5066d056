package httpx

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRequest struct {
	Query   string `validate:"required,max=10"`
	Limit   int    `validate:"gte=0,lte=40"`
	Session string `validate:"omitempty,max=16,session_id"`
}

func TestValidateStruct_Valid(t *testing.T) {
	assert.Nil(t, ValidateStruct(testRequest{Query: "dune", Limit: 5, Session: "tab-1"}))
	assert.Nil(t, ValidateStruct(testRequest{Query: "dune"}))
}

func TestValidateStruct_Messages(t *testing.T) {
	tests := map[string]struct {
		in      testRequest
		field   string
		message string
	}{
		"required":    {testRequest{}, "query", "Query is required"},
		"too long":    {testRequest{Query: strings.Repeat("x", 11)}, "query", "at most 10 characters"},
		"negative":    {testRequest{Query: "x", Limit: -1}, "limit", "at least 0"},
		"too large":   {testRequest{Query: "x", Limit: 41}, "limit", "at most 40"},
		"bad session": {testRequest{Query: "x", Session: "tab 1<script>"}, "session", "may only contain"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			errs := ValidateStruct(tt.in)
			require.Len(t, errs, 1)
			assert.Equal(t, tt.field, errs[0].Field)
			assert.Contains(t, errs[0].Message, tt.message)
		})
	}
}

func TestJSONValidationError(t *testing.T) {
	w := httptest.NewRecorder()
	JSONValidationError(w, httptest.NewRequest(http.MethodPost, "/search", nil), []ValidationError{{Field: "limit", Message: "limit must be at most 40"}})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "VALIDATION_ERROR", body.Code)
	require.Len(t, body.Details, 1)
	assert.Equal(t, "limit", body.Details[0].Field)
}
