package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptohustle/internal/domain"
)

func recordDomainError(t *testing.T, err error) (int, Response) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, DomainErrorResponse(c, err))

	var body Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestDomainErrorResponseMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"missing order", domain.ErrOrderNotFound, http.StatusNotFound},
		{"missing task", domain.ErrTaskNotFound, http.StatusNotFound},
		{"timeframe locked", domain.ErrTimeframeLocked, http.StatusConflict},
		{"mining in progress", domain.ErrMiningInProgress, http.StatusConflict},
		{"below minimum", domain.ErrBelowMinimum, http.StatusBadRequest},
		{"insufficient funds", domain.ErrInsufficientFunds, http.StatusBadRequest},
		{"nothing to claim", domain.ErrNothingToClaim, http.StatusBadRequest},
		{"claim not ready", domain.ErrClaimNotReady, http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, body := recordDomainError(t, tc.err)
			assert.Equal(t, tc.status, code)
			assert.Equal(t, "error", body.Status)
			// the rejection reason reaches the player verbatim
			assert.Equal(t, tc.err.Error(), body.Message)
		})
	}
}

func TestDomainErrorResponseHidesInternalErrors(t *testing.T) {
	code, body := recordDomainError(t, errors.New("pq: deadlock detected"))

	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "error", body.Status)
	assert.Equal(t, "Something went wrong", body.Message)
	assert.NotContains(t, body.Message, "deadlock")
}
