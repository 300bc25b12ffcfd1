package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/maaaahin/drugo-storefront/internal/api"
	"github.com/maaaahin/drugo-storefront/internal/checkout"
)

type committerMock struct {
	err   error
	calls int
}

func (c *committerMock) Commit(context.Context) error {
	c.calls++
	return c.err
}

func TestCommit_Created(t *testing.T) {
	committer := &committerMock{}
	handler := NewCheckoutHandler(committer)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "/checkout", nil)

	handler.Commit(recorder, request)

	assert.Equal(t, http.StatusCreated, recorder.Code)
	assert.JSONEq(t, `{"success":true}`, recorder.Body.String())
	assert.Equal(t, 1, committer.calls)
}

func TestCommit_EmptyCart(t *testing.T) {
	handler := NewCheckoutHandler(&committerMock{err: checkout.ErrEmptyCart})

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "/checkout", nil)

	handler.Commit(recorder, request)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "empty_cart")
}

func TestCommit_MissingAddressCarriesRedirect(t *testing.T) {
	handler := NewCheckoutHandler(&committerMock{err: checkout.ErrMissingAddress})

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "/checkout", nil)

	handler.Commit(recorder, request)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "missing_address")
	assert.Contains(t, recorder.Body.String(), "/dashboard/user/profile")
}

func TestCommit_InFlight(t *testing.T) {
	handler := NewCheckoutHandler(&committerMock{err: checkout.ErrCommitInFlight})

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "/checkout", nil)

	handler.Commit(recorder, request)

	assert.Equal(t, http.StatusConflict, recorder.Code)
}

func TestCommit_UpstreamFailures(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"server rejection", &api.ServerError{Message: "order failed"}, http.StatusBadGateway},
		{"transport failure", &api.NetworkError{Op: "order placement"}, http.StatusServiceUnavailable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := NewCheckoutHandler(&committerMock{err: tc.err})

			recorder := httptest.NewRecorder()
			request := httptest.NewRequest(http.MethodPost, "/checkout", nil)

			handler.Commit(recorder, request)
			assert.Equal(t, tc.wantStatus, recorder.Code)
		})
	}
}
