package apperror

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessage(t *testing.T) {
	e := New(CodeNoPath, "no path found")
	assert.Equal(t, "[NO_PATH] no path found", e.Error())

	e2 := NewWithField(CodeInvalidCity, "unknown city", "origin")
	assert.Equal(t, "[INVALID_CITY] unknown city (field: origin)", e2.Error())
}

func TestHTTPStatusMapping(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want int
	}{
		{CodeInvalidRequest, http.StatusBadRequest},
		{CodeStopsNotFound, http.StatusNotFound},
		{CodeNoPath, http.StatusUnprocessableEntity},
		{CodeGraphUnavailable, http.StatusServiceUnavailable},
		{CodeTimeout, http.StatusGatewayTimeout},
		{CodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		err := New(tt.code, "x")
		assert.Equal(t, tt.want, err.HTTPStatus())
		assert.Equal(t, tt.want, ToHTTPStatus(err))
	}
}

func TestToHTTPStatusNonAppError(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, ToHTTPStatus(errors.New("boom")))
}

func TestIsAndCode(t *testing.T) {
	err := New(CodeNoPath, "x")
	assert.True(t, Is(err, CodeNoPath))
	assert.False(t, Is(err, CodeTimeout))
	assert.Equal(t, CodeNoPath, Code(err))
	assert.Equal(t, CodeInternal, Code(errors.New("plain")))
}

func TestSeverityHelpers(t *testing.T) {
	w := NewWarning(CodeCacheError, "degraded")
	assert.True(t, IsWarning(w))
	assert.False(t, IsCritical(w))

	c := NewCritical(CodeRecoveryFailed, "fatal")
	assert.True(t, IsCritical(c))
}

func TestValidationErrors(t *testing.T) {
	v := NewValidationErrors()
	assert.True(t, v.IsValid())

	v.AddError(CodeInvalidCity, "bad city")
	v.AddWarning(CodeCacheError, "cache degraded")

	assert.True(t, v.HasErrors())
	assert.True(t, v.HasWarnings())
	assert.False(t, v.IsValid())
	assert.Len(t, v.ErrorMessages(), 1)

	other := NewValidationErrors()
	other.AddError(CodeTimeout, "slow")
	v.Merge(other)
	assert.Len(t, v.Errors, 2)
}

func TestWrapAndUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	wrapped := Wrap(cause, CodeInternal, "wrapped")
	assert.Equal(t, cause, wrapped.Unwrap())
	assert.True(t, errors.Is(wrapped, cause))
}
