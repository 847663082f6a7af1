package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	e := New(CodeInvalidBounds, "bad bounds")
	assert.Equal(t, "[GEO_001] bad bounds", e.Error())

	e = e.WithDetail("min_lat > max_lat")
	assert.Equal(t, "[GEO_001] bad bounds: min_lat > max_lat", e.Error())
}

func TestWrap(t *testing.T) {
	cause := stderrors.New("connection refused")
	e := Wrap(cause, CodeDatabaseError, "upsert failed")
	assert.ErrorIs(t, e, cause)
	assert.Equal(t, CodeDatabaseError, GetCode(e))

	assert.Nil(t, Wrap(nil, CodeDatabaseError, "no-op"))
}

func TestWrap_PreservesCodeOnUnknown(t *testing.T) {
	inner := New(CodeApplicantNotFound, "applicant missing")
	outer := Wrap(inner, CodeUnknown, "while matching")
	assert.Equal(t, CodeApplicantNotFound, outer.Code)
}

func TestIsCode_TraversesChain(t *testing.T) {
	inner := New(CodeEmbeddingTimeout, "provider timed out")
	wrapped := fmt.Errorf("scoring applicant: %w", inner)
	assert.True(t, IsCode(wrapped, CodeEmbeddingTimeout))
	assert.False(t, IsCode(wrapped, CodeDatabaseError))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(NotFound("gone")))
	assert.True(t, IsNotFound(New(CodeApplicantNotFound, "gone")))
	assert.True(t, IsNotFound(New(CodeProjectNotFound, "gone")))
	assert.False(t, IsNotFound(Internal("boom")))
	assert.False(t, IsNotFound(nil))
}

func TestIsValidation(t *testing.T) {
	assert.True(t, IsValidation(InvalidParam("bad")))
	assert.True(t, IsValidation(New(CodeInvalidMode, "bad mode")))
	assert.True(t, IsValidation(New(CodeInvalidCellSize, "bad size")))
	assert.False(t, IsValidation(New(CodeCacheError, "miss")))
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, CodeOK, GetCode(nil))
	assert.Equal(t, CodeUnknown, GetCode(stderrors.New("plain")))
	assert.Equal(t, CodeConflict, GetCode(Conflict("dup")))
}

func TestWithDetail_NilReceiver(t *testing.T) {
	var e *AppError
	assert.Nil(t, e.WithDetail("x"))
	assert.Nil(t, e.WithCause(stderrors.New("y")))
}
