package clasperr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusKnownCode(t *testing.T) {
	assert.Equal(t, 404, New(RuleNotFound, "").HTTPStatus())
	assert.Equal(t, 409, New(RuleConflict, "").HTTPStatus())
}

func TestHTTPStatusUnknownCodeDefaultsTo500(t *testing.T) {
	assert.Equal(t, 500, New(Code("SOMETHING_NEW"), "").HTTPStatus())
}

func TestErrorsIsComparesByCodeNotMessage(t *testing.T) {
	a := New(RuleNotFound, "rule 7 is missing")
	b := New(RuleNotFound, "a different message entirely")
	assert.True(t, errors.Is(a, b))

	c := New(ScanNotFound, "rule 7 is missing")
	assert.False(t, errors.Is(a, c))
}

func TestErrorMessageIncludesCode(t *testing.T) {
	err := New(FileNotFound, "no such file")
	assert.Equal(t, "FILE_NOT_FOUND: no such file", err.Error())
}
