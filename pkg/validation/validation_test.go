package validation

import (
	"testing"

	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signup struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Country  string `json:"country" validate:"omitempty,len=2"`
	Quantity int    `validate:"gt=0"`
}

func TestStructReportsFieldsByJSONName(t *testing.T) {
	err := Struct(signup{Email: "nope", Password: "short", Country: "USA"})
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	assert.Equal(t, map[string]string{
		"email":    "must be a valid email",
		"password": "must be at least 8",
		"country":  "must be exactly 2 characters",
		"Quantity": "must be greater than 0",
	}, typed.Details())
}

func TestStructAcceptsValidInput(t *testing.T) {
	require.NoError(t, Struct(signup{Email: "ada@example.com", Password: "long-enough", Quantity: 1}))
}
