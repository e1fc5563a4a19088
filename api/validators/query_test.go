package validators

import (
	"net/http"
	"net/http/httptest"
	"testing"

	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQueryInt(t *testing.T) {
	cases := []struct {
		name    string
		url     string
		want    int
		wantErr bool
	}{
		{name: "absent uses default", url: "/products", want: 24},
		{name: "in range", url: "/products?limit=10", want: 10},
		{name: "not a number", url: "/products?limit=ten", wantErr: true},
		{name: "below range", url: "/products?limit=0", wantErr: true},
		{name: "above range", url: "/products?limit=101", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseQueryInt(httptest.NewRequest(http.MethodGet, tc.url, nil), "limit", 24, 1, 100)
			if tc.wantErr {
				require.Error(t, err)
				typed := pkgerrors.As(err)
				require.NotNil(t, typed)
				assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
				assert.Contains(t, typed.Details(), "limit")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseQueryFlag(t *testing.T) {
	on, err := ParseQueryFlag(httptest.NewRequest(http.MethodGet, "/notifications?peek=true", nil), "peek")
	require.NoError(t, err)
	assert.True(t, on)

	off, err := ParseQueryFlag(httptest.NewRequest(http.MethodGet, "/notifications", nil), "peek")
	require.NoError(t, err)
	assert.False(t, off)

	_, err = ParseQueryFlag(httptest.NewRequest(http.MethodGet, "/notifications?peek=maybe", nil), "peek")
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}
