package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestCurrentUserID(t *testing.T) {
	newCtx := func() echo.Context {
		req := httptest.NewRequest("GET", "/", nil)
		return echo.New().NewContext(req, httptest.NewRecorder())
	}

	cases := []struct {
		name  string
		value interface{}
		want  string
	}{
		// JWT claims decode numbers as float64.
		{"float64 claim", float64(7), "7"},
		{"string claim", "42", "42"},
		{"uint64", uint64(9), "9"},
		{"int", 3, "3"},
		{"int64", int64(5), "5"},
		{"empty string", "", "anon"},
		{"missing", nil, "anon"},
	}
	for _, tc := range cases {
		c := newCtx()
		if tc.value != nil {
			c.Set("user_id", tc.value)
		}
		if got := currentUserID(c); got != tc.want {
			t.Errorf("%s: currentUserID = %q, want %q", tc.name, got, tc.want)
		}
	}
}
