package utility

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumericRoundTrip(t *testing.T) {
	assert.InDelta(t, 172.5, NumericToFloat(FloatToNumeric(172.5)), 1e-9)
	assert.Equal(t, 0.0, NumericToFloat(pgtype.Numeric{}))
}

func TestUUIDConversion(t *testing.T) {
	id := uuid.New()
	s, err := PgtypeUUIDToString(UUIDToPgtype(id))
	require.NoError(t, err)
	assert.Equal(t, id.String(), s)

	_, err = PgtypeUUIDToString(pgtype.UUID{})
	assert.Error(t, err)
}

func TestTextHelpers(t *testing.T) {
	assert.Equal(t, "", TextOrEmpty(pgtype.Text{String: "x"}))
	assert.Equal(t, "x", TextOrEmpty(pgtype.Text{String: "x", Valid: true}))
	assert.False(t, NullableText("").Valid)
	assert.True(t, NullableText("vegan").Valid)
}

func TestDateOf(t *testing.T) {
	d := DateOf(time.Date(2026, 10, 19, 23, 59, 0, 0, time.FixedZone("WIB", 7*3600)))
	assert.True(t, d.Valid)
	assert.Equal(t, time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC), d.Time)
}

func TestRateLimiter(t *testing.T) {
	limiter := NewRateLimiter(time.Minute, 2)
	now := time.Now()

	assert.NoError(t, limiter.Allow("u-1", now))
	assert.NoError(t, limiter.Allow("u-1", now.Add(time.Second)))
	assert.Error(t, limiter.Allow("u-1", now.Add(2*time.Second)))
	assert.NoError(t, limiter.Allow("u-2", now))

	// the first attempts fall out of the window
	assert.NoError(t, limiter.Allow("u-1", now.Add(2*time.Minute)))
}

func TestGetUserIDFromContext(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	_, err := GetUserIDFromContext(c)
	assert.Error(t, err)

	c.Set("user_id", "u-1")
	id, err := GetUserIDFromContext(c)
	require.NoError(t, err)
	assert.Equal(t, "u-1", id)
}

func TestGetRealIP(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	c := e.NewContext(req, httptest.NewRecorder())

	assert.Equal(t, "203.0.113.7", GetRealIP(c))
}

func TestRequestValidator(t *testing.T) {
	type body struct {
		PlanDate string `validate:"omitempty,datetime=2006-01-02"`
		Days     int    `validate:"min=1,max=90"`
	}
	v := NewRequestValidator()

	assert.NoError(t, v.Validate(&body{PlanDate: "2026-10-19", Days: 7}))
	assert.NoError(t, v.Validate(&body{Days: 1}))

	err := v.Validate(&body{PlanDate: "19/10/2026", Days: 7})
	require.Error(t, err)
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)

	assert.Error(t, v.Validate(&body{Days: 0}))
}
