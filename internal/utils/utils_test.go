// internal/utils/utils_test.go
package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	SetJWTSecret("test-secret")

	token, err := GenerateJWT("admin", 1)
	require.NoError(t, err)

	claims, err := ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "nexpoint-backend", claims.Issuer)
}

func TestValidateJWTRejectsTamperedToken(t *testing.T) {
	SetJWTSecret("test-secret")

	token, err := GenerateJWT("admin", 1)
	require.NoError(t, err)

	_, err = ValidateJWT(token + "x")
	assert.Error(t, err)

	SetJWTSecret("rotated-secret")
	_, err = ValidateJWT(token)
	assert.Error(t, err)
}

func TestGetValidationErrors(t *testing.T) {
	type form struct {
		Name  string `validate:"required"`
		Email string `validate:"required,email"`
	}

	err := ValidateStruct(&form{Email: "not-an-email"})
	require.Error(t, err)

	errs := GetValidationErrors(err)
	require.Len(t, errs, 2)
	assert.Equal(t, "name", errs[0].Field)
	assert.Equal(t, "Name is required", errs[0].Message)
	assert.Equal(t, "Invalid email format", errs[1].Message)
}

func TestGetPaginationParams(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newCtx := func(query string) *gin.Context {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest("GET", "/orders"+query, nil)
		return c
	}

	defaults := GetPaginationParams(newCtx(""), 1000, 1000)
	assert.Equal(t, 1, defaults.Page)
	assert.Equal(t, 1000, defaults.Limit)
	assert.Equal(t, 0, defaults.Offset())

	custom := GetPaginationParams(newCtx("?page=3&limit=50"), 1000, 1000)
	assert.Equal(t, 3, custom.Page)
	assert.Equal(t, 50, custom.Limit)
	assert.Equal(t, 100, custom.Offset())

	// Out-of-range values fall back rather than error.
	clamped := GetPaginationParams(newCtx("?page=-1&limit=5000"), 1000, 1000)
	assert.Equal(t, 1, clamped.Page)
	assert.Equal(t, 1000, clamped.Limit)
}
