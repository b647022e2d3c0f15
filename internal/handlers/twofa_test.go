package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTwoFAVerifyRequestValidation(t *testing.T) {
	assert.NoError(t, validate.Struct(&TwoFAVerifyRequest{Code: "123456"}))

	for _, code := range []string{"", "12345", "1234567", "abcdef"} {
		assert.Error(t, validate.Struct(&TwoFAVerifyRequest{Code: code}), "code %q", code)
	}
}

func TestTwoFADisableRequestValidation(t *testing.T) {
	assert.NoError(t, validate.Struct(&TwoFADisableRequest{Password: "secret", Code: "123456"}))
	assert.Error(t, validate.Struct(&TwoFADisableRequest{Code: "123456"}))
	assert.Error(t, validate.Struct(&TwoFADisableRequest{Password: "secret"}))
	assert.Error(t, validate.Struct(&TwoFADisableRequest{Password: "secret", Code: "12x456"}))
}

// Malformed bodies must be rejected before any user lookup happens.
func TestTwoFARejectsMalformedRequests(t *testing.T) {
	handler := NewTwoFAHandler()
	app := fiber.New()
	app.Post("/2fa/verify", handler.Verify)
	app.Post("/2fa/disable", handler.Disable)

	cases := []struct {
		target  string
		payload fiber.Map
	}{
		{"/2fa/verify", fiber.Map{}},
		{"/2fa/verify", fiber.Map{"code": "12"}},
		{"/2fa/disable", fiber.Map{"code": "123456"}},
		{"/2fa/disable", fiber.Map{"password": "secret"}},
	}

	for _, tc := range cases {
		payload, err := json.Marshal(tc.payload)
		require.NoError(t, err)
		req := httptest.NewRequest("POST", tc.target, bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, "target %s payload %v", tc.target, tc.payload)
	}
}
