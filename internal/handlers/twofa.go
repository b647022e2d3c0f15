package handlers

import (
	"bytes"
	"encoding/base64"
	"image/png"

	"github.com/gofiber/fiber/v2"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"golang.org/x/crypto/bcrypt"

	"github.com/clouddrive/backend/internal/database"
	"github.com/clouddrive/backend/internal/middleware"
	"github.com/clouddrive/backend/internal/models"
)

const totpIssuer = "CloudDrive"

// TwoFAVerifyRequest carries the code a user reads from their
// authenticator app.
type TwoFAVerifyRequest struct {
	Code string `json:"code" validate:"required,len=6,numeric"`
}

// TwoFADisableRequest requires both the password and a current code, so
// a stolen session alone cannot turn 2FA off.
type TwoFADisableRequest struct {
	Password string `json:"password" validate:"required"`
	Code     string `json:"code" validate:"required,len=6,numeric"`
}

type TwoFAHandler struct{}

func NewTwoFAHandler() *TwoFAHandler {
	return &TwoFAHandler{}
}

// currentUserRecord reloads the authenticated user from the database.
// The middleware copy predates the request and misses secret updates
// made by an earlier setup call.
func currentUserRecord(c *fiber.Ctx) (*models.User, error) {
	ctxUser := middleware.GetCurrentUser(c)
	if ctxUser == nil {
		return nil, c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"message": "User not found",
		})
	}

	var user models.User
	if err := database.DB.First(&user, ctxUser.ID).Error; err != nil {
		return nil, c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to get user data",
		})
	}
	return &user, nil
}

// encodeKeyQR renders the provisioning key as a base64 PNG.
func encodeKeyQR(key *otp.Key) (string, error) {
	img, err := key.Image(200, 200)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// Setup generates a fresh TOTP secret and hands back the provisioning
// QR code. The secret stays dormant until Verify confirms a code.
func (h *TwoFAHandler) Setup(c *fiber.Ctx) error {
	user, err := currentUserRecord(c)
	if user == nil {
		return err
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      totpIssuer,
		AccountName: user.Email,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to generate 2FA secret",
		})
	}

	qrBase64, err := encodeKeyQR(key)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to generate QR code",
		})
	}

	database.DB.Model(&models.User{}).Where("id = ?", user.ID).
		Update("two_factor_secret", key.Secret())

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"secret":  key.Secret(),
			"qr_code": "data:image/png;base64," + qrBase64,
			"otpauth": key.URL(),
		},
	})
}

// Verify checks a code against the pending secret and switches 2FA on.
func (h *TwoFAHandler) Verify(c *fiber.Ctx) error {
	var req TwoFAVerifyRequest
	if err := c.BodyParser(&req); err != nil || validate.Struct(&req) != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "A 6-digit code is required",
		})
	}

	user, err := currentUserRecord(c)
	if user == nil {
		return err
	}

	if user.TwoFactorSecret == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "2FA not set up. Please call setup first",
		})
	}

	if !totp.Validate(req.Code, user.TwoFactorSecret) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid code. Please try again",
		})
	}

	database.DB.Model(&models.User{}).Where("id = ?", user.ID).
		Update("two_factor_enabled", true)

	return c.JSON(fiber.Map{
		"success": true,
		"message": "2FA enabled successfully",
	})
}

// Disable turns 2FA off and wipes the stored secret.
func (h *TwoFAHandler) Disable(c *fiber.Ctx) error {
	var req TwoFADisableRequest
	if err := c.BodyParser(&req); err != nil || validate.Struct(&req) != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Password and a 6-digit code are required",
		})
	}

	user, err := currentUserRecord(c)
	if user == nil {
		return err
	}

	if !user.TwoFactorEnabled {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "2FA is not enabled",
		})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid password",
		})
	}

	if !totp.Validate(req.Code, user.TwoFactorSecret) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid 2FA code",
		})
	}

	database.DB.Model(&models.User{}).Where("id = ?", user.ID).Updates(map[string]interface{}{
		"two_factor_enabled": false,
		"two_factor_secret":  "",
	})

	return c.JSON(fiber.Map{
		"success": true,
		"message": "2FA disabled successfully",
	})
}

// Status reports whether 2FA is enabled for the current user.
func (h *TwoFAHandler) Status(c *fiber.Ctx) error {
	user, err := currentUserRecord(c)
	if user == nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"enabled": user.TwoFactorEnabled,
		},
	})
}
