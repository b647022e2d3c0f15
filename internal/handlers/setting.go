package handlers

import (
	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/clouddrive/backend/internal/database"
	"github.com/clouddrive/backend/internal/models"
)

type SettingHandler struct{}

func NewSettingHandler() *SettingHandler {
	return &SettingHandler{}
}

// ChangedPassword updates the password of the account with the given
// email.
func (h *SettingHandler) ChangedPassword(c *fiber.Ctx) error {
	var req struct {
		Email           string `json:"email"`
		NewPassword     string `json:"new_password"`
		ConfirmPassword string `json:"confirm_password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}

	if req.NewPassword == "" || req.NewPassword != req.ConfirmPassword {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Passwords do not match",
		})
	}

	var user models.User
	if err := database.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "No user found with this email",
		})
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to hash password",
		})
	}

	if err := database.DB.Model(&user).Update("password", string(hashedPassword)).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to update password",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Password has been changed successfully",
	})
}

const termsAndConditions = `Terms and Conditions

1. Introduction
   Welcome to our service. By using our platform, you agree to these terms.

2. Use of Service
   You must follow all applicable laws and regulations.

3. Account Responsibility
   Users are responsible for their account security and activity.

4. Termination
   We reserve the right to suspend or terminate accounts violating these terms.

5. Changes to Terms
   We may update these terms at any time.

Contact us for any queries.`

const aboutUs = `About Us

Welcome to our platform! Our goal is to provide the best experience for managing files efficiently.

We aim to simplify storage and improve productivity.

Contact us for any queries.`

const privacyPolicy = `Privacy Policy

1. Information Collection
   We collect minimal data required for providing our service.

2. Data Usage
   Your data is used only to improve your experience.

3. Data Security
   We implement strict security measures to protect your information.

4. Third-Party Sharing
   We do not share your data with third parties without consent.

5. Changes to Policy
   This policy may be updated periodically.

Contact us for any queries.`

// TermsAndConditions serves the static terms text.
func (h *SettingHandler) TermsAndConditions(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"title":   "Terms and Conditions",
			"content": termsAndConditions,
		},
	})
}

// AboutUs serves the static about text.
func (h *SettingHandler) AboutUs(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"title":   "About Us",
			"content": aboutUs,
		},
	})
}

// PrivacyPolicy serves the static privacy text.
func (h *SettingHandler) PrivacyPolicy(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"title":   "Privacy Policy",
			"content": privacyPolicy,
		},
	})
}
