// handlers/auth.go - Admin login
package handlers

import (
	"os"
	"time"

	"kudos/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type LoginRequest struct {
	Password string `json:"password"`
}

type LoginResponse struct {
	Success   bool   `json:"success"`
	Token     string `json:"token,omitempty"`
	ExpiresAt int64  `json:"expires_at,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Login authenticates the admin operator against the shared admin
// password. Prefers a bcrypt hash (ADMIN_PASSWORD_HASH); falls back to a
// plaintext ADMIN_PASSWORD for development setups. The token is returned
// in the body and set as an httpOnly cookie for the browser panel.
func Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(LoginResponse{Success: false, Error: "Invalid request body"})
	}

	if req.Password == "" {
		return c.Status(400).JSON(LoginResponse{Success: false, Error: "Password is required"})
	}

	if !checkAdminPassword(req.Password) {
		return c.Status(401).JSON(LoginResponse{Success: false, Error: "Invalid password"})
	}

	token, expiresAt, err := generateAdminToken()
	if err != nil {
		return c.Status(500).JSON(LoginResponse{Success: false, Error: "Failed to generate token"})
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.AuthTokenCookie,
		Value:    token,
		Expires:  time.Unix(expiresAt, 0),
		HTTPOnly: true,
		Secure:   os.Getenv("APP_ENV") == "production",
		SameSite: "Strict",
	})

	return c.JSON(LoginResponse{Success: true, Token: token, ExpiresAt: expiresAt})
}

// Check confirms the caller holds a valid admin token. The middleware does
// the work; reaching the handler means authenticated.
func Check(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"success": true, "message": "Authenticated"})
}

// Logout clears the auth cookie.
func Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.AuthTokenCookie,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
	})
	return c.JSON(fiber.Map{"success": true, "message": "Logged out successfully"})
}

func checkAdminPassword(password string) bool {
	if hash := os.Getenv("ADMIN_PASSWORD_HASH"); hash != "" {
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
	}
	if plain := os.Getenv("ADMIN_PASSWORD"); plain != "" {
		return password == plain
	}
	return false
}

func generateAdminToken() (string, int64, error) {
	expiresAt := time.Now().Add(24 * time.Hour).Unix()

	claims := jwt.MapClaims{
		"is_admin": true,
		"exp":      expiresAt,
		"iat":      time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(os.Getenv("JWT_SECRET")))
	if err != nil {
		return "", 0, err
	}

	return tokenString, expiresAt, nil
}
