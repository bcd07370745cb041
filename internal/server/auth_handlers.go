package server

import (
	"fmt"
	"strconv"
	"time"

	"homestead/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ObtainToken handles POST /api/token
// @Summary Obtain token pair
// @Description Exchange email/password for an access and refresh token
// @Tags token
// @Accept json
// @Produce json
// @Param request body object{email=string,password=string} true "Credentials"
// @Success 200 {object} object{access=string,refresh=string}
// @Failure 401 {object} object{error=string}
// @Router /token [post]
func (s *Server) ObtainToken(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.Email == "" || req.Password == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Email and password are required"))
	}

	account, err := s.accountService.Authenticate(c.Context(), req.Email, req.Password)
	if err != nil {
		if models.HasCode(err, models.CodeUnauthorized) {
			return models.RespondWithError(c, fiber.StatusUnauthorized, err)
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	access, err := s.generateToken(account, "access", accessTokenTTL)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	refresh, err := s.generateToken(account, "refresh", refreshTokenTTL)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	return c.JSON(fiber.Map{
		"access":  access,
		"refresh": refresh,
	})
}

// RefreshToken handles POST /api/token/refresh
// @Summary Refresh access token
// @Tags token
// @Accept json
// @Produce json
// @Param request body object{refresh=string} true "Refresh token"
// @Success 200 {object} object{access=string}
// @Failure 401 {object} object{error=string}
// @Router /token/refresh [post]
func (s *Server) RefreshToken(c *fiber.Ctx) error {
	var req struct {
		Refresh string `json:"refresh"`
	}
	if err := c.BodyParser(&req); err != nil || req.Refresh == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Refresh token is required"))
	}

	claims, err := s.parseToken(req.Refresh)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized, err)
	}
	if tokenType, _ := claims["token_type"].(string); tokenType != "refresh" {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Refresh token required"))
	}

	sub, _ := claims["sub"].(string)
	accountID, convErr := strconv.ParseUint(sub, 10, 32)
	if convErr != nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Invalid account ID in token"))
	}

	// Re-load the account so a deactivated one cannot keep refreshing.
	account, err := s.accountService.Get(c.Context(), uint(accountID))
	if err != nil || !account.IsActive {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Invalid or expired token"))
	}

	access, genErr := s.generateToken(account, "access", accessTokenTTL)
	if genErr != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(genErr))
	}
	return c.JSON(fiber.Map{"access": access})
}

// VerifyToken handles POST /api/token/verify
// @Summary Verify a token
// @Tags token
// @Accept json
// @Produce json
// @Param request body object{token=string} true "Token to verify"
// @Success 200 {object} object{}
// @Failure 401 {object} object{error=string}
// @Router /token/verify [post]
func (s *Server) VerifyToken(c *fiber.Ctx) error {
	var req struct {
		Token string `json:"token"`
	}
	if err := c.BodyParser(&req); err != nil || req.Token == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Token is required"))
	}
	if _, err := s.parseToken(req.Token); err != nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized, err)
	}
	return c.JSON(fiber.Map{})
}

// generateToken creates a signed JWT carrying account identity and role.
func (s *Server) generateToken(account *models.Account, tokenType string, ttl time.Duration) (string, error) {
	if s.config.JWTSecret == "" {
		return "", fmt.Errorf("JWT secret not configured")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":        strconv.FormatUint(uint64(account.ID), 10),
		"role":       string(account.Role),
		"token_type": tokenType,
		"iss":        tokenIssuer,
		"aud":        tokenAudience,
		"exp":        now.Add(ttl).Unix(),
		"iat":        now.Unix(),
		"nbf":        now.Unix(),
		"jti":        s.generateJTI(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}

// generateJTI creates a unique JWT ID to prevent replay attacks
func (s *Server) generateJTI() string {
	return fmt.Sprintf("%d-%s", time.Now().Unix(), uuid.New().String()[:8])
}
