package server

import (
	"homestead/internal/models"
	"homestead/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Register handles POST /api/users/register
// @Summary Register a user account
// @Tags users
// @Accept json
// @Produce json
// @Param request body object{name=string,email=string,password=string,confirm_password=string} true "Registration"
// @Success 201 {object} object{user=models.Account}
// @Failure 400 {object} object{error=string}
// @Router /users/register [post]
func (s *Server) Register(c *fiber.Ctx) error {
	var req struct {
		Name            string `json:"name"`
		Email           string `json:"email"`
		Password        string `json:"password"`
		ConfirmPassword string `json:"confirm_password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	account, err := s.accountService.RegisterUser(c.Context(), service.RegisterInput{
		Name:            req.Name,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		// A taken email is the caller's mistake here, not a server fault.
		if models.HasCode(err, models.CodeConflict) {
			return models.RespondWithError(c, fiber.StatusBadRequest, err)
		}
		return fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"user": account})
}

// RegisterRealtor handles POST /api/users/register/realtor
// @Summary Register a realtor account
// @Tags users
// @Accept json
// @Produce json
// @Param request body object{name=string,email=string,password=string,phone=string,company_name=string,license_number=string,bio=string} true "Realtor registration"
// @Success 201 {object} object{user=models.Account}
// @Failure 400 {object} object{error=string}
// @Router /users/register/realtor [post]
func (s *Server) RegisterRealtor(c *fiber.Ctx) error {
	var req struct {
		Name          string `json:"name"`
		Email         string `json:"email"`
		Password      string `json:"password"`
		Phone         string `json:"phone"`
		CompanyName   string `json:"company_name"`
		LicenseNumber string `json:"license_number"`
		Bio           string `json:"bio"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	account, err := s.accountService.RegisterRealtor(c.Context(), service.RegisterRealtorInput{
		Name:          req.Name,
		Email:         req.Email,
		Password:      req.Password,
		Phone:         req.Phone,
		CompanyName:   req.CompanyName,
		LicenseNumber: req.LicenseNumber,
		Bio:           req.Bio,
	})
	if err != nil {
		if models.HasCode(err, models.CodeConflict) {
			return models.RespondWithError(c, fiber.StatusBadRequest, err)
		}
		return fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"user": account})
}

// GetMe handles GET /api/users/me
// @Summary Get the authenticated account
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{user=models.Account}
// @Failure 401 {object} object{error=string}
// @Router /users/me [get]
func (s *Server) GetMe(c *fiber.Ctx) error {
	account, err := s.accountService.Get(c.Context(), currentAccountID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"user": account})
}

// UpdateMe handles PATCH /api/users/me
// @Summary Update name and/or email
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{name=string,email=string} true "Partial profile update"
// @Success 200 {object} object{user=models.Account}
// @Failure 400 {object} object{error=string}
// @Router /users/me [patch]
func (s *Server) UpdateMe(c *fiber.Ctx) error {
	var req struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	account, err := s.accountService.UpdateProfile(c.Context(), service.UpdateAccountInput{
		AccountID: currentAccountID(c),
		Name:      req.Name,
		Email:     req.Email,
	})
	if err != nil {
		if models.HasCode(err, models.CodeConflict) {
			return models.RespondWithError(c, fiber.StatusBadRequest, err)
		}
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"user": account})
}

// ChangePassword handles PUT /api/users/me
// @Summary Change password
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{old_password=string,new_password=string} true "Password change"
// @Success 200 {object} object{success=string}
// @Failure 400 {object} object{error=string}
// @Router /users/me [put]
func (s *Server) ChangePassword(c *fiber.Ctx) error {
	var req struct {
		OldPassword string `json:"old_password"`
		NewPassword string `json:"new_password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.OldPassword == "" || req.NewPassword == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Old and new passwords are required"))
	}

	err := s.accountService.ChangePassword(c.Context(), currentAccountID(c), req.OldPassword, req.NewPassword)
	if err != nil {
		// A wrong old password is reported as a 400, not a 401: the
		// bearer credential itself is fine.
		if models.HasCode(err, models.CodeUnauthorized) {
			return models.RespondWithError(c, fiber.StatusBadRequest, err)
		}
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": "Password updated successfully"})
}

// DeleteMe handles DELETE /api/users/me
// @Summary Delete the authenticated account
// @Tags users
// @Accept json
// @Security BearerAuth
// @Param request body object{password=string} true "Password confirmation"
// @Success 204
// @Failure 400 {object} object{error=string}
// @Failure 403 {object} object{error=string}
// @Router /users/me [delete]
func (s *Server) DeleteMe(c *fiber.Ctx) error {
	var req struct {
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil || req.Password == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Password is required"))
	}

	if err := s.accountService.DeleteSelf(c.Context(), currentAccountID(c), req.Password); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
