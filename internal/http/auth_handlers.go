// Package http carries the authentication handlers: registration, login and
// token verification.
package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/marciogabrielsf/Voucher-Crud-Backend/internal/auth"
	"github.com/marciogabrielsf/Voucher-Crud-Backend/internal/domain"
	"github.com/marciogabrielsf/Voucher-Crud-Backend/internal/storage"
)

const bcryptCost = 12

// UserStore is the persistence surface the auth handlers need.
type UserStore interface {
	Insert(ctx context.Context, u *domain.User) error
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByCPF(ctx context.Context, cpf string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
}

type AuthHandler struct {
	Users  UserStore
	Tokens *auth.TokenService
}

type registerRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	CPF             string `json:"cpf"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmpassword"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var body registerRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	if body.Name == "" || body.Email == "" || body.CPF == "" || body.Password == "" || body.ConfirmPassword == "" {
		return codedError(c, fiber.StatusUnprocessableEntity, "user.missing-parameters", "Preencha todos os campos!")
	}
	if body.Password != body.ConfirmPassword {
		return codedError(c, fiber.StatusUnprocessableEntity, "user.password-mismatch", "As senhas não estão iguais")
	}

	ctx := userContext(c)

	if _, err := h.Users.FindByEmail(ctx, body.Email); err == nil {
		return codedError(c, fiber.StatusUnprocessableEntity, "user.email-exists", "Este Email Já está cadastrado")
	} else if !errors.Is(err, storage.ErrNotFound) {
		return serverError(c, err)
	}

	if _, err := h.Users.FindByCPF(ctx, body.CPF); err == nil {
		return codedError(c, fiber.StatusUnprocessableEntity, "user.cpf-exists", "O Cpf já está Cadastrado")
	} else if !errors.Is(err, storage.ErrNotFound) {
		return serverError(c, err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcryptCost)
	if err != nil {
		return serverError(c, err)
	}

	u := &domain.User{
		Name:         body.Name,
		Email:        body.Email,
		CPF:          body.CPF,
		PasswordHash: string(hashed),
	}
	if err := h.Users.Insert(ctx, u); err != nil {
		return serverError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"code":    "user.created-successfully",
		"message": "Usuário Criado com sucesso!",
	})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var body loginRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	if body.Email == "" || body.Password == "" {
		return codedError(c, fiber.StatusUnprocessableEntity, "user.missing-parameters", "Preencha todos os campos!")
	}

	ctx := userContext(c)
	user, err := h.Users.FindByEmail(ctx, body.Email)
	if errors.Is(err, storage.ErrNotFound) {
		return codedError(c, fiber.StatusNotFound, "user.user-not-found", "Usuário Não encontrado.")
	}
	if err != nil {
		return serverError(c, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(body.Password)); err != nil {
		return codedError(c, fiber.StatusUnprocessableEntity, "user.password-mismatch", "Senha inválida.")
	}

	token, err := h.Tokens.Issue(user.ID)
	if err != nil {
		return serverError(c, err)
	}

	return c.JSON(fiber.Map{
		"user":  user,
		"token": token,
	})
}

// Verify returns the sanitized profile of the token's user.
func (h *AuthHandler) Verify(c *fiber.Ctx) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "Acesso Negado!")
	}

	user, err := h.Users.FindByID(userContext(c), userID)
	if errors.Is(err, storage.ErrNotFound) {
		return codedError(c, fiber.StatusNotFound, "user.user-not-found", "Usuário Não encontrado.")
	}
	if err != nil {
		return serverError(c, err)
	}

	return c.JSON(fiber.Map{"user": user})
}

func codedError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{"code": code, "message": message})
}

func serverError(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"code":    "user.server-error",
		"message": "Sem comunicação com o servidor, tente novamente mais tarde.",
		"error":   err.Error(),
	})
}

func userContext(c *fiber.Ctx) context.Context {
	if ctx := c.UserContext(); ctx != nil {
		return ctx
	}
	return context.Background()
}
