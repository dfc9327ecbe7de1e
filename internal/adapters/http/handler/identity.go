package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/coverbid/benefits-engine/internal/core/identity"
)

type createIdentityRequest struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

type identityResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (a *API) createIdentity(c *fiber.Ctx) error {
	var req createIdentityRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	created, err := a.identities.CreateIdentity(c.Context(), identity.CreateIdentityInput{
		Name: req.Name,
		Role: identity.Role(req.Role),
	})
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(toIdentityResponse(created))
}

func (a *API) getIdentity(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	found, err := a.identities.GetIdentity(c.Context(), identity.GetIdentityInput{ID: id})
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(toIdentityResponse(found))
}

func (a *API) listIdentities(c *fiber.Ctx) error {
	var rolePtr *identity.Role
	if raw := c.Query("role"); raw != "" {
		role := identity.Role(raw)
		rolePtr = &role
	}

	identities, err := a.identities.ListIdentities(c.Context(), identity.ListIdentitiesInput{Role: rolePtr})
	if err != nil {
		return toHTTPError(err)
	}

	responses := make([]identityResponse, 0, len(identities))
	for _, ident := range identities {
		responses = append(responses, toIdentityResponse(ident))
	}

	return c.JSON(fiber.Map{"identities": responses, "count": len(responses)})
}

func toIdentityResponse(ident *identity.Identity) identityResponse {
	return identityResponse{
		ID:        ident.ID,
		Name:      ident.Name,
		Role:      string(ident.Role),
		CreatedAt: ident.CreatedAt,
		UpdatedAt: ident.UpdatedAt,
	}
}
