package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/coverbid/benefits-engine/internal/core/plan"
)

type createCategoryRequest struct {
	Name string `json:"name"`
}

type createPlanRequest struct {
	Name              string `json:"name"`
	InsurerIdentityID int64  `json:"insurer_identity_id"`
}

type addTierRequest struct {
	CategoryID int64   `json:"category_id"`
	SumInsured float64 `json:"sum_insured"`
}

type tierResponse struct {
	ID         int64   `json:"id"`
	PlanID     int64   `json:"plan_id"`
	CategoryID int64   `json:"category_id"`
	SumInsured float64 `json:"sum_insured"`
}

type planResponse struct {
	ID                int64          `json:"id"`
	Name              string         `json:"name"`
	InsurerIdentityID int64          `json:"insurer_identity_id"`
	Tiers             []tierResponse `json:"tiers,omitempty"`
}

func (a *API) createCategory(c *fiber.Ctx) error {
	var req createCategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	created, err := a.plans.CreateCategory(c.Context(), plan.CreateCategoryInput{Name: req.Name})
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":   created.ID,
		"name": created.Name,
	})
}

func (a *API) listCategories(c *fiber.Ctx) error {
	categories, err := a.plans.ListCategories(c.Context())
	if err != nil {
		return toHTTPError(err)
	}

	responses := make([]fiber.Map, 0, len(categories))
	for _, category := range categories {
		responses = append(responses, fiber.Map{
			"id":   category.ID,
			"name": category.Name,
		})
	}

	return c.JSON(fiber.Map{"categories": responses, "count": len(responses)})
}

func (a *API) createPlan(c *fiber.Ctx) error {
	var req createPlanRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	created, err := a.plans.CreatePlan(c.Context(), plan.CreatePlanInput{
		Name:              req.Name,
		InsurerIdentityID: req.InsurerIdentityID,
	})
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(toPlanResponse(created))
}

func (a *API) getPlan(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	found, err := a.plans.GetPlan(c.Context(), plan.GetPlanInput{ID: id})
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(toPlanResponse(found))
}

func (a *API) listPlans(c *fiber.Ctx) error {
	var insurerPtr *int64
	if raw := c.QueryInt("insurer_id", 0); raw > 0 {
		insurerID := int64(raw)
		insurerPtr = &insurerID
	}

	plans, err := a.plans.ListPlans(c.Context(), plan.ListPlansInput{InsurerIdentityID: insurerPtr})
	if err != nil {
		return toHTTPError(err)
	}

	responses := make([]planResponse, 0, len(plans))
	for _, p := range plans {
		responses = append(responses, toPlanResponse(p))
	}

	return c.JSON(fiber.Map{"plans": responses, "count": len(responses)})
}

func (a *API) addTier(c *fiber.Ctx) error {
	planID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req addTierRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	created, err := a.plans.AddTier(c.Context(), plan.AddTierInput{
		PlanID:     planID,
		CategoryID: req.CategoryID,
		SumInsured: req.SumInsured,
	})
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(toTierResponse(*created))
}

func (a *API) removeTier(c *fiber.Ctx) error {
	tierID, err := paramID(c, "tierId")
	if err != nil {
		return err
	}

	if err := a.plans.RemoveTier(c.Context(), plan.RemoveTierInput{TierID: tierID}); err != nil {
		return toHTTPError(err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func toPlanResponse(p *plan.Plan) planResponse {
	tiers := make([]tierResponse, 0, len(p.Tiers))
	for _, tier := range p.Tiers {
		tiers = append(tiers, toTierResponse(tier))
	}

	return planResponse{
		ID:                p.ID,
		Name:              p.Name,
		InsurerIdentityID: p.InsurerIdentityID,
		Tiers:             tiers,
	}
}

func toTierResponse(tier plan.Tier) tierResponse {
	return tierResponse{
		ID:         tier.ID,
		PlanID:     tier.PlanID,
		CategoryID: tier.CategoryID,
		SumInsured: tier.SumInsured,
	}
}
