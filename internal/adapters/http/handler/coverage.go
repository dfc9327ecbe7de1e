package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/coverbid/benefits-engine/internal/core/coverage"
)

type coverageEntryResponse struct {
	Category     string  `json:"category"`
	SumInsured   float64 `json:"sum_insured"`
	SourcePlanID int64   `json:"source_plan_id"`
}

type nonCompliantResponse struct {
	EmployeeID   int64    `json:"employee_id"`
	EmployeeName string   `json:"employee_name"`
	Coverage     *float64 `json:"coverage"`
	Reason       string   `json:"reason"`
}

func (a *API) resolveCoverage(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	entries, err := a.coverage.ResolveCoverage(c.Context(), coverage.ResolveCoverageInput{EmployeeID: id})
	if err != nil {
		return toHTTPError(err)
	}

	responses := make([]coverageEntryResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, coverageEntryResponse{
			Category:     entry.CategoryName,
			SumInsured:   entry.SumInsured,
			SourcePlanID: entry.SourcePlanID,
		})
	}

	return c.JSON(fiber.Map{"coverage": responses, "count": len(responses)})
}

func (a *API) findNonCompliant(c *fiber.Ctx) error {
	category := c.Query("category")
	if category == "" {
		return fiber.NewError(fiber.StatusBadRequest, "category query parameter is required")
	}

	minimum, err := strconv.ParseFloat(c.Query("minimum", "0"), 64)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "minimum must be a number")
	}

	violators, err := a.coverage.FindNonCompliant(c.Context(), coverage.FindNonCompliantInput{
		CategoryName:  category,
		MinimumAmount: minimum,
	})
	if err != nil {
		return toHTTPError(err)
	}

	responses := make([]nonCompliantResponse, 0, len(violators))
	for _, violator := range violators {
		responses = append(responses, nonCompliantResponse{
			EmployeeID:   violator.EmployeeID,
			EmployeeName: violator.EmployeeName,
			Coverage:     violator.Coverage,
			Reason:       string(violator.Reason),
		})
	}

	return c.JSON(fiber.Map{"non_compliant": responses, "count": len(responses)})
}

func (a *API) categoryReport(c *fiber.Ctx) error {
	counts, err := a.coverage.CategoryReport(c.Context())
	if err != nil {
		return toHTTPError(err)
	}

	responses := make([]fiber.Map, 0, len(counts))
	for _, count := range counts {
		responses = append(responses, fiber.Map{
			"category":   count.CategoryName,
			"tier_count": count.TierCount,
		})
	}

	return c.JSON(fiber.Map{"categories": responses, "count": len(responses)})
}
