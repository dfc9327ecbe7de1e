package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/coverbid/benefits-engine/internal/core/bidding"
	"github.com/coverbid/benefits-engine/internal/core/coverage"
	"github.com/coverbid/benefits-engine/internal/core/employee"
	"github.com/coverbid/benefits-engine/internal/core/identity"
	"github.com/coverbid/benefits-engine/internal/core/plan"
)

// toHTTPError はドメインのセンチネルエラーを HTTP ステータスへ写像します。
// どの種別にも一致しないエラーはそのまま返し、集約エラーハンドラ側で
// 500 として扱われます(一時的なストア障害を含む)。
func toHTTPError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, identity.ErrInvalidName),
		errors.Is(err, identity.ErrInvalidRole),
		errors.Is(err, identity.ErrInvalidID),
		errors.Is(err, employee.ErrInvalidID),
		errors.Is(err, employee.ErrInvalidIdentityID),
		errors.Is(err, employee.ErrInvalidEmployeeCode),
		errors.Is(err, employee.ErrInvalidName),
		errors.Is(err, employee.ErrInvalidAge),
		errors.Is(err, employee.ErrInvalidPlanID),
		errors.Is(err, plan.ErrInvalidID),
		errors.Is(err, plan.ErrInvalidName),
		errors.Is(err, plan.ErrInvalidCategoryName),
		errors.Is(err, plan.ErrInvalidInsurerID),
		errors.Is(err, plan.ErrInvalidSumInsured),
		errors.Is(err, bidding.ErrInvalidID),
		errors.Is(err, bidding.ErrInvalidName),
		errors.Is(err, bidding.ErrInvalidDateRange),
		errors.Is(err, bidding.ErrInvalidPremium),
		errors.Is(err, coverage.ErrInvalidID),
		errors.Is(err, coverage.ErrInvalidCategoryName),
		errors.Is(err, coverage.ErrInvalidMinimum):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, identity.ErrNameAlreadyExists),
		errors.Is(err, employee.ErrEmployeeCodeAlreadyExists),
		errors.Is(err, employee.ErrIdentityAlreadyLinked),
		errors.Is(err, plan.ErrDuplicateTier),
		errors.Is(err, plan.ErrCategoryExists):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, identity.ErrIdentityNotFound),
		errors.Is(err, employee.ErrEmployeeNotFound),
		errors.Is(err, employee.ErrIdentityNotFound),
		errors.Is(err, employee.ErrPlanNotFound),
		errors.Is(err, plan.ErrPlanNotFound),
		errors.Is(err, plan.ErrCategoryNotFound),
		errors.Is(err, plan.ErrInsurerNotFound),
		errors.Is(err, plan.ErrTierNotFound),
		errors.Is(err, bidding.ErrRoundNotFound),
		errors.Is(err, bidding.ErrBidNotFound),
		errors.Is(err, bidding.ErrCategoryNotFound),
		errors.Is(err, bidding.ErrInsurerNotFound),
		errors.Is(err, coverage.ErrEmployeeNotFound),
		errors.Is(err, coverage.ErrCategoryNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	default:
		return err
	}
}
