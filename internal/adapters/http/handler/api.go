package handler

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/coverbid/benefits-engine/internal/core/bidding"
	"github.com/coverbid/benefits-engine/internal/core/coverage"
	"github.com/coverbid/benefits-engine/internal/core/employee"
	"github.com/coverbid/benefits-engine/internal/core/identity"
	"github.com/coverbid/benefits-engine/internal/core/plan"
)

// API はドメインユースケースを HTTP ルートへ束ねます。
type API struct {
	identities identity.UseCase
	employees  employee.UseCase
	plans      plan.UseCase
	bids       bidding.UseCase
	coverage   coverage.UseCase
	log        *zap.Logger
}

// NewAPI は API を生成します。
func NewAPI(
	identities identity.UseCase,
	employees employee.UseCase,
	plans plan.UseCase,
	bids bidding.UseCase,
	cov coverage.UseCase,
	log *zap.Logger,
) *API {
	if log == nil {
		log = zap.NewNop()
	}
	return &API{
		identities: identities,
		employees:  employees,
		plans:      plans,
		bids:       bids,
		coverage:   cov,
		log:        log,
	}
}

// Register はすべてのルートを登録します。
func (a *API) Register(router fiber.Router) {
	v1 := router.Group("/api/v1")

	identities := v1.Group("/identities")
	identities.Post("/", a.createIdentity)
	identities.Get("/", a.listIdentities)
	identities.Get("/:id", a.getIdentity)

	employees := v1.Group("/employees")
	employees.Post("/", a.createEmployee)
	employees.Get("/", a.listEmployees)
	employees.Get("/:id", a.getEmployee)
	employees.Patch("/:id", a.updateEmployee)
	employees.Delete("/:id", a.deleteEmployee)
	employees.Put("/:id/plans", a.assignPlans)
	employees.Get("/:id/plans", a.listAssignments)
	employees.Get("/:id/coverage", a.resolveCoverage)

	categories := v1.Group("/categories")
	categories.Post("/", a.createCategory)
	categories.Get("/", a.listCategories)

	plans := v1.Group("/plans")
	plans.Post("/", a.createPlan)
	plans.Get("/", a.listPlans)
	plans.Get("/:id", a.getPlan)
	plans.Post("/:id/tiers", a.addTier)
	plans.Delete("/tiers/:tierId", a.removeTier)

	rounds := v1.Group("/rounds")
	rounds.Post("/", a.createRound)
	rounds.Get("/", a.listRounds)
	rounds.Get("/:id", a.getRound)
	rounds.Get("/:id/bids", a.listBids)
	rounds.Get("/:id/comparison", a.compareBids)

	bids := v1.Group("/bids")
	bids.Post("/", a.submitBid)
	bids.Patch("/:id", a.reviseBid)

	compliance := v1.Group("/compliance")
	compliance.Get("/non-compliant", a.findNonCompliant)

	reports := v1.Group("/reports")
	reports.Get("/categories", a.categoryReport)
}

// ErrorHandler は fiber の集約エラーハンドラです。ドメインエラーは
// toHTTPError で変換済みのステータスを持ち、それ以外は 500 になります。
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}

func paramID(c *fiber.Ctx, name string) (int64, error) {
	id, err := c.ParamsInt(name)
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid "+name)
	}
	return int64(id), nil
}

// bodyHasKey は JSON ボディにキーが明示されているかを判定します。
// null 指定と省略を区別する部分更新で使用します。
func bodyHasKey(body []byte, key string) bool {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return false
	}
	_, ok := fields[key]
	return ok
}
