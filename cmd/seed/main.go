package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/coverbid/benefits-engine/internal/adapters/repository/postgres"
	"github.com/coverbid/benefits-engine/internal/core/bidding"
	"github.com/coverbid/benefits-engine/internal/core/employee"
	"github.com/coverbid/benefits-engine/internal/core/identity"
	"github.com/coverbid/benefits-engine/internal/core/plan"
	"github.com/coverbid/benefits-engine/internal/platform/config"
	pg "github.com/coverbid/benefits-engine/internal/platform/db/postgres"
)

// 開発用の初期データを投入します。既にアイデンティティが存在する場合は
// 何もせず終了します。
func main() {
	ctx := context.Background()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "assets/local.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	dbPool, err := pg.NewPool(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("failed to initialize database pool: %v", err)
	}
	defer dbPool.Close()

	txManager := pg.NewTransactionManager(dbPool)

	identitySvc := identity.NewService(postgres.NewIdentityRepository(dbPool), nil)
	employeeSvc := employee.NewService(postgres.NewEmployeeRepository(dbPool), nil, txManager)
	planSvc := plan.NewService(postgres.NewPlanRepository(dbPool), nil)
	biddingSvc := bidding.NewService(postgres.NewBiddingRepository(dbPool), nil, txManager)

	if err := seed(ctx, identitySvc, employeeSvc, planSvc, biddingSvc); err != nil {
		log.Fatalf("seed failed: %v", err)
	}
}

func seed(
	ctx context.Context,
	identitySvc *identity.Service,
	employeeSvc *employee.Service,
	planSvc *plan.Service,
	biddingSvc *bidding.Service,
) error {
	existing, err := identitySvc.ListIdentities(ctx, identity.ListIdentitiesInput{})
	if err != nil {
		return fmt.Errorf("check existing identities: %w", err)
	}
	if len(existing) > 0 {
		log.Printf("seed skipped: %d identities already present", len(existing))
		return nil
	}

	admin, err := identitySvc.CreateIdentity(ctx, identity.CreateIdentityInput{Name: "HR Admin", Role: identity.RoleAdmin})
	if err != nil {
		return err
	}
	aia, err := identitySvc.CreateIdentity(ctx, identity.CreateIdentityInput{Name: "AIA", Role: identity.RoleInsurer})
	if err != nil {
		return err
	}
	singlife, err := identitySvc.CreateIdentity(ctx, identity.CreateIdentityInput{Name: "Singlife", Role: identity.RoleInsurer})
	if err != nil {
		return err
	}
	sally, err := identitySvc.CreateIdentity(ctx, identity.CreateIdentityInput{Name: "Sally Employee", Role: identity.RoleEmployee})
	if err != nil {
		return err
	}
	log.Printf("created identities: admin=%d insurers=%d,%d employee=%d", admin.ID, aia.ID, singlife.ID, sally.ID)

	categories := map[string]int64{}
	for _, name := range []string{"GTL", "GCI", "GHS", "GPA", "FWMI"} {
		cat, err := planSvc.CreateCategory(ctx, plan.CreateCategoryInput{Name: name})
		if err != nil {
			return fmt.Errorf("create category %s: %w", name, err)
		}
		categories[name] = cat.ID
	}

	planA, err := planSvc.CreatePlan(ctx, plan.CreatePlanInput{Name: "Plan A - AIA", InsurerIdentityID: aia.ID})
	if err != nil {
		return err
	}
	planB, err := planSvc.CreatePlan(ctx, plan.CreatePlanInput{Name: "Plan B - Singlife", InsurerIdentityID: singlife.ID})
	if err != nil {
		return err
	}

	tiers := []struct {
		planID   int64
		category string
		sum      float64
	}{
		{planA.ID, "GTL", 30000},
		{planA.ID, "GCI", 10000},
		{planA.ID, "GHS", 70000},
		{planA.ID, "GPA", 5000},
		{planA.ID, "FWMI", 60000},
		{planB.ID, "GTL", 25000},
		{planB.ID, "GCI", 8000},
		{planB.ID, "GHS", 50000},
		{planB.ID, "GPA", 3000},
		{planB.ID, "FWMI", 65000},
	}
	for _, t := range tiers {
		if _, err := planSvc.AddTier(ctx, plan.AddTierInput{
			PlanID:     t.planID,
			CategoryID: categories[t.category],
			SumInsured: t.sum,
		}); err != nil {
			return fmt.Errorf("add tier %s to plan %d: %w", t.category, t.planID, err)
		}
	}

	age := 35
	emp, err := employeeSvc.CreateEmployee(ctx, employee.CreateEmployeeInput{
		IdentityID: sally.ID,
		Code:       "EE001",
		Name:       "Sally Employee",
		Department: "HR",
		Age:        &age,
		Gender:     "Female",
	})
	if err != nil {
		return err
	}

	if _, err := employeeSvc.AssignPlans(ctx, employee.AssignPlansInput{
		EmployeeID: emp.ID,
		PlanIDs:    []int64{planA.ID, planB.ID},
	}); err != nil {
		return err
	}

	start := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)
	round, err := biddingSvc.CreateRound(ctx, bidding.CreateRoundInput{
		Name:      "2025 Renewal Round 1",
		StartDate: &start,
		EndDate:   &end,
	})
	if err != nil {
		return err
	}

	bids := []struct {
		insurerID int64
		category  string
		premium   float64
	}{
		{aia.ID, "GTL", 12.50},
		{aia.ID, "GCI", 18.00},
		{aia.ID, "GHS", 42.00},
		{singlife.ID, "GTL", 11.00},
		{singlife.ID, "GCI", 19.00},
		{singlife.ID, "GHS", 36.00},
	}
	for _, b := range bids {
		if _, err := biddingSvc.SubmitBid(ctx, bidding.SubmitBidInput{
			RoundID:           round.ID,
			InsurerIdentityID: b.insurerID,
			CategoryID:        categories[b.category],
			Premium:           b.premium,
		}); err != nil {
			return fmt.Errorf("submit bid %s by %d: %w", b.category, b.insurerID, err)
		}
	}

	log.Printf("seed completed: employee=%s round=%s", emp.Code, round.Name)
	return nil
}
