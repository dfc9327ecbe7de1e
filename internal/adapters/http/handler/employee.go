package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/coverbid/benefits-engine/internal/core/employee"
)

type createEmployeeRequest struct {
	IdentityID int64  `json:"identity_id"`
	Code       string `json:"code"`
	Name       string `json:"name"`
	Department string `json:"department"`
	Age        *int   `json:"age"`
	Gender     string `json:"gender"`
}

// updateEmployeeRequest は更新可能な項目だけを列挙します。省略された項目は
// 変更されません。age は null 指定でクリアできます。
type updateEmployeeRequest struct {
	Name       *string `json:"name"`
	Department *string `json:"department"`
	Age        *int    `json:"age"`
	AgeSet     bool    `json:"-"`
	Gender     *string `json:"gender"`
}

type assignPlansRequest struct {
	PlanIDs []int64 `json:"plan_ids"`
}

type employeeResponse struct {
	ID         int64     `json:"id"`
	IdentityID int64     `json:"identity_id"`
	Code       string    `json:"code"`
	Name       string    `json:"name"`
	Department string    `json:"department,omitempty"`
	Age        *int      `json:"age,omitempty"`
	Gender     string    `json:"gender,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type assignmentResponse struct {
	PlanID     int64     `json:"plan_id"`
	BatchRef   string    `json:"batch_ref"`
	AssignedAt time.Time `json:"assigned_at"`
}

func (a *API) createEmployee(c *fiber.Ctx) error {
	var req createEmployeeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	created, err := a.employees.CreateEmployee(c.Context(), employee.CreateEmployeeInput{
		IdentityID: req.IdentityID,
		Code:       req.Code,
		Name:       req.Name,
		Department: req.Department,
		Age:        req.Age,
		Gender:     req.Gender,
	})
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(toEmployeeResponse(created))
}

func (a *API) getEmployee(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	found, err := a.employees.GetEmployee(c.Context(), employee.GetEmployeeInput{ID: id})
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(toEmployeeResponse(found))
}

func (a *API) listEmployees(c *fiber.Ctx) error {
	var departmentPtr *string
	if raw := c.Query("department"); raw != "" {
		departmentPtr = &raw
	}

	employees, err := a.employees.ListEmployees(c.Context(), employee.ListEmployeesInput{
		Department: departmentPtr,
		Limit:      c.QueryInt("limit", 0),
		Offset:     c.QueryInt("offset", 0),
	})
	if err != nil {
		return toHTTPError(err)
	}

	responses := make([]employeeResponse, 0, len(employees))
	for _, emp := range employees {
		responses = append(responses, toEmployeeResponse(emp))
	}

	return c.JSON(fiber.Map{"employees": responses, "count": len(responses)})
}

func (a *API) updateEmployee(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req updateEmployeeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	// BodyParser では age:null と age 省略を区別できないため、キーの有無を
	// 生の JSON から判定します。
	ageSet := bodyHasKey(c.Body(), "age")

	updated, err := a.employees.UpdateEmployee(c.Context(), employee.UpdateEmployeeInput{
		ID:         id,
		Name:       req.Name,
		Department: req.Department,
		Age:        req.Age,
		AgeSet:     ageSet,
		Gender:     req.Gender,
	})
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(toEmployeeResponse(updated))
}

func (a *API) deleteEmployee(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	if err := a.employees.DeleteEmployee(c.Context(), employee.DeleteEmployeeInput{ID: id}); err != nil {
		return toHTTPError(err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (a *API) assignPlans(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req assignPlansRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	result, err := a.employees.AssignPlans(c.Context(), employee.AssignPlansInput{
		EmployeeID: id,
		PlanIDs:    req.PlanIDs,
	})
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(fiber.Map{
		"removed":   result.Removed,
		"assigned":  result.Assigned,
		"batch_ref": result.BatchRef.String(),
	})
}

func (a *API) listAssignments(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	assignments, err := a.employees.ListAssignments(c.Context(), employee.ListAssignmentsInput{EmployeeID: id})
	if err != nil {
		return toHTTPError(err)
	}

	responses := make([]assignmentResponse, 0, len(assignments))
	for _, asg := range assignments {
		responses = append(responses, assignmentResponse{
			PlanID:     asg.PlanID,
			BatchRef:   asg.BatchRef.String(),
			AssignedAt: asg.AssignedAt,
		})
	}

	return c.JSON(fiber.Map{"assignments": responses, "count": len(responses)})
}

func toEmployeeResponse(emp *employee.Employee) employeeResponse {
	return employeeResponse{
		ID:         emp.ID,
		IdentityID: emp.IdentityID,
		Code:       emp.Code,
		Name:       emp.Name,
		Department: emp.Department,
		Age:        emp.Age,
		Gender:     emp.Gender,
		CreatedAt:  emp.CreatedAt,
		UpdatedAt:  emp.UpdatedAt,
	}
}
