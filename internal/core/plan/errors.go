package plan

import "errors"

var (
	ErrInvalidID           = errors.New("plan: invalid id")
	ErrInvalidName         = errors.New("plan: invalid name")
	ErrInvalidCategoryName = errors.New("plan: invalid category name")
	ErrInvalidInsurerID    = errors.New("plan: invalid insurer id")
	ErrInvalidSumInsured   = errors.New("plan: sum insured must not be negative")
	ErrPlanNotFound        = errors.New("plan: not found")
	ErrCategoryNotFound    = errors.New("plan: category not found")
	ErrInsurerNotFound     = errors.New("plan: insurer identity not found")
	ErrTierNotFound        = errors.New("plan: tier not found")
	ErrDuplicateTier       = errors.New("plan: tier already declared for category")
	ErrCategoryExists      = errors.New("plan: category name already exists")
)
