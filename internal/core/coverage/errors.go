package coverage

import "errors"

var (
	ErrInvalidID           = errors.New("coverage: invalid employee id")
	ErrInvalidCategoryName = errors.New("coverage: invalid category name")
	ErrInvalidMinimum      = errors.New("coverage: minimum amount must not be negative")
	ErrEmployeeNotFound    = errors.New("coverage: employee not found")
	ErrCategoryNotFound    = errors.New("coverage: category not found")
)
