package employee

import "errors"

var (
	ErrInvalidID                 = errors.New("employee: invalid id")
	ErrInvalidIdentityID         = errors.New("employee: invalid identity id")
	ErrInvalidEmployeeCode       = errors.New("employee: invalid employee code")
	ErrInvalidName               = errors.New("employee: invalid name")
	ErrInvalidAge                = errors.New("employee: invalid age")
	ErrInvalidPlanID             = errors.New("employee: invalid plan id")
	ErrEmployeeNotFound          = errors.New("employee: not found")
	ErrIdentityNotFound          = errors.New("employee: identity not found")
	ErrPlanNotFound              = errors.New("employee: plan not found")
	ErrEmployeeCodeAlreadyExists = errors.New("employee: employee code already exists")
	ErrIdentityAlreadyLinked     = errors.New("employee: identity already linked to an employee")
)
