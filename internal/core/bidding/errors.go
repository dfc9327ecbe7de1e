package bidding

import "errors"

var (
	ErrInvalidID        = errors.New("bidding: invalid id")
	ErrInvalidName      = errors.New("bidding: invalid round name")
	ErrInvalidDateRange = errors.New("bidding: end date before start date")
	ErrInvalidPremium   = errors.New("bidding: premium must not be negative")
	ErrRoundNotFound    = errors.New("bidding: round not found")
	ErrBidNotFound      = errors.New("bidding: bid not found")
	ErrCategoryNotFound = errors.New("bidding: category not found")
	ErrInsurerNotFound  = errors.New("bidding: insurer identity not found")
)
