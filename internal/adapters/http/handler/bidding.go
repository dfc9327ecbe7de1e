package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/coverbid/benefits-engine/internal/core/bidding"
)

const dateLayout = "2006-01-02"

type createRoundRequest struct {
	Name      string `json:"name"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type submitBidRequest struct {
	RoundID           int64   `json:"round_id"`
	InsurerIdentityID int64   `json:"insurer_identity_id"`
	CategoryID        int64   `json:"category_id"`
	Premium           float64 `json:"premium"`
}

type reviseBidRequest struct {
	Premium float64 `json:"premium"`
}

type roundResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
}

type bidResponse struct {
	ID                int64     `json:"id"`
	RoundID           int64     `json:"round_id"`
	InsurerIdentityID int64     `json:"insurer_identity_id"`
	CategoryID        int64     `json:"category_id"`
	Premium           float64   `json:"premium"`
	CreatedAt         time.Time `json:"created_at"`
}

type comparisonResponse struct {
	Category string  `json:"category"`
	Insurer  string  `json:"insurer"`
	Premium  float64 `json:"premium"`
}

func (a *API) createRound(c *fiber.Ctx) error {
	var req createRoundRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	startDate, err := parseDate(req.StartDate)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "start_date: expected YYYY-MM-DD")
	}

	endDate, err := parseDate(req.EndDate)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "end_date: expected YYYY-MM-DD")
	}

	created, err := a.bids.CreateRound(c.Context(), bidding.CreateRoundInput{
		Name:      req.Name,
		StartDate: startDate,
		EndDate:   endDate,
	})
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(toRoundResponse(created))
}

func (a *API) getRound(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	found, err := a.bids.GetRound(c.Context(), bidding.GetRoundInput{ID: id})
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(toRoundResponse(found))
}

func (a *API) listRounds(c *fiber.Ctx) error {
	rounds, err := a.bids.ListRounds(c.Context())
	if err != nil {
		return toHTTPError(err)
	}

	responses := make([]roundResponse, 0, len(rounds))
	for _, round := range rounds {
		responses = append(responses, toRoundResponse(round))
	}

	return c.JSON(fiber.Map{"rounds": responses, "count": len(responses)})
}

func (a *API) submitBid(c *fiber.Ctx) error {
	var req submitBidRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	created, err := a.bids.SubmitBid(c.Context(), bidding.SubmitBidInput{
		RoundID:           req.RoundID,
		InsurerIdentityID: req.InsurerIdentityID,
		CategoryID:        req.CategoryID,
		Premium:           req.Premium,
	})
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(toBidResponse(created))
}

func (a *API) reviseBid(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req reviseBidRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	revised, err := a.bids.ReviseBid(c.Context(), bidding.ReviseBidInput{
		BidID:   id,
		Premium: req.Premium,
	})
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(toBidResponse(revised))
}

func (a *API) listBids(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	rows, err := a.bids.ListBids(c.Context(), bidding.ListBidsInput{RoundID: id})
	if err != nil {
		return toHTTPError(err)
	}

	responses := make([]fiber.Map, 0, len(rows))
	for _, row := range rows {
		responses = append(responses, fiber.Map{
			"bid_id":     row.BidID,
			"category":   row.CategoryName,
			"insurer":    row.InsurerName,
			"premium":    row.Premium,
			"created_at": row.CreatedAt,
		})
	}

	return c.JSON(fiber.Map{"bids": responses, "count": len(responses)})
}

func (a *API) compareBids(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	comparisons, err := a.bids.CompareBids(c.Context(), bidding.CompareBidsInput{RoundID: id})
	if err != nil {
		return toHTTPError(err)
	}

	responses := make([]comparisonResponse, 0, len(comparisons))
	for _, comparison := range comparisons {
		responses = append(responses, comparisonResponse{
			Category: comparison.CategoryName,
			Insurer:  comparison.InsurerName,
			Premium:  comparison.Premium,
		})
	}

	return c.JSON(fiber.Map{"comparisons": responses, "count": len(responses)})
}

func toRoundResponse(round *bidding.Round) roundResponse {
	resp := roundResponse{ID: round.ID, Name: round.Name}
	if round.StartDate != nil {
		resp.StartDate = round.StartDate.Format(dateLayout)
	}
	if round.EndDate != nil {
		resp.EndDate = round.EndDate.Format(dateLayout)
	}
	return resp
}

func toBidResponse(bid *bidding.Bid) bidResponse {
	return bidResponse{
		ID:                bid.ID,
		RoundID:           bid.RoundID,
		InsurerIdentityID: bid.InsurerIdentityID,
		CategoryID:        bid.CategoryID,
		Premium:           bid.Premium,
		CreatedAt:         bid.CreatedAt,
	}
}

func parseDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
