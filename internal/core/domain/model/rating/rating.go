package rating

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"waterline/internal/core/domain/model/kernel"
	"waterline/internal/core/domain/model/order"
	"waterline/internal/pkg/errs"
)

const (
	MinScore        = 1
	MaxScore        = 5
	MaxReviewLength = 500
)

var (
	ErrOrderNotDelivered      = errors.New("order is not delivered")
	ErrDuplicateRating        = errors.New("order is already rated")
	ErrResponseAlreadyExists  = errors.New("fulfiller response already exists")
	ErrRatingIsNotConstructed = errors.New("Rating must be created via NewRating or RestoreRating")
)

// Response is the fulfiller's single public reply to a rating.
type Response struct {
	Text        string
	RespondedAt time.Time
}

// Rating is the requester's verdict on one delivered order.
type Rating struct {
	id            kernel.UUID
	orderID       kernel.UUID
	requesterID   kernel.UUID
	fulfillerID   kernel.UUID
	score         int
	review        string
	categories    Categories
	helpfulVoters []kernel.UUID
	response      *Response
	createdAt     time.Time

	isConstructed bool
}

// State carries every persisted field of a Rating. Used by RestoreRating.
type State struct {
	ID            kernel.UUID
	OrderID       kernel.UUID
	RequesterID   kernel.UUID
	FulfillerID   kernel.UUID
	Score         int
	Review        string
	Categories    Categories
	HelpfulVoters []kernel.UUID
	Response      *Response
	CreatedAt     time.Time
}

// NewRating rates o on behalf of actor. The actor must be the order's
// requester and the order must sit in workflow's delivered status.
func NewRating(
	id kernel.UUID,
	o *order.Order,
	workflow order.Workflow,
	actor kernel.Actor,
	score int,
	review string,
	categories Categories,
	now time.Time,
) (*Rating, error) {
	if err := errors.Join(o.Validate(), actor.Validate()); err != nil {
		return nil, err
	}
	if !o.IsRequester(actor) {
		return nil, errs.NewForbiddenError(actor.String(), fmt.Sprintf("rate order %s", o.ID()))
	}
	if o.Status() != workflow.Delivered() {
		return nil, fmt.Errorf("%w: order %s is %s", ErrOrderNotDelivered, o.ID(), o.Status())
	}

	return RestoreRating(State{
		ID:          id,
		OrderID:     o.ID(),
		RequesterID: o.RequesterID(),
		FulfillerID: o.FulfillerID(),
		Score:       score,
		Review:      review,
		Categories:  categories,
		CreatedAt:   now,
	})
}

// RestoreRating rebuilds a rating loaded from storage.
func RestoreRating(state State) (*Rating, error) {
	review := strings.TrimSpace(state.Review)

	var categoriesErr error
	for c, s := range state.Categories {
		categoriesErr = errors.Join(categoriesErr, c.Validate(), validateScore(string(c), s))
	}

	if err := errors.Join(
		state.ID.Validate(),
		state.OrderID.Validate(),
		state.RequesterID.Validate(),
		state.FulfillerID.Validate(),
		validateScore("score", state.Score),
		validateText("review", review),
		categoriesErr,
	); err != nil {
		return nil, err
	}

	var response *Response
	if state.Response != nil {
		r := *state.Response
		response = &r
	}

	return &Rating{
		id:            state.ID,
		orderID:       state.OrderID,
		requesterID:   state.RequesterID,
		fulfillerID:   state.FulfillerID,
		score:         state.Score,
		review:        review,
		categories:    state.Categories.Clone(),
		helpfulVoters: slices.Clone(state.HelpfulVoters),
		response:      response,
		createdAt:     state.CreatedAt,
		isConstructed: true,
	}, nil
}

func (r *Rating) Validate() error {
	if r == nil || !r.isConstructed {
		return ErrRatingIsNotConstructed
	}
	return nil
}

func (r *Rating) ID() kernel.UUID {
	return r.id
}

func (r *Rating) OrderID() kernel.UUID {
	return r.orderID
}

func (r *Rating) RequesterID() kernel.UUID {
	return r.requesterID
}

func (r *Rating) FulfillerID() kernel.UUID {
	return r.fulfillerID
}

func (r *Rating) Score() int {
	return r.score
}

func (r *Rating) Review() string {
	return r.review
}

func (r *Rating) Categories() Categories {
	return r.categories.Clone()
}

func (r *Rating) HelpfulVoters() []kernel.UUID {
	return slices.Clone(r.helpfulVoters)
}

func (r *Rating) HelpfulCount() int {
	return len(r.helpfulVoters)
}

// Response returns nil until the fulfiller has replied.
func (r *Rating) Response() *Response {
	if r.response == nil {
		return nil
	}
	resp := *r.response
	return &resp
}

func (r *Rating) CreatedAt() time.Time {
	return r.createdAt
}

// MarkHelpful counts voter once. It reports whether the vote was new.
func (r *Rating) MarkHelpful(voter kernel.UUID) (bool, error) {
	if err := errors.Join(r.Validate(), voter.Validate()); err != nil {
		return false, err
	}
	if slices.ContainsFunc(r.helpfulVoters, voter.IsEqual) {
		return false, nil
	}
	r.helpfulVoters = append(r.helpfulVoters, voter)
	return true, nil
}

// AddResponse attaches the rated fulfiller's reply. A second reply is
// forbidden and also matches ErrResponseAlreadyExists.
func (r *Rating) AddResponse(actor kernel.Actor, text string, now time.Time) error {
	if err := errors.Join(r.Validate(), actor.Validate()); err != nil {
		return err
	}
	if actor.Role() != kernel.Fulfiller || !actor.ID().IsEqual(r.fulfillerID) {
		return errs.NewForbiddenError(actor.String(), fmt.Sprintf("respond to rating %s", r.id))
	}
	if r.response != nil {
		return errors.Join(
			errs.NewForbiddenError(actor.String(), fmt.Sprintf("respond again to rating %s", r.id)),
			ErrResponseAlreadyExists,
		)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return errs.NewValueIsRequiredError("response")
	}
	if err := validateText("response", text); err != nil {
		return err
	}

	r.response = &Response{Text: text, RespondedAt: now}
	return nil
}

func validateText(param, text string) error {
	if n := utf8.RuneCountInString(text); n > MaxReviewLength {
		return errs.NewValueIsOutOfRangeError(param+" length", n, 0, MaxReviewLength)
	}
	return nil
}
