package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/hunchagency/dotupdate/internal/updateservice"
)

// UpdateRequest is the request body for processing a status update.
type UpdateRequest struct {
	JobNumber    string `json:"jobNumber" example:"TOW 087" validate:"required"`
	EmailContent string `json:"emailContent" example:"Moving to Craft, due Friday" validate:"required"`
}

// Validate checks the request body.
func (r UpdateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.JobNumber, validation.Required),
		validation.Field(&r.EmailContent, validation.Required),
	)
}

// UpdateResult is the response body (aliased from the domain layer).
type UpdateResult = updateservice.Result
