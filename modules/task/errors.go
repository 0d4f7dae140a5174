package task

import (
	"errors"

	domain "github.com/example/taskboard/domain/task"
)

// toReplyError converts expected domain errors into a reply payload.
// Anything else is reported as false and should fail the request.
func toReplyError(err error) (ReplyError, bool) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		return ReplyError{ErrorCode: CodeValidation, ErrorField: ve.Field, Error: ve.Message}, true
	case errors.Is(err, domain.ErrNotFound):
		return ReplyError{ErrorCode: CodeNotFound, Error: err.Error()}, true
	}
	return ReplyError{}, false
}

// Err rebuilds the domain error described by the reply, or nil.
func (r ReplyError) Err() error {
	switch r.ErrorCode {
	case "":
		return nil
	case CodeValidation:
		return &domain.ValidationError{Field: r.ErrorField, Message: r.Error}
	case CodeNotFound:
		return domain.ErrNotFound
	}
	return errors.New(r.Error)
}
