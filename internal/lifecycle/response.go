// internal/lifecycle/response.go
package lifecycle

import (
	"errors"
	"net/http"

	apperrors "application-workers/internal/common/errors"
	"application-workers/internal/store"
)

// Operation names a lifecycle operation.
type Operation string

const (
	OpCreate   Operation = "create"
	OpUpdate   Operation = "update"
	OpNudge    Operation = "nudge"
	OpFeedback Operation = "feedback"
)

// User-facing messages.
const (
	MsgApplicationCreated   = "Application created successfully"
	MsgApplicationUpdated   = "Application updated successfully"
	MsgApplicationsListed   = "Applications returned successfully"
	MsgNudgeSent            = "Nudge sent successfully"
	MsgFeedbackSubmitted    = "Application feedback submitted successfully"
	MsgNotFound             = "Application not found"
	MsgEditUnauthorized     = "You are not authorized to edit this application"
	MsgNudgeUnauthorized    = "You are not authorized to nudge this application"
	MsgEditTooSoon          = "You can edit your application again 24 hours after your last edit."
	MsgNudgeNotPending      = "Nudge unavailable. Only pending applications can be nudged."
	MsgNudgeTooSoon         = "Nudge unavailable. You'll be able to nudge again after 24 hours."
	MsgAlreadyReviewed      = "Application has already been reviewed."
	MsgDuplicateApplication = "You already have an application on record."
	MsgEmptyUpdatePayload   = "Update payload must include at least one editable field."
	MsgInternalServerError  = "An internal server error occurred"
)

// Response is the transport-neutral rendering of an outcome.
type Response struct {
	HTTPStatus int
	Code       apperrors.ErrorCode // empty on success
	Message    string
}

func (r Response) OK() bool {
	return r.Code == ""
}

// MapOutcome renders kind for op. Combinations an operation never
// produces map to the internal error response.
func MapOutcome(op Operation, kind Kind) Response {
	switch op {
	case OpUpdate:
		switch kind {
		case KindSuccess:
			return Response{HTTPStatus: http.StatusOK, Message: MsgApplicationUpdated}
		case KindNotFound:
			return notFound()
		case KindUnauthorized:
			return Response{http.StatusForbidden, apperrors.ErrCodeApplicationUnauthorized, MsgEditUnauthorized}
		case KindTooSoon:
			return Response{http.StatusConflict, apperrors.ErrCodeEditTooSoon, MsgEditTooSoon}
		}
	case OpNudge:
		switch kind {
		case KindSuccess:
			return Response{HTTPStatus: http.StatusOK, Message: MsgNudgeSent}
		case KindNotFound:
			return notFound()
		case KindUnauthorized:
			return Response{http.StatusForbidden, apperrors.ErrCodeApplicationUnauthorized, MsgNudgeUnauthorized}
		case KindNotPending:
			return Response{http.StatusBadRequest, apperrors.ErrCodeNudgeNotPending, MsgNudgeNotPending}
		case KindTooSoon:
			return Response{http.StatusTooManyRequests, apperrors.ErrCodeNudgeTooSoon, MsgNudgeTooSoon}
		}
	case OpFeedback:
		switch kind {
		case KindSuccess:
			return Response{HTTPStatus: http.StatusOK, Message: MsgFeedbackSubmitted}
		case KindNotFound:
			return notFound()
		case KindAlreadyReviewed:
			return Response{http.StatusConflict, apperrors.ErrCodeApplicationAlreadyReviewed, MsgAlreadyReviewed}
		}
	case OpCreate:
		switch kind {
		case KindSuccess:
			return Response{HTTPStatus: http.StatusCreated, Message: MsgApplicationCreated}
		case KindDuplicate:
			return Response{http.StatusConflict, apperrors.ErrCodeDuplicateApplication, MsgDuplicateApplication}
		}
	}
	return internalError()
}

// MapError renders an engine error. Every store failure is an internal
// error to the caller; lock timeouts keep their own code.
func MapError(err error) Response {
	r := internalError()
	if errors.Is(err, store.ErrLockTimeout) {
		r.Code = apperrors.ErrCodeLockTimeout
	}
	return r
}

// Rejection converts a non-success response into the error reported to
// the workflow engine.
func (r Response) Rejection() *apperrors.StandardError {
	if r.OK() {
		return nil
	}
	return apperrors.NewRejectionError(r.Code, r.Message, r.HTTPStatus)
}

func notFound() Response {
	return Response{http.StatusNotFound, apperrors.ErrCodeApplicationNotFound, MsgNotFound}
}

func internalError() Response {
	return Response{http.StatusInternalServerError, apperrors.ErrCodeStoreFailure, MsgInternalServerError}
}

// OutcomeError returns the error a worker reports for an engine call, or
// nil when out is a success and err is nil.
func OutcomeError(op Operation, out Outcome, err error) error {
	if err != nil {
		rej := MapError(err).Rejection()
		rej.Details = err.Error()
		return rej
	}
	if rej := MapOutcome(op, out.Kind).Rejection(); rej != nil {
		return rej
	}
	return nil
}
