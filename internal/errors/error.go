package errors

import "github.com/pkg/errors"

var (
	// mail transport errors
	ErrSendThrottled        = errors.New("mail provider throttled the request")
	ErrSendQuotaUnavailable = errors.New("mail provider did not report a send quota")
	ErrMessageNotFound      = errors.New("message not found at mail provider")

	// reference data errors
	ErrStatusNotFound = errors.New("invitation status not found")
)
