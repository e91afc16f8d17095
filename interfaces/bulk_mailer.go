package interfaces

import "context"

// RenderFunc renders an email body from per-job template data. Renderers are
// pure and invoked immediately before dispatch.
type RenderFunc func(data any) (string, error)

// EmailJob is one outbound message. Recipients are normalized before
// dispatch; the HTML and text bodies are produced by the supplied renderers.
type EmailJob struct {
	To           []string
	Subject      string
	TemplateData any
	RenderHTML   RenderFunc
	RenderText   RenderFunc
}

// SendResult is produced for each successfully dispatched job.
type SendResult struct {
	MessageID  string
	Recipients []string
}

// SendOutcome reports how one job settled. Exactly one of Result and Err is
// set. JobIndex refers to the position in the submitted batch.
type SendOutcome struct {
	JobIndex int
	Result   *SendResult
	Err      error
}

func (o SendOutcome) Succeeded() bool {
	return o.Err == nil && o.Result != nil
}

// BulkMailer dispatches batches of independently addressed emails without
// exceeding the provider's advertised throughput.
type BulkMailer interface {
	// SendBulk schedules every job through a rate limiter sized from the
	// provider's current quota and returns once all jobs have settled. The
	// returned slice has one outcome per job, in submission order. A non-nil
	// error means no jobs were attempted.
	SendBulk(ctx context.Context, jobs []EmailJob) ([]SendOutcome, error)
}
