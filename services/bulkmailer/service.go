package bulkmailer

import (
	"context"
	"sync"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/sponsorengage/mailer/interfaces"
	mailererrors "github.com/sponsorengage/mailer/internal/errors"
	"github.com/sponsorengage/mailer/internal/logger"
	"github.com/sponsorengage/mailer/internal/ratelimit"
	"github.com/sponsorengage/mailer/internal/tracing"
	"github.com/sponsorengage/mailer/internal/utils"
)

var (
	ErrRecipientsMissing = errors.New("recipients missing")
	ErrRenderFailed      = errors.New("failed to render email body")
)

// Config controls retry and throughput behavior. The effective send rate is
// always derived from the provider's quota at dispatch time, not configured.
type Config struct {
	// MaxRetries is the number of additional attempts after a throttled send.
	MaxRetries int
	// RetryBackoff is the fixed wait between throttled attempts.
	RetryBackoff time.Duration
	// MaxConcurrentSends caps simultaneous in-flight provider calls.
	MaxConcurrentSends int
	// RefillInterval is the token bucket refill period.
	RefillInterval time.Duration
}

type bulkMailer struct {
	transport interfaces.MailTransport
	cfg       Config
	log       logger.Logger
}

func NewBulkMailer(transport interfaces.MailTransport, cfg Config, log logger.Logger) interfaces.BulkMailer {
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = time.Second
	}
	if cfg.MaxConcurrentSends < 1 {
		cfg.MaxConcurrentSends = 3
	}
	if cfg.RefillInterval <= 0 {
		cfg.RefillInterval = time.Second
	}
	return &bulkMailer{
		transport: transport,
		cfg:       cfg,
		log:       log,
	}
}

func (s *bulkMailer) SendBulk(ctx context.Context, jobs []interfaces.EmailJob) ([]interfaces.SendOutcome, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "bulkMailer.SendBulk")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.LogKV("jobs", len(jobs))

	if len(jobs) == 0 {
		return []interfaces.SendOutcome{}, nil
	}

	quota, err := s.transport.GetSendQuota(ctx)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	if quota == nil || quota.MaxSendRate <= 0 {
		err = mailererrors.ErrSendQuotaUnavailable
		tracing.TraceErr(span, err)
		return nil, err
	}

	// Dispatch at half the advertised maximum, the provider's limit is hard.
	rate := int(quota.MaxSendRate / 2)
	if rate < 1 {
		rate = 1
	}
	s.log.Infof("Dispatching %d emails at %d/s (provider max %.1f/s), concurrency %d",
		len(jobs), rate, quota.MaxSendRate, s.cfg.MaxConcurrentSends)

	limiter := ratelimit.New(ratelimit.Config{
		RatePerSecond:  rate,
		MaxConcurrent:  s.cfg.MaxConcurrentSends,
		RefillInterval: s.cfg.RefillInterval,
	})
	defer limiter.Close()

	outcomes := make([]interfaces.SendOutcome, len(jobs))
	var wg sync.WaitGroup

	for i := range jobs {
		outcomes[i].JobIndex = i

		// Token first, then a concurrency slot; submission order is FIFO.
		if err := limiter.Wait(ctx); err != nil {
			outcomes[i].Err = err
			continue
		}
		if err := limiter.AcquireSlot(ctx); err != nil {
			outcomes[i].Err = err
			continue
		}

		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer limiter.ReleaseSlot()

			result, err := s.sendEmail(ctx, jobs[i], s.cfg.MaxRetries)
			if err != nil {
				s.log.Errorf("Failed to send email to %v: %v", jobs[i].To, err)
				outcomes[i].Err = err
				return
			}
			outcomes[i].Result = result
		}(i)
	}

	wg.Wait()

	sent, failed := 0, 0
	for i := range outcomes {
		if outcomes[i].Succeeded() {
			sent++
		} else {
			failed++
		}
	}
	span.LogKV("result.sent", sent, "result.failed", failed)
	s.log.Infof("Bulk send settled: %d sent, %d failed", sent, failed)

	return outcomes, nil
}

// sendEmail renders and dispatches one job, retrying throttled attempts with
// a fixed backoff. The caller's concurrency slot stays held across retries.
func (s *bulkMailer) sendEmail(ctx context.Context, job interfaces.EmailJob, retriesRemaining int) (*interfaces.SendResult, error) {
	message, err := s.renderMessage(job)
	if err != nil {
		return nil, err
	}

	for {
		messageID, err := s.transport.SendMessage(ctx, message)
		if err == nil {
			return &interfaces.SendResult{
				MessageID:  messageID,
				Recipients: message.To,
			}, nil
		}

		if !errors.Is(err, mailererrors.ErrSendThrottled) || retriesRemaining <= 0 {
			return nil, err
		}

		retriesRemaining--
		s.log.Warnf("Send throttled, retrying in %v (%d retries left): %v", s.cfg.RetryBackoff, retriesRemaining, err)
		select {
		case <-time.After(s.cfg.RetryBackoff):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (s *bulkMailer) renderMessage(job interfaces.EmailJob) (*interfaces.OutboundMessage, error) {
	to := utils.NormalizeRecipients(job.To)
	if len(to) == 0 {
		return nil, ErrRecipientsMissing
	}

	message := &interfaces.OutboundMessage{
		To:      to,
		Subject: job.Subject,
	}

	if job.RenderHTML != nil {
		html, err := job.RenderHTML(job.TemplateData)
		if err != nil {
			return nil, errors.Wrap(ErrRenderFailed, err.Error())
		}
		message.BodyHTML = html
	}
	if job.RenderText != nil {
		text, err := job.RenderText(job.TemplateData)
		if err != nil {
			return nil, errors.Wrap(ErrRenderFailed, err.Error())
		}
		message.BodyText = text
	}

	return message, nil
}
