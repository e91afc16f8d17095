package bulkmailer

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sponsorengage/mailer/interfaces"
	mailererrors "github.com/sponsorengage/mailer/internal/errors"
	"github.com/sponsorengage/mailer/internal/logger"
)

type fakeTransport struct {
	mu          sync.Mutex
	sendCalls   int32
	quotaCalls  int32
	maxSendRate float64
	quotaErr    error
	// throttleFirst makes the first N attempts per recipient fail with a
	// throttling error.
	throttleFirst int
	attempts      map[string]int
	sendTimes     []time.Time
	inFlight      int32
	peakInFlight  int32
}

func newFakeTransport(maxRate float64) *fakeTransport {
	return &fakeTransport{
		maxSendRate: maxRate,
		attempts:    make(map[string]int),
	}
}

func (f *fakeTransport) SendMessage(ctx context.Context, message *interfaces.OutboundMessage) (string, error) {
	atomic.AddInt32(&f.sendCalls, 1)

	n := atomic.AddInt32(&f.inFlight, 1)
	defer atomic.AddInt32(&f.inFlight, -1)
	for {
		old := atomic.LoadInt32(&f.peakInFlight)
		if n <= old || atomic.CompareAndSwapInt32(&f.peakInFlight, old, n) {
			break
		}
	}

	f.mu.Lock()
	key := message.To[0]
	f.attempts[key]++
	attempt := f.attempts[key]
	f.sendTimes = append(f.sendTimes, time.Now())
	f.mu.Unlock()

	if attempt <= f.throttleFirst {
		return "", errors.Wrap(mailererrors.ErrSendThrottled, "simulated throttle")
	}
	return fmt.Sprintf("msg-%s-%d", key, attempt), nil
}

func (f *fakeTransport) GetSendQuota(ctx context.Context) (*interfaces.SendQuota, error) {
	atomic.AddInt32(&f.quotaCalls, 1)
	if f.quotaErr != nil {
		return nil, f.quotaErr
	}
	return &interfaces.SendQuota{MaxSendRate: f.maxSendRate}, nil
}

func (f *fakeTransport) GetMessageEvents(ctx context.Context, messageID string) (*interfaces.MessageEvents, error) {
	return &interfaces.MessageEvents{MessageID: messageID}, nil
}

func getLogger() logger.Logger {
	appLogger := logger.NewAppLogger(&logger.Config{DevMode: true})
	appLogger.InitLogger()
	return appLogger
}

func makeJobs(n int) []interfaces.EmailJob {
	jobs := make([]interfaces.EmailJob, 0, n)
	for i := 0; i < n; i++ {
		jobs = append(jobs, interfaces.EmailJob{
			To:      []string{fmt.Sprintf("contact%d@sponsor.example.org", i)},
			Subject: "You have studies to assess",
			RenderHTML: func(data any) (string, error) {
				return "<p>body</p>", nil
			},
			RenderText: func(data any) (string, error) {
				return "body", nil
			},
		})
	}
	return jobs
}

func testConfig() Config {
	return Config{
		MaxRetries:         3,
		RetryBackoff:       5 * time.Millisecond,
		MaxConcurrentSends: 3,
		RefillInterval:     20 * time.Millisecond,
	}
}

func TestSendBulk_AllJobsSucceed(t *testing.T) {
	transport := newFakeTransport(14)
	mailer := NewBulkMailer(transport, testConfig(), getLogger())

	outcomes, err := mailer.SendBulk(context.Background(), makeJobs(5))

	require.NoError(t, err)
	require.Len(t, outcomes, 5)
	for i, outcome := range outcomes {
		assert.True(t, outcome.Succeeded(), "job %d", i)
		assert.Equal(t, i, outcome.JobIndex)
		assert.NotEmpty(t, outcome.Result.MessageID)
		assert.Len(t, outcome.Result.Recipients, 1)
	}
	assert.Equal(t, int32(5), transport.sendCalls)
	assert.Equal(t, int32(1), transport.quotaCalls)
	assert.LessOrEqual(t, transport.peakInFlight, int32(3))
}

func TestSendBulk_ThrottledJobRetriesThenSucceeds(t *testing.T) {
	transport := newFakeTransport(14)
	transport.throttleFirst = 2
	mailer := NewBulkMailer(transport, testConfig(), getLogger())

	outcomes, err := mailer.SendBulk(context.Background(), makeJobs(1))

	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.True(t, outcomes[0].Succeeded())
	// 2 throttled attempts + 1 success
	assert.Equal(t, int32(3), transport.sendCalls)
}

func TestSendBulk_RetriesExhaustedReportsFailure(t *testing.T) {
	transport := newFakeTransport(14)
	transport.throttleFirst = 10
	cfg := testConfig()
	cfg.MaxRetries = 2
	mailer := NewBulkMailer(transport, cfg, getLogger())

	outcomes, err := mailer.SendBulk(context.Background(), makeJobs(1))

	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.False(t, outcomes[0].Succeeded())
	assert.True(t, errors.Is(outcomes[0].Err, mailererrors.ErrSendThrottled))
	// initial attempt + 2 retries
	assert.Equal(t, int32(3), transport.sendCalls)
}

func TestSendBulk_PartialFailureDoesNotAffectOtherJobs(t *testing.T) {
	transport := newFakeTransport(14)
	cfg := testConfig()
	cfg.MaxRetries = 0
	mailer := NewBulkMailer(transport, cfg, getLogger())

	jobs := makeJobs(3)
	// Only the second job renders a failure
	jobs[1].RenderHTML = func(data any) (string, error) {
		return "", errors.New("bad template")
	}

	outcomes, err := mailer.SendBulk(context.Background(), jobs)

	require.NoError(t, err)
	assert.True(t, outcomes[0].Succeeded())
	assert.False(t, outcomes[1].Succeeded())
	assert.True(t, errors.Is(outcomes[1].Err, ErrRenderFailed))
	assert.True(t, outcomes[2].Succeeded())
	// the render failure never reached the provider
	assert.Equal(t, int32(2), transport.sendCalls)
}

func TestSendBulk_NoUsableQuotaFailsBeforeAnySend(t *testing.T) {
	transport := newFakeTransport(0)
	mailer := NewBulkMailer(transport, testConfig(), getLogger())

	_, err := mailer.SendBulk(context.Background(), makeJobs(3))

	assert.True(t, errors.Is(err, mailererrors.ErrSendQuotaUnavailable))
	assert.Equal(t, int32(0), transport.sendCalls)
}

func TestSendBulk_QuotaFetchErrorIsFatal(t *testing.T) {
	transport := newFakeTransport(14)
	transport.quotaErr = errors.New("provider unavailable")
	mailer := NewBulkMailer(transport, testConfig(), getLogger())

	_, err := mailer.SendBulk(context.Background(), makeJobs(3))

	assert.Error(t, err)
	assert.Equal(t, int32(0), transport.sendCalls)
}

func TestSendBulk_EmptyBatchSkipsQuotaFetch(t *testing.T) {
	transport := newFakeTransport(14)
	mailer := NewBulkMailer(transport, testConfig(), getLogger())

	outcomes, err := mailer.SendBulk(context.Background(), nil)

	require.NoError(t, err)
	assert.Empty(t, outcomes)
	assert.Equal(t, int32(0), transport.quotaCalls)
}

func TestSendBulk_RateGatesDispatch(t *testing.T) {
	// Provider max 2/s -> effective reservoir of 1 per refill interval, so
	// the second job must wait for the next refill.
	transport := newFakeTransport(2)
	cfg := testConfig()
	cfg.RefillInterval = 60 * time.Millisecond
	mailer := NewBulkMailer(transport, cfg, getLogger())

	start := time.Now()
	outcomes, err := mailer.SendBulk(context.Background(), makeJobs(2))

	require.NoError(t, err)
	assert.True(t, outcomes[0].Succeeded())
	assert.True(t, outcomes[1].Succeeded())
	require.Len(t, transport.sendTimes, 2)
	assert.GreaterOrEqual(t, transport.sendTimes[1].Sub(start), 50*time.Millisecond)
}

func TestSendBulk_MissingRecipientsFailsJob(t *testing.T) {
	transport := newFakeTransport(14)
	mailer := NewBulkMailer(transport, testConfig(), getLogger())

	jobs := []interfaces.EmailJob{{To: []string{"  "}, Subject: "empty"}}
	outcomes, err := mailer.SendBulk(context.Background(), jobs)

	require.NoError(t, err)
	assert.True(t, errors.Is(outcomes[0].Err, ErrRecipientsMissing))
	assert.Equal(t, int32(0), transport.sendCalls)
}
