package ses

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	sesv2 "github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/aws/smithy-go"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/sponsorengage/mailer/interfaces"
	"github.com/sponsorengage/mailer/internal/enum"
	mailererrors "github.com/sponsorengage/mailer/internal/errors"
	"github.com/sponsorengage/mailer/internal/logger"
	"github.com/sponsorengage/mailer/internal/tracing"
)

// Config holds the SES account settings for the transport.
type Config struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	FromAddress     string
}

// API is the subset of the SES v2 client the transport depends on. Tests
// substitute a mock implementation.
type API interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
	GetAccount(ctx context.Context, params *sesv2.GetAccountInput, optFns ...func(*sesv2.Options)) (*sesv2.GetAccountOutput, error)
	GetMessageInsights(ctx context.Context, params *sesv2.GetMessageInsightsInput, optFns ...func(*sesv2.Options)) (*sesv2.GetMessageInsightsOutput, error)
}

type sesMailTransport struct {
	sender string
	client API
	log    logger.Logger
}

func NewSESMailTransport(ctx context.Context, cfg Config, log logger.Logger) (interfaces.MailTransport, error) {
	var opts []func(*awsconfig.LoadOptions) error

	opts = append(opts, awsconfig.WithRegion(cfg.Region))

	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load AWS config")
	}

	return &sesMailTransport{
		sender: cfg.FromAddress,
		client: sesv2.NewFromConfig(awsCfg),
		log:    log,
	}, nil
}

// NewWithClient creates a transport with a custom client, used for testing.
func NewWithClient(sender string, client API, log logger.Logger) interfaces.MailTransport {
	return &sesMailTransport{
		sender: sender,
		client: client,
		log:    log,
	}
}

func (s *sesMailTransport) SendMessage(ctx context.Context, message *interfaces.OutboundMessage) (string, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "sesMailTransport.SendMessage")
	defer span.Finish()
	tracing.TagComponentMailTransport(span)

	input := buildSendInput(s.sender, message)

	out, err := s.client.SendEmail(ctx, input)
	if err != nil {
		tracing.TraceErr(span, err)
		if isThrottleError(err) {
			return "", errors.Wrap(mailererrors.ErrSendThrottled, err.Error())
		}
		return "", errors.Wrap(err, "ses send failed")
	}

	messageID := aws.ToString(out.MessageId)
	tracing.TagEntity(span, messageID)
	return messageID, nil
}

func (s *sesMailTransport) GetSendQuota(ctx context.Context) (*interfaces.SendQuota, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "sesMailTransport.GetSendQuota")
	defer span.Finish()
	tracing.TagComponentMailTransport(span)

	out, err := s.client.GetAccount(ctx, &sesv2.GetAccountInput{})
	if err != nil {
		tracing.TraceErr(span, err)
		if isThrottleError(err) {
			return nil, errors.Wrap(mailererrors.ErrSendThrottled, err.Error())
		}
		return nil, errors.Wrap(err, "ses get account failed")
	}

	if out.SendQuota == nil {
		err = mailererrors.ErrSendQuotaUnavailable
		tracing.TraceErr(span, err)
		return nil, err
	}

	span.LogKV("maxSendRate", out.SendQuota.MaxSendRate)
	return &interfaces.SendQuota{MaxSendRate: out.SendQuota.MaxSendRate}, nil
}

func (s *sesMailTransport) GetMessageEvents(ctx context.Context, messageID string) (*interfaces.MessageEvents, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "sesMailTransport.GetMessageEvents")
	defer span.Finish()
	tracing.TagComponentMailTransport(span)
	tracing.TagEntity(span, messageID)

	out, err := s.client.GetMessageInsights(ctx, &sesv2.GetMessageInsightsInput{
		MessageId: aws.String(messageID),
	})
	if err != nil {
		tracing.TraceErr(span, err)
		if isThrottleError(err) {
			return nil, errors.Wrap(mailererrors.ErrSendThrottled, err.Error())
		}
		var notFound *types.NotFoundException
		if errors.As(err, &notFound) {
			return nil, errors.Wrap(mailererrors.ErrMessageNotFound, messageID)
		}
		return nil, errors.Wrap(err, "ses get message insights failed")
	}

	// The provider may report several insights entries for one message (one
	// per destination/ISP); flatten them all rather than trusting the first.
	events := make([]interfaces.DeliveryEvent, 0)
	for _, insight := range out.Insights {
		for _, event := range insight.Events {
			if event.Timestamp == nil {
				continue
			}
			events = append(events, interfaces.DeliveryEvent{
				Timestamp:     *event.Timestamp,
				Type:          enum.DeliveryEventType(event.Type),
				BounceSubtype: bounceSubtype(event.Details),
			})
		}
	}

	span.LogKV("result.events", len(events))
	return &interfaces.MessageEvents{
		MessageID: aws.ToString(out.MessageId),
		Events:    events,
	}, nil
}

func buildSendInput(sender string, message *interfaces.OutboundMessage) *sesv2.SendEmailInput {
	body := &types.Body{}
	if message.BodyHTML != "" {
		body.Html = &types.Content{
			Data:    aws.String(message.BodyHTML),
			Charset: aws.String("UTF-8"),
		}
	}
	if message.BodyText != "" {
		body.Text = &types.Content{
			Data:    aws.String(message.BodyText),
			Charset: aws.String("UTF-8"),
		}
	}

	return &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(sender),
		Destination: &types.Destination{
			ToAddresses: message.To,
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(message.Subject),
					Charset: aws.String("UTF-8"),
				},
				Body: body,
			},
		},
	}
}

func bounceSubtype(details *types.EventDetails) enum.BounceSubtype {
	if details == nil || details.Bounce == nil {
		return ""
	}
	return enum.BounceSubtype(details.Bounce.BounceType)
}

// isThrottleError classifies provider errors that indicate the account
// exceeded its send or query rate.
func isThrottleError(err error) bool {
	var tooMany *types.TooManyRequestsException
	if errors.As(err, &tooMany) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "TooManyRequestsException", "Throttling", "ThrottlingException", "LimitExceededException":
			return true
		}
	}
	return false
}
