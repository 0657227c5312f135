package notify

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/rs/zerolog"

	"github.com/aristath/sgbadvisor/internal/config"
	"github.com/aristath/sgbadvisor/internal/domain"
)

const (
	emailSubject = "SGBs you can consider buying"
	emailCharset = "UTF-8"
)

var emailTemplate = `<!DOCTYPE html>
<html>
<body>
  <h1>SGBs you can consider buying</h1>
  <p>%s</p>
  <section id="generated-results">%s</section>
  <p>Gold (999) reference price: ₹%.2f</p>
</body>
</html>`

// EmailSender delivers results through AWS SES.
type EmailSender struct {
	cfg    config.EmailConfig
	client *sesv2.Client
	log    zerolog.Logger
}

// NewEmailSender builds an SES client from the static credentials in cfg.
func NewEmailSender(ctx context.Context, cfg config.EmailConfig, log zerolog.Logger) (*EmailSender, error) {
	if cfg.AccessKey == "" || cfg.SecretKey == "" || cfg.Region == "" || cfg.Sender == "" || cfg.Recipient == "" {
		return nil, fmt.Errorf("incomplete SES configuration: access key, secret, region, sender and recipient are all required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build AWS config: %w", err)
	}

	return &EmailSender{
		cfg:    cfg,
		client: sesv2.NewFromConfig(awsCfg),
		log:    log.With().Str("component", "email").Logger(),
	}, nil
}

// Send delivers the result as an HTML email with a plain-text alternative.
func (s *EmailSender) Send(ctx context.Context, result *domain.Result) error {
	table, err := TableHTML(result)
	if err != nil {
		return err
	}
	html := fmt.Sprintf(emailTemplate, Disclaimer, table, result.GoldPrice)

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(s.cfg.Sender),
		Destination: &types.Destination{
			ToAddresses: []string{s.cfg.Recipient},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(emailSubject),
					Charset: aws.String(emailCharset),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(html),
						Charset: aws.String(emailCharset),
					},
					Text: &types.Content{
						Data:    aws.String(TextSummary(result)),
						Charset: aws.String(emailCharset),
					},
				},
			},
		},
	}

	out, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("SES send failed: %w", err)
	}

	s.log.Info().
		Str("recipient", s.cfg.Recipient).
		Str("message_id", aws.ToString(out.MessageId)).
		Msg("Email sent")
	return nil
}
