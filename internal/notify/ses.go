// internal/notify/ses.go
package notify

import (
	"context"
	"fmt"
	"strings"

	"comj-admin/internal/common/errors"
	"comj-admin/internal/common/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// SESService is the slice of the SES API the notifier uses.
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// Config holds the decision-notification settings.
type Config struct {
	Enabled   bool
	FromEmail string
	AdminList []string
	Region    string
}

// EmailNotifier mails the admin list whenever a review decision is accepted
// by the API. When disabled it is a no-op.
type EmailNotifier struct {
	config    *Config
	logger    logger.Logger
	sesClient SESService
}

// NewEmailNotifier builds the notifier. The AWS client is only created when
// notifications are enabled.
func NewEmailNotifier(ctx context.Context, config *Config, log logger.Logger) (*EmailNotifier, error) {
	n := &EmailNotifier{
		config: config,
		logger: log.WithFields(map[string]interface{}{"component": "notify"}),
	}

	if !config.Enabled {
		return n, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(config.Region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	n.sesClient = ses.NewFromConfig(awsCfg)
	return n, nil
}

// NotifyDecision mails the configured admin list about an accepted decision.
func (n *EmailNotifier) NotifyDecision(ctx context.Context, applicationID, decision, comment string) error {
	if !n.config.Enabled || n.sesClient == nil || len(n.config.AdminList) == 0 {
		return nil
	}

	subject, body := buildMessage(applicationID, decision, comment)

	_, err := n.sesClient.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: n.config.AdminList,
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(n.config.FromEmail),
	})
	if err != nil {
		n.logger.Error("decision email send failed", map[string]interface{}{
			"applicationId": applicationID,
			"decision":      decision,
			"error":         err.Error(),
		})
		return errors.NewNotificationSendFailedError("email", err)
	}

	n.logger.Info("decision email sent", map[string]interface{}{
		"applicationId": applicationID,
		"decision":      decision,
		"recipients":    len(n.config.AdminList),
	})
	return nil
}

func buildMessage(applicationID, decision, comment string) (string, string) {
	var subject, action string
	switch decision {
	case "approved":
		subject = "Candidatura aprovada"
		action = "foi aprovada"
	case "rejected":
		subject = "Candidatura rejeitada"
		action = "foi rejeitada"
	default:
		subject = "Candidatura atualizada"
		action = "foi atualizada"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "A candidatura %s %s.\n", applicationID, action)
	if comment != "" {
		fmt.Fprintf(&b, "\nComentário: %s\n", comment)
	}
	return subject, b.String()
}
