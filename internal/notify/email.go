// Package notify sends low-supply alert emails via Amazon SES.
package notify

import (
	"context"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// EmailService handles sending alert emails via Amazon SES
type EmailService struct {
	client     *sesv2.Client
	fromEmail  string
	fromName   string
	alertEmail string
	enabled    bool
	debug      bool
}

// NewEmailService creates the alert email service. It is disabled unless
// both a sender and an alert recipient are configured.
func NewEmailService(awsRegion, fromEmail, fromName, alertEmail string, debug bool) (*EmailService, error) {
	if fromEmail == "" || alertEmail == "" {
		log.Println("Alert email disabled: SES_FROM_EMAIL or ALERT_EMAIL not configured")
		return &EmailService{
			enabled: false,
			debug:   debug,
		}, nil
	}

	if debug {
		log.Printf("[DEBUG] Initializing alert email service with AWS SES")
		log.Printf("[DEBUG] AWS Region: %s", awsRegion)
		log.Printf("[DEBUG] From Email: %s", fromEmail)
		log.Printf("[DEBUG] Alert Email: %s", alertEmail)
	}

	// Load AWS configuration
	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(awsRegion),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := sesv2.NewFromConfig(cfg)
	log.Printf("Alert email enabled: from=%s, to=%s, region=%s", fromEmail, alertEmail, awsRegion)

	return &EmailService{
		client:     client,
		fromEmail:  fromEmail,
		fromName:   fromName,
		alertEmail: alertEmail,
		enabled:    true,
		debug:      debug,
	}, nil
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

// SendLowSupplyAlert emails the configured recipient that a medication is
// running out.
func (s *EmailService) SendLowSupplyAlert(ctx context.Context, memberName, medicineName, dosage string, remaining, daysLeft int) error {
	if !s.enabled {
		log.Printf("Skipping email send (service disabled): low supply of %s for %s", medicineName, memberName)
		return nil
	}

	subject := fmt.Sprintf("Low supply: %s for %s", medicineName, memberName)
	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<style>
		body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
		.container { max-width: 600px; margin: 0 auto; padding: 20px; }
		.header { background-color: #d9534f; color: white; padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
		.content { background-color: #f9f9f9; padding: 30px; border-radius: 0 0 5px 5px; }
		.footer { text-align: center; margin-top: 20px; font-size: 12px; color: #666; }
	</style>
</head>
<body>
	<div class="container">
		<div class="header">
			<h1>Medication Running Low</h1>
		</div>
		<div class="content">
			<p>%s has only <strong>%d doses</strong> of %s (%s) left.</p>
			<p>That is roughly <strong>%d day(s)</strong> of supply. Please arrange a refill.</p>
		</div>
		<div class="footer">
			<p>This is an automated alert from CareCall. Please do not reply.</p>
		</div>
	</div>
</body>
</html>
`, memberName, remaining, medicineName, dosage, daysLeft)

	textBody := fmt.Sprintf(`%s has only %d doses of %s (%s) left.

That is roughly %d day(s) of supply. Please arrange a refill.

---
This is an automated alert from CareCall. Please do not reply.
`, memberName, remaining, medicineName, dosage, daysLeft)

	return s.sendEmail(ctx, s.alertEmail, subject, htmlBody, textBody)
}

// sendEmail sends an email using Amazon SES
func (s *EmailService) sendEmail(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	if s.debug {
		log.Printf("[DEBUG] Sending alert email: to=%s, subject=%s", toEmail, subject)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(htmlBody),
						Charset: aws.String("UTF-8"),
					},
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	if s.debug && result.MessageId != nil {
		log.Printf("[DEBUG] SES message ID: %s", *result.MessageId)
	}
	log.Printf("Email sent successfully: to=%s, subject=%s", toEmail, subject)
	return nil
}
