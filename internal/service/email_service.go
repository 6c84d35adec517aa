package service

import (
	"context"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// EmailService handles sending emails via Amazon SES
type EmailService struct {
	client     *sesv2.Client
	fromEmail  string
	fromName   string
	appBaseURL string
	enabled    bool
	debug      bool
}

// NewEmailService creates a new email service. An empty fromEmail
// produces a disabled service that logs instead of sending.
func NewEmailService(awsRegion, fromEmail, fromName, appBaseURL string, debug bool) (*EmailService, error) {
	if fromEmail == "" {
		log.Println("Email service disabled: SES_FROM_EMAIL not configured")
		return &EmailService{
			enabled: false,
			debug:   debug,
		}, nil
	}

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(awsRegion),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := sesv2.NewFromConfig(cfg)
	log.Printf("Email service enabled: from=%s, region=%s", fromEmail, awsRegion)

	return &EmailService{
		client:     client,
		fromEmail:  fromEmail,
		fromName:   fromName,
		appBaseURL: appBaseURL,
		enabled:    true,
		debug:      debug,
	}, nil
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

// SendVerificationEmail sends an email verification link to a new
// account
func (s *EmailService) SendVerificationEmail(ctx context.Context, toEmail, toName, token string) error {
	if !s.enabled {
		log.Printf("Skipping email send (service disabled): verification to %s", toEmail)
		return nil
	}

	verifyLink := fmt.Sprintf("%s/auth/verify-email?token=%s", s.appBaseURL, token)

	subject := "Verify Your Email Address"
	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<style>
		body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
		.container { max-width: 600px; margin: 0 auto; padding: 20px; }
		.header { background-color: #4a90e2; color: white; padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
		.content { background-color: #f9f9f9; padding: 30px; border-radius: 0 0 5px 5px; }
		.button { display: inline-block; padding: 12px 30px; background-color: #4a90e2; color: white; text-decoration: none; border-radius: 5px; margin: 20px 0; }
		.footer { text-align: center; margin-top: 20px; font-size: 12px; color: #666; }
	</style>
</head>
<body>
	<div class="container">
		<div class="header">
			<h1>Welcome to Myte Home Assistant!</h1>
		</div>
		<div class="content">
			<p>Hi %s,</p>
			<p>Thanks for creating your account. Please verify your email address to finish setting up your household.</p>
			<p style="text-align: center;">
				<a href="%s" class="button">Verify Email</a>
			</p>
			<p>Or copy and paste this link into your browser:</p>
			<p style="word-break: break-all; font-size: 12px; color: #666;">%s</p>
			<p><strong>This link will expire in 24 hours.</strong></p>
			<p>If you didn't create an account, you can safely ignore this email.</p>
		</div>
		<div class="footer">
			<p>This is an automated email from Myte Home Assistant. Please do not reply.</p>
		</div>
	</div>
</body>
</html>
`, toName, verifyLink, verifyLink)

	textBody := fmt.Sprintf(`Hi %s,

Thanks for creating your account. Please verify your email address to finish setting up your household:
%s

This link will expire in 24 hours.

If you didn't create an account, you can safely ignore this email.

---
This is an automated email from Myte Home Assistant. Please do not reply.
`, toName, verifyLink)

	return s.sendEmail(ctx, toEmail, subject, htmlBody, textBody)
}

// SendPasswordResetEmail sends a password reset email with a reset link
func (s *EmailService) SendPasswordResetEmail(ctx context.Context, toEmail, toName, resetToken string) error {
	if !s.enabled {
		log.Printf("Skipping email send (service disabled): password reset to %s", toEmail)
		return nil
	}

	resetLink := fmt.Sprintf("%s/auth/reset-password?token=%s", s.appBaseURL, resetToken)

	subject := "Reset Your Password"
	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<style>
		body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
		.container { max-width: 600px; margin: 0 auto; padding: 20px; }
		.header { background-color: #4a90e2; color: white; padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
		.content { background-color: #f9f9f9; padding: 30px; border-radius: 0 0 5px 5px; }
		.button { display: inline-block; padding: 12px 30px; background-color: #4a90e2; color: white; text-decoration: none; border-radius: 5px; margin: 20px 0; }
		.footer { text-align: center; margin-top: 20px; font-size: 12px; color: #666; }
	</style>
</head>
<body>
	<div class="container">
		<div class="header">
			<h1>Password Reset Request</h1>
		</div>
		<div class="content">
			<p>Hi %s,</p>
			<p>We received a request to reset the password for your Myte Home Assistant account.</p>
			<p style="text-align: center;">
				<a href="%s" class="button">Reset Password</a>
			</p>
			<p>Or copy and paste this link into your browser:</p>
			<p style="word-break: break-all; font-size: 12px; color: #666;">%s</p>
			<p><strong>This link will expire in 1 hour.</strong></p>
			<p>If you didn't request a password reset, you can safely ignore this email.</p>
		</div>
		<div class="footer">
			<p>This is an automated email from Myte Home Assistant. Please do not reply.</p>
		</div>
	</div>
</body>
</html>
`, toName, resetLink, resetLink)

	textBody := fmt.Sprintf(`Hi %s,

We received a request to reset the password for your Myte Home Assistant account.

Click the link below to reset your password:
%s

This link will expire in 1 hour.

If you didn't request a password reset, you can safely ignore this email.

---
This is an automated email from Myte Home Assistant. Please do not reply.
`, toName, resetLink)

	return s.sendEmail(ctx, toEmail, subject, htmlBody, textBody)
}

// SendInviteEmail invites someone to join a family by invite code
func (s *EmailService) SendInviteEmail(ctx context.Context, toEmail, familyName, inviteCode string) error {
	if !s.enabled {
		log.Printf("Skipping email send (service disabled): invite to %s", toEmail)
		return nil
	}

	joinLink := fmt.Sprintf("%s/register?invite_code=%s", s.appBaseURL, inviteCode)

	subject := fmt.Sprintf("You're invited to join %s", familyName)
	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<style>
		body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
		.container { max-width: 600px; margin: 0 auto; padding: 20px; }
		.header { background-color: #4a90e2; color: white; padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
		.content { background-color: #f9f9f9; padding: 30px; border-radius: 0 0 5px 5px; }
		.button { display: inline-block; padding: 12px 30px; background-color: #4a90e2; color: white; text-decoration: none; border-radius: 5px; margin: 20px 0; }
		.footer { text-align: center; margin-top: 20px; font-size: 12px; color: #666; }
	</style>
</head>
<body>
	<div class="container">
		<div class="header">
			<h1>Family Invitation</h1>
		</div>
		<div class="content">
			<p>Hi,</p>
			<p>You've been invited to join <strong>%s</strong> on Myte Home Assistant, a shared space for tasks, calendars, meals and more.</p>
			<p style="text-align: center;">
				<a href="%s" class="button">Join the Family</a>
			</p>
			<p>Or register and enter this invite code:</p>
			<p style="text-align: center; font-size: 18px;"><strong>%s</strong></p>
		</div>
		<div class="footer">
			<p>This is an automated email from Myte Home Assistant. Please do not reply.</p>
		</div>
	</div>
</body>
</html>
`, familyName, joinLink, inviteCode)

	textBody := fmt.Sprintf(`Hi,

You've been invited to join %s on Myte Home Assistant, a shared space for tasks, calendars, meals and more.

Join here:
%s

Or register and enter this invite code: %s

---
This is an automated email from Myte Home Assistant. Please do not reply.
`, familyName, joinLink, inviteCode)

	return s.sendEmail(ctx, toEmail, subject, htmlBody, textBody)
}

// sendEmail sends an email using Amazon SES
func (s *EmailService) sendEmail(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
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
