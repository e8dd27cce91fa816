package utils

import (
	"fmt"
	"log"
	"net/smtp"
	"os"
	"strings"
)

var (
	emailFrom     = os.Getenv("EMAIL_FROM")
	emailPassword = os.Getenv("EMAIL_PASSWORD")
	smtpHost      = os.Getenv("SMTP_HOST")
	smtpPort      = os.Getenv("SMTP_PORT")
	companyName   = "CampusFit Gym"
	baseURL       = os.Getenv("BASE_URL")
)

// Common header template for all emails
const emailHeader = `
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; margin: 0; padding: 0;">
	<div style="max-width: 600px; margin: 0 auto; padding: 20px;">
		<div style="text-align: center; margin-bottom: 30px; background-color: #f9f9f9; padding: 20px;">
			<h2 style="color: #1565C0; margin: 0;">CampusFit Gym</h2>
		</div>
`

// Common footer template for all emails
const emailFooter = `
		<div style="text-align: center; margin-top: 20px; font-size: 12px; color: #666; border-top: 1px solid #eee; padding-top: 20px;">
			<p>This is an automated message, please do not reply to this email.</p>
			<p>© 2026 CampusFit Gym. All rights reserved.</p>
		</div>
	</div>
</body>
</html>
`

func sendEmail(to []string, subject, body string) error {
	if emailFrom == "" || emailPassword == "" || smtpHost == "" || smtpPort == "" {
		return fmt.Errorf("email configuration not set")
	}

	// Headers
	headers := make(map[string]string)
	headers["From"] = fmt.Sprintf("%s <%s>", companyName, emailFrom)
	headers["To"] = strings.Join(to, ",")
	headers["Subject"] = subject
	headers["MIME-Version"] = "1.0"
	headers["Content-Type"] = "text/html; charset=UTF-8"

	// Build message
	message := ""
	for key, value := range headers {
		message += fmt.Sprintf("%s: %s\r\n", key, value)
	}
	message += "\r\n" + body

	// Authentication
	auth := smtp.PlainAuth("", emailFrom, emailPassword, smtpHost)

	// Send email
	err := smtp.SendMail(smtpHost+":"+smtpPort, auth, emailFrom, to, []byte(message))
	if err != nil {
		log.Printf("Failed to send email: %v", err)
		return err
	}

	log.Printf("Successfully sent email to recipients: %v", to)
	return nil
}

// SendEmailVerificationOTP mails the code a new member must enter to activate
// their account
func SendEmailVerificationOTP(email, otp string) error {
	subject := "Verify Your Email - CampusFit Gym"
	body := fmt.Sprintf(emailHeader+`
				<div style="background-color: #f9f9f9; padding: 20px; border-radius: 5px;">
					<h1 style="color: #2c3e50; text-align: center;">Verify Your Email</h1>
					<p>Hello,</p>
					<p>Welcome to CampusFit Gym! Enter the code below to verify your email address:</p>
					<div style="text-align: center; margin: 30px 0;">
						<span style="font-size: 32px; letter-spacing: 8px; font-weight: bold; color: #1565C0;">%s</span>
					</div>
					<p>The code expires in 15 minutes.</p>
					<p>Best regards,<br>The CampusFit Team</p>
				</div>`+emailFooter,
		otp)

	return sendEmail([]string{email}, subject, body)
}

// SendPasswordResetEmail mails the password-reset code
func SendPasswordResetEmail(email, otp string) error {
	subject := "Password Reset Code - CampusFit Gym"
	body := fmt.Sprintf(emailHeader+`
				<div style="background-color: #f9f9f9; padding: 20px; border-radius: 5px;">
					<h1 style="color: #2c3e50; text-align: center;">Password Reset</h1>
					<p>Hello,</p>
					<p>We received a request to reset your password. Enter the code below to continue:</p>
					<div style="text-align: center; margin: 30px 0;">
						<span style="font-size: 32px; letter-spacing: 8px; font-weight: bold; color: #1565C0;">%s</span>
					</div>
					<p>If you did not request a reset, you can safely ignore this email.</p>
					<p>Best regards,<br>The CampusFit Team</p>
				</div>`+emailFooter,
		otp)

	return sendEmail([]string{email}, subject, body)
}

// SendBookingApprovedEmail tells a member their equipment booking went through
func SendBookingApprovedEmail(memberEmail, itemName string, quantity int) error {
	subject := "Booking Approved - CampusFit Gym"
	body := fmt.Sprintf(emailHeader+`
				<div style="background-color: #f9f9f9; padding: 20px; border-radius: 5px;">
					<h1 style="color: #2c3e50; text-align: center;">Booking Approved</h1>
					<p>Hello,</p>
					<p>Your booking for <strong>%d x %s</strong> has been approved.</p>
					<p>Pick up the equipment at the front desk. Remember to request a return when you bring it back.</p>
					<div style="text-align: center; margin: 30px 0;">
						<a href="%s/bookings" style="background-color: #1565C0; color: white; padding: 12px 25px; text-decoration: none; border-radius: 5px;">View My Bookings</a>
					</div>
					<p>Best regards,<br>The CampusFit Team</p>
				</div>`+emailFooter,
		quantity, itemName, baseURL)

	return sendEmail([]string{memberEmail}, subject, body)
}

// SendBookingRejectedEmail tells a member their equipment booking was declined
func SendBookingRejectedEmail(memberEmail, itemName string) error {
	subject := "Booking Rejected - CampusFit Gym"
	body := fmt.Sprintf(emailHeader+`
				<div style="background-color: #f9f9f9; padding: 20px; border-radius: 5px;">
					<h1 style="color: #2c3e50; text-align: center;">Booking Rejected</h1>
					<p>Hello,</p>
					<p>Unfortunately, your booking for <strong>%s</strong> was rejected.</p>
					<p>The equipment may be fully booked. You can try again later or pick a different item.</p>
					<div style="text-align: center; margin: 30px 0;">
						<a href="%s/equipment" style="background-color: #1565C0; color: white; padding: 12px 25px; text-decoration: none; border-radius: 5px;">Browse Equipment</a>
					</div>
					<p>Best regards,<br>The CampusFit Team</p>
				</div>`+emailFooter,
		itemName, baseURL)

	return sendEmail([]string{memberEmail}, subject, body)
}
