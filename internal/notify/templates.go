package notify

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const companyName = "Adom Travels Limited"

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
			<h2 style="color: #1d6fb8; margin: 0;">Adom Travels</h2>
		</div>
`

// Common footer template for all emails
const emailFooter = `
		<div style="text-align: center; margin-top: 20px; font-size: 12px; color: #666; border-top: 1px solid #eee; padding-top: 20px;">
			<p>This is an automated message, please do not reply to this email.</p>
			<p>© 2025 Adom Travels Limited. All rights reserved.</p>
		</div>
	</div>
</body>
</html>
`

func requestReceivedSMS(kind, reference string) string {
	return fmt.Sprintf("Thank you for contacting Adom Travels. Your %s request %s has been received. We will get back to you shortly.",
		kind, reference)
}

func requestReceivedEmail(kind, reference, contactName string) (subject, body string) {
	subject = fmt.Sprintf("Request Received - %s", reference)
	body = fmt.Sprintf(emailHeader+`
				<div style="background-color: #f9f9f9; padding: 20px; border-radius: 5px;">
					<h1 style="color: #2c3e50; text-align: center;">Request Received</h1>
					<p>Hello %s,</p>
					<p>Your %s request has been received and is awaiting review by our travel team.</p>
					<p>Your reference number is <strong>%s</strong>. Please quote it in any correspondence.</p>
					<p>Best regards,<br>The Adom Travels Team</p>
				</div>`+emailFooter,
		contactName, kind, reference)
	return subject, body
}

func quoteProvidedSMS(reference string, amount decimal.Decimal, currency, paymentLink string) string {
	return fmt.Sprintf("Adom Travels: your quote %s is ready. Total: %s %s. Pay securely here: %s",
		reference, currency, amount.StringFixed(2), paymentLink)
}

func quoteProvidedEmail(reference, contactName string, amount decimal.Decimal, currency, paymentLink string) (subject, body string) {
	subject = fmt.Sprintf("Your Quote is Ready - %s", reference)
	body = fmt.Sprintf(emailHeader+`
				<div style="background-color: #f9f9f9; padding: 20px; border-radius: 5px;">
					<h1 style="color: #2c3e50; text-align: center;">Your Quote is Ready</h1>
					<p>Hello %s,</p>
					<p>We have priced your request <strong>%s</strong>.</p>
					<p style="font-size: 18px; text-align: center;">Total: <strong>%s %s</strong></p>
					<div style="text-align: center; margin: 30px 0;">
						<a href="%s" style="background-color: #1d6fb8; color: white; padding: 12px 25px; text-decoration: none; border-radius: 5px;">Pay Now</a>
					</div>
					<p>Best regards,<br>The Adom Travels Team</p>
				</div>`+emailFooter,
		contactName, reference, currency, amount.StringFixed(2), paymentLink)
	return subject, body
}

func statusChangedSMS(reference, status string) string {
	return fmt.Sprintf("Adom Travels: the status of your request %s is now %s.", reference, status)
}

func statusChangedEmail(reference, contactName, status string) (subject, body string) {
	subject = fmt.Sprintf("Status Update - %s", reference)
	body = fmt.Sprintf(emailHeader+`
				<div style="background-color: #f9f9f9; padding: 20px; border-radius: 5px;">
					<h1 style="color: #2c3e50; text-align: center;">Status Update</h1>
					<p>Hello %s,</p>
					<p>The status of your request <strong>%s</strong> has changed to <strong>%s</strong>.</p>
					<p>Best regards,<br>The Adom Travels Team</p>
				</div>`+emailFooter,
		contactName, reference, status)
	return subject, body
}

func paymentReceivedSMS(reference string, amount decimal.Decimal, currency string) string {
	return fmt.Sprintf("Adom Travels: we have received your payment of %s %s for %s. Your request is now being processed.",
		currency, amount.StringFixed(2), reference)
}

func paymentReceivedEmail(reference, contactName string, amount decimal.Decimal, currency string) (subject, body string) {
	subject = fmt.Sprintf("Payment Confirmed - %s", reference)
	body = fmt.Sprintf(emailHeader+`
				<div style="background-color: #f9f9f9; padding: 20px; border-radius: 5px;">
					<h1 style="color: #2c3e50; text-align: center;">Payment Confirmed</h1>
					<p>Hello %s,</p>
					<p>We have received your payment of <strong>%s %s</strong> for request <strong>%s</strong>.</p>
					<p>Our team is now processing your request and will confirm your arrangements shortly.</p>
					<p>Best regards,<br>The Adom Travels Team</p>
				</div>`+emailFooter,
		contactName, currency, amount.StringFixed(2), reference)
	return subject, body
}

func adminAlertSMS(event, reference string) string {
	return fmt.Sprintf("Adom Travels admin: %s for %s. Log in to the dashboard for details.", event, reference)
}

func adminAlertEmail(event, reference string) (subject, body string) {
	subject = fmt.Sprintf("Admin Alert: %s - %s", event, reference)
	body = fmt.Sprintf(emailHeader+`
				<div style="background-color: #f9f9f9; padding: 20px; border-radius: 5px;">
					<h1 style="color: #2c3e50; text-align: center;">Admin Alert</h1>
					<p>%s for request <strong>%s</strong>.</p>
					<p>Log in to the admin dashboard for full details.</p>
				</div>`+emailFooter,
		event, reference)
	return subject, body
}
