package notify

import (
	"context"
	"os"
	"strings"

	"github.com/shopspring/decimal"
)

// Contact is the customer side of a recipient set.
type Contact struct {
	Name  string
	Email string
	Phone string
}

// Notifier builds per-event recipient/channel jobs and hands them to the
// dispatcher. Failures never propagate to the triggering workflow; callers
// get a Report and the workflow carries on.
type Notifier struct {
	sms        SMSSender
	email      EmailSender
	dispatcher *Dispatcher
}

func NewNotifier(sms SMSSender, email EmailSender, dispatcher *Dispatcher) *Notifier {
	return &Notifier{sms: sms, email: email, dispatcher: dispatcher}
}

// adminRecipients reads the admin broadcast lists from the environment at
// call time, so recipient changes do not need a restart.
func adminRecipients() (emails, phones []string) {
	return splitList(os.Getenv("ADMIN_EMAILS")), splitList(os.Getenv("ADMIN_PHONES"))
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func (n *Notifier) smsJob(phone, message string) Job {
	return Job{
		Channel:   "sms",
		Recipient: phone,
		Send: func(ctx context.Context) error {
			return n.sms.SendSMS(ctx, phone, message)
		},
	}
}

func (n *Notifier) emailJob(to, subject, body string) Job {
	return Job{
		Channel:   "email",
		Recipient: to,
		Send: func(ctx context.Context) error {
			return n.email.SendEmail(ctx, to, subject, body, true)
		},
	}
}

func (n *Notifier) adminJobs(event, reference string) []Job {
	emails, phones := adminRecipients()
	jobs := make([]Job, 0, len(emails)+len(phones))
	subject, body := adminAlertEmail(event, reference)
	for _, email := range emails {
		jobs = append(jobs, n.emailJob(email, subject, body))
	}
	message := adminAlertSMS(event, reference)
	for _, phone := range phones {
		jobs = append(jobs, n.smsJob(phone, message))
	}
	return jobs
}

// RequestSubmitted acknowledges a new booking or quote submission to the
// customer and alerts every administrator.
func (n *Notifier) RequestSubmitted(ctx context.Context, kind, reference string, contact Contact) Report {
	subject, body := requestReceivedEmail(kind, reference, contact.Name)
	jobs := []Job{
		n.smsJob(contact.Phone, requestReceivedSMS(kind, reference)),
		n.emailJob(contact.Email, subject, body),
	}
	jobs = append(jobs, n.adminJobs("new "+kind+" request", reference)...)
	return n.dispatcher.Dispatch(ctx, jobs...)
}

// QuoteProvided tells the customer their price is ready, embedding the
// amount, currency and payment link.
func (n *Notifier) QuoteProvided(ctx context.Context, reference string, contact Contact, amount decimal.Decimal, currency, paymentLink string) Report {
	subject, body := quoteProvidedEmail(reference, contact.Name, amount, currency, paymentLink)
	jobs := []Job{
		n.smsJob(contact.Phone, quoteProvidedSMS(reference, amount, currency, paymentLink)),
		n.emailJob(contact.Email, subject, body),
	}
	return n.dispatcher.Dispatch(ctx, jobs...)
}

// StatusChanged informs the customer of any other status movement.
func (n *Notifier) StatusChanged(ctx context.Context, reference string, contact Contact, status string) Report {
	subject, body := statusChangedEmail(reference, contact.Name, status)
	jobs := []Job{
		n.smsJob(contact.Phone, statusChangedSMS(reference, status)),
		n.emailJob(contact.Email, subject, body),
	}
	return n.dispatcher.Dispatch(ctx, jobs...)
}

// PaymentReceived confirms a completed payment to the customer and fans the
// alert out to every administrator, all channels in parallel.
func (n *Notifier) PaymentReceived(ctx context.Context, reference string, contact Contact, amount decimal.Decimal, currency string) Report {
	subject, body := paymentReceivedEmail(reference, contact.Name, amount, currency)
	jobs := []Job{
		n.smsJob(contact.Phone, paymentReceivedSMS(reference, amount, currency)),
		n.emailJob(contact.Email, subject, body),
	}
	jobs = append(jobs, n.adminJobs("payment received", reference)...)
	return n.dispatcher.Dispatch(ctx, jobs...)
}
