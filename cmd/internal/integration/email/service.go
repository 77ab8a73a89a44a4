package email

import (
	"context"
	"net/mail"

	"github.com/pkg/errors"
)

// Transport delivers an already rendered message.
type Transport interface {
	Deliver(ctx context.Context, msg *Message) error
}

type approvedData struct {
	Name      string
	Title     string
	Company   string
	AdminName string
}

type rejectedData struct {
	Name      string
	Title     string
	Company   string
	AdminName string
	Reason    string
}

type DefaultEmailService struct {
	transport       Transport
	frontendBaseURL string
}

func NewService(transport Transport, frontendBaseURL string) *DefaultEmailService {
	return &DefaultEmailService{transport: transport, frontendBaseURL: frontendBaseURL}
}

// SendApproved tells the requester their consultation was confirmed.
func (s *DefaultEmailService) SendApproved(ctx context.Context, to, name, title, company, adminName string) error {
	msg := &Message{
		To:           mail.Address{Name: name, Address: to},
		Subject:      "Votre consultation a été confirmée",
		TemplateName: templateApproved,
		TemplateData: approvedData{Name: name, Title: title, Company: company, AdminName: adminName},
	}
	return s.send(ctx, msg)
}

// SendRejected tells the requester their consultation could not be accepted.
// reason is optional.
func (s *DefaultEmailService) SendRejected(ctx context.Context, to, name, title, company, adminName string, reason *string) error {
	data := rejectedData{Name: name, Title: title, Company: company, AdminName: adminName}
	if reason != nil {
		data.Reason = *reason
	}
	msg := &Message{
		To:           mail.Address{Name: name, Address: to},
		Subject:      "Votre demande de consultation n'a pas pu être acceptée",
		TemplateName: templateRejected,
		TemplateData: data,
	}
	return s.send(ctx, msg)
}

func (s *DefaultEmailService) send(ctx context.Context, msg *Message) error {
	if !msg.HasRecipient() {
		return errors.New("email: message has no recipient")
	}
	if err := msg.Render(s.frontendBaseURL); err != nil {
		return errors.Wrap(err, "email")
	}
	if !msg.HasContent() {
		return errors.Errorf("email: template %s rendered empty", msg.TemplateName)
	}
	return errors.Wrapf(s.transport.Deliver(ctx, msg), "email: deliver to %s", msg.To.Address)
}
