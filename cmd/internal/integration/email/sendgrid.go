package email

import (
	"context"
	"net/http"

	"github.com/pkg/errors"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

const (
	sendgridHost     = "https://api.sendgrid.com"
	sendgridEndpoint = "/v3/mail/send"
)

type SendgridTransport struct {
	key        string
	host       string
	client     *rest.Client
	from       *sgmail.Email
	subjPrefix string
}

func NewSendgridTransport(key, appName, fromAddress string) *SendgridTransport {
	return &SendgridTransport{
		key:        key,
		host:       sendgridHost,
		client:     rest.DefaultClient,
		from:       sgmail.NewEmail(appName, fromAddress),
		subjPrefix: "[" + appName + "] ",
	}
}

// Deliver posts msg to the SendGrid v3 mail endpoint. The request is bound
// to ctx so a slow API call is abandoned when the caller gives up.
func (t *SendgridTransport) Deliver(ctx context.Context, msg *Message) error {
	req := sendgrid.GetRequest(t.key, sendgridEndpoint, t.host)
	req.Method = rest.Post
	req.Body = sgmail.GetRequestBody(t.prepare(msg))

	httpReq, err := rest.BuildRequestObject(req)
	if err != nil {
		return errors.Wrap(err, "building email request")
	}

	httpRes, err := t.client.MakeRequest(httpReq.WithContext(ctx))
	if err != nil {
		return errors.Wrap(err, "sending email")
	}

	res, err := rest.BuildResponse(httpRes)
	if err != nil {
		return errors.Wrap(err, "reading email response")
	}
	if res.StatusCode >= http.StatusBadRequest {
		return errors.Errorf("sending email - status: %d - body: %s", res.StatusCode, res.Body)
	}
	return nil
}

func (t *SendgridTransport) prepare(msg *Message) *sgmail.SGMailV3 {
	p := sgmail.NewPersonalization()
	p.Subject = t.subjPrefix + msg.Subject
	p.AddTos(sgmail.NewEmail(msg.To.Name, msg.To.Address))

	m := sgmail.NewV3Mail()
	m.SetFrom(t.from)
	m.AddPersonalizations(p)
	m.AddContent(
		sgmail.NewContent("text/plain", msg.TextContent),
		sgmail.NewContent("text/html", msg.HTMLContent),
	)
	return m
}
