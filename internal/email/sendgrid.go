package email

import (
	"net/http"
	"net/mail"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/edstack/exam-service/internal/utils"
)

const (
	sendgridHost     = "https://api.sendgrid.com"
	sendgridEndpoint = "/v3/mail/send"
)

type sendgridService struct {
	key             string
	from            *sgmail.Email
	frontendBaseURL string
	logger          utils.Logger
}

var _ EmailService = (*sendgridService)(nil)

func NewSendgridService(apiKey, fromName, fromAddress, frontendBaseURL string, logger utils.Logger) EmailService {
	return &sendgridService{
		key:             apiKey,
		from:            sgmail.NewEmail(fromName, fromAddress),
		frontendBaseURL: frontendBaseURL,
		logger:          logger,
	}
}

// SendMessages sends messages concurrently, fire-and-forget.
func (svc *sendgridService) SendMessages(messages ...*EmailMessage) {
	for _, msg := range messages {
		msg := msg
		go func() {
			if err := msg.Render(svc.frontendBaseURL); err != nil {
				svc.logger.Error("rendering email", "error", err, "template", msg.TemplateName)
				return
			}
			if msg.HasRecipients() && msg.HasContent() {
				svc.send(*msg)
			}
		}()
	}
}

func (svc *sendgridService) send(msg EmailMessage) {
	m := svc.prepare(msg)

	request := sendgrid.GetRequest(svc.key, sendgridEndpoint, sendgridHost)
	request.Method = http.MethodPost
	request.Body = sgmail.GetRequestBody(m)

	resp, err := sendgrid.API(request)
	if err != nil {
		svc.logger.Error("sending email", "error", err, "subject", msg.Subject)
		return
	}
	if resp.StatusCode >= 300 {
		svc.logger.Error("sendgrid rejected email",
			"status", resp.StatusCode,
			"body", resp.Body,
			"subject", msg.Subject)
	}
}

func (svc *sendgridService) prepare(msg EmailMessage) *sgmail.SGMailV3 {
	p := sgmail.NewPersonalization()
	p.Subject = msg.Subject
	for _, to := range msg.To {
		p.AddTos(svc.getSGEmail(to))
	}

	m := sgmail.NewV3Mail()
	m.SetFrom(svc.from)
	m.AddPersonalizations(p)

	if msg.TextContent != "" {
		m.AddContent(sgmail.NewContent("text/plain", msg.TextContent))
	}
	if msg.HTMLContent != "" {
		m.AddContent(sgmail.NewContent("text/html", msg.HTMLContent))
	}

	return m
}

func (svc *sendgridService) getSGEmail(addr mail.Address) *sgmail.Email {
	return sgmail.NewEmail(addr.Name, addr.Address)
}
