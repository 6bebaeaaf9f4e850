package email

import (
	"github.com/edstack/exam-service/internal/utils"
)

// consoleService logs rendered messages instead of sending them.
// Used in development and test environments where no SendGrid key is configured.
type consoleService struct {
	frontendBaseURL string
	logger          utils.Logger
}

var _ EmailService = (*consoleService)(nil)

func NewConsoleService(frontendBaseURL string, logger utils.Logger) EmailService {
	return &consoleService{frontendBaseURL: frontendBaseURL, logger: logger}
}

func (svc *consoleService) SendMessages(messages ...*EmailMessage) {
	for _, msg := range messages {
		if err := msg.Render(svc.frontendBaseURL); err != nil {
			svc.logger.Error("rendering email", "error", err, "template", msg.TemplateName)
			continue
		}
		recipients := make([]string, 0, len(msg.To))
		for _, to := range msg.To {
			recipients = append(recipients, to.Address)
		}
		svc.logger.Info("email (console output)",
			"to", recipients,
			"subject", msg.Subject,
			"body", msg.TextContent)
	}
}
