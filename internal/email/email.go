package email

import (
	"bytes"
	"fmt"
	htmltmpl "html/template"
	"net/mail"
	texttmpl "text/template"
)

// EmailMessage is one outbound email. Either BodyStr or a template name is
// set; Render fills TextContent/HTMLContent before sending.
type EmailMessage struct {
	To      []mail.Address
	Subject string
	BodyStr string // simple text/plain, non-templated content

	TemplateName string
	TemplateData interface{}
	TextContent  string
	HTMLContent  string
}

// ContextData is what templates execute against.
type ContextData struct {
	FrontendBaseURL string
	Data            interface{}
}

// EmailService is any service that can send emails. Sending is
// fire-and-forget: failures are logged, never propagated to the caller.
type EmailService interface {
	SendMessages(messages ...*EmailMessage)
}

func (m *EmailMessage) HasRecipients() bool {
	return len(m.To) > 0
}

func (m *EmailMessage) HasContent() bool {
	return m.TextContent != "" || m.HTMLContent != ""
}

// Render resolves the message templates against the registered template set.
func (m *EmailMessage) Render(frontendBaseURL string) error {
	data := ContextData{FrontendBaseURL: frontendBaseURL, Data: m.TemplateData}

	if m.BodyStr != "" {
		m.TextContent = m.BodyStr
		return nil
	}
	if m.TemplateName == "" {
		return nil
	}

	entry, ok := templates[m.TemplateName]
	if !ok {
		return fmt.Errorf("unknown email template %q", m.TemplateName)
	}

	var txt bytes.Buffer
	if err := entry.text.Execute(&txt, data); err != nil {
		return fmt.Errorf("rendering text template %q: %w", m.TemplateName, err)
	}
	m.TextContent = txt.String()

	var html bytes.Buffer
	if err := entry.html.Execute(&html, data); err != nil {
		return fmt.Errorf("rendering html template %q: %w", m.TemplateName, err)
	}
	m.HTMLContent = html.String()

	return nil
}

type tmplEntry struct {
	text *texttmpl.Template
	html *htmltmpl.Template
}

var templates = map[string]tmplEntry{}

func registerTemplate(name, textBody, htmlBody string) {
	templates[name] = tmplEntry{
		text: texttmpl.Must(texttmpl.New(name + ".txt").Parse(textBody)),
		html: htmltmpl.Must(htmltmpl.New(name + ".html").Parse(htmlBody)),
	}
}
