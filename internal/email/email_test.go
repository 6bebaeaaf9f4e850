package email

import (
	"net/mail"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderWelcomeTemplate(t *testing.T) {
	msg := &EmailMessage{
		To:           []mail.Address{{Name: "Asha Rao", Address: "asha@example.com"}},
		Subject:      "Welcome",
		TemplateName: TemplateWelcome,
		TemplateData: WelcomeData{FullName: "Asha Rao", Email: "asha@example.com", Password: "temp-pass-1"},
	}

	require.NoError(t, msg.Render("https://portal.example.com"))

	assert.Contains(t, msg.TextContent, "Asha Rao")
	assert.Contains(t, msg.TextContent, "asha@example.com")
	assert.Contains(t, msg.TextContent, "temp-pass-1")
	assert.Contains(t, msg.TextContent, "https://portal.example.com")
	assert.Contains(t, msg.HTMLContent, "<a href=\"https://portal.example.com\">")
}

func TestRenderOTPTemplate(t *testing.T) {
	msg := &EmailMessage{
		To:           []mail.Address{{Address: "asha@example.com"}},
		TemplateName: TemplateOTPReset,
		TemplateData: OTPResetData{FullName: "Asha Rao", OTP: "482913", ExpiresIn: 10},
	}

	require.NoError(t, msg.Render("https://portal.example.com"))

	assert.Contains(t, msg.TextContent, "482913")
	assert.Contains(t, msg.TextContent, "10 minutes")
	assert.Contains(t, msg.HTMLContent, "<strong>482913</strong>")
}

func TestRenderTestAlertOmitsEmptyStartTime(t *testing.T) {
	msg := &EmailMessage{
		To:           []mail.Address{{Address: "asha@example.com"}},
		TemplateName: TemplateTestAlert,
		TemplateData: TestAlertData{FullName: "Asha Rao", TestTitle: "Weekly Mock 4"},
	}

	require.NoError(t, msg.Render("https://portal.example.com"))

	assert.Contains(t, msg.TextContent, "Weekly Mock 4")
	assert.NotContains(t, msg.TextContent, "starting")
}

func TestRenderBodyStrPassthrough(t *testing.T) {
	msg := &EmailMessage{
		To:      []mail.Address{{Address: "asha@example.com"}},
		BodyStr: "plain announcement",
	}

	require.NoError(t, msg.Render("https://portal.example.com"))
	assert.Equal(t, "plain announcement", msg.TextContent)
	assert.Empty(t, msg.HTMLContent)
}

func TestRenderUnknownTemplate(t *testing.T) {
	msg := &EmailMessage{TemplateName: "no_such_template"}
	assert.Error(t, msg.Render("https://portal.example.com"))
}

func TestMessagePredicates(t *testing.T) {
	empty := &EmailMessage{}
	assert.False(t, empty.HasRecipients())
	assert.False(t, empty.HasContent())

	rendered := &EmailMessage{
		To:          []mail.Address{{Address: "asha@example.com"}},
		TextContent: "hello",
	}
	assert.True(t, rendered.HasRecipients())
	assert.True(t, rendered.HasContent())
}
