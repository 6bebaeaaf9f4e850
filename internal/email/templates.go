package email

// Template names used by callers.
const (
	TemplateWelcome   = "welcome"
	TemplateOTPReset  = "otp_reset"
	TemplateTestAlert = "test_alert"
)

// WelcomeData fills the onboarding email.
type WelcomeData struct {
	FullName string
	Email    string
	Password string
}

// OTPResetData fills the password-reset email.
type OTPResetData struct {
	FullName string
	OTP      string
	// Minutes until the OTP expires.
	ExpiresIn int
}

// TestAlertData fills the new-test announcement.
type TestAlertData struct {
	FullName  string
	TestTitle string
	StartTime string
}

func init() {
	registerTemplate(TemplateWelcome,
		`Hi {{.Data.FullName}},

Your account has been created.

  Email:    {{.Data.Email}}
  Password: {{.Data.Password}}

Sign in at {{.FrontendBaseURL}} and change your password.
`,
		`<p>Hi {{.Data.FullName}},</p>
<p>Your account has been created.</p>
<ul>
  <li>Email: {{.Data.Email}}</li>
  <li>Password: {{.Data.Password}}</li>
</ul>
<p>Sign in at <a href="{{.FrontendBaseURL}}">{{.FrontendBaseURL}}</a> and change your password.</p>
`)

	registerTemplate(TemplateOTPReset,
		`Hi {{.Data.FullName}},

Your one-time password reset code is {{.Data.OTP}}.
It expires in {{.Data.ExpiresIn}} minutes. If you did not request a reset,
ignore this email.
`,
		`<p>Hi {{.Data.FullName}},</p>
<p>Your one-time password reset code is <strong>{{.Data.OTP}}</strong>.</p>
<p>It expires in {{.Data.ExpiresIn}} minutes. If you did not request a reset, ignore this email.</p>
`)

	registerTemplate(TemplateTestAlert,
		`Hi {{.Data.FullName}},

A new test "{{.Data.TestTitle}}" is available{{if .Data.StartTime}} starting {{.Data.StartTime}}{{end}}.
Log in at {{.FrontendBaseURL}} to take it.
`,
		`<p>Hi {{.Data.FullName}},</p>
<p>A new test <strong>{{.Data.TestTitle}}</strong> is available{{if .Data.StartTime}} starting {{.Data.StartTime}}{{end}}.</p>
<p>Log in at <a href="{{.FrontendBaseURL}}">{{.FrontendBaseURL}}</a> to take it.</p>
`)
}
