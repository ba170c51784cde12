package mail

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
)

var resetPasswordTmpl = template.Must(template.New("reset-password").Parse(`<p>Hi {{.Name}},</p>
<p>Somebody asked to reset the password of your {{.AppName}} account.</p>
<p><a href="{{.Link}}">Choose a new password</a></p>
<p>The link can be used once and expires in {{.ExpireHours}} hours. If you did not ask for it you can ignore this email.</p>
`))

type ResetPasswordParams struct {
	AppName     string
	Name        string
	Link        string
	ExpireHours int
}

func SendResetPasswordLink(ctx context.Context, sender Sender, toEmail string, params ResetPasswordParams) error {
	var body bytes.Buffer
	if err := resetPasswordTmpl.Execute(&body, params); err != nil {
		return fmt.Errorf("render reset password mail: %w", err)
	}
	return sender.Send(ctx, &Message{
		To:      []string{toEmail},
		Subject: fmt.Sprintf("Reset your %s password", params.AppName),
		Body:    body.String(),
		IsHTML:  true,
	})
}
