package email

import (
	"bytes"
	"html/template"
)

var (
	messageTmpl = template.Must(template.New("message").Parse(
		`<p>New message from <strong>{{.Name}}</strong> &lt;{{.Email}}&gt;</p>` +
			`<p><strong>{{.Subject}}</strong></p><p>{{.Body}}</p>`))

	signUpNoticeTmpl = template.Must(template.New("signup_notice").Parse(
		`<p><strong>{{.Name}}</strong> &lt;{{.Email}}&gt; signed up as <em>{{.Role}}</em>` +
			`{{with .Opportunity}} for {{.}}{{end}}.</p>`))

	signUpConfirmTmpl = template.Must(template.New("signup_confirm").Parse(
		`<p>Hi {{.Name}},</p><p>Thanks for volunteering as <em>{{.Role}}</em>` +
			`{{with .Opportunity}} for {{.}}{{end}}. We'll be in touch soon.</p><p>Volunteer Connect</p>`))
)

// MessageData fills the contact-form notification.
type MessageData struct {
	Name, Email, Subject, Body string
}

// SignUpData fills the sign-up notice and confirmation.
type SignUpData struct {
	Name, Email, Role, Opportunity string
}

// MessageNotification is the inbox copy of a contact-form message. Replies
// go to the person who wrote it.
func MessageNotification(inbox string, d MessageData) (SendRequest, error) {
	body, err := execute(messageTmpl, d)
	if err != nil {
		return SendRequest{}, err
	}
	return SendRequest{
		To:      []string{inbox},
		Subject: "Contact form: " + d.Subject,
		HTML:    body,
		ReplyTo: d.Email,
	}, nil
}

// SignUpEmails returns the volunteer's confirmation and the inbox notice.
func SignUpEmails(inbox string, d SignUpData) ([]SendRequest, error) {
	confirm, err := execute(signUpConfirmTmpl, d)
	if err != nil {
		return nil, err
	}
	notice, err := execute(signUpNoticeTmpl, d)
	if err != nil {
		return nil, err
	}
	return []SendRequest{
		{To: []string{d.Email}, Subject: "Thanks for signing up", HTML: confirm},
		{To: []string{inbox}, Subject: "New volunteer: " + d.Name, HTML: notice, ReplyTo: d.Email},
	}, nil
}

func execute(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
