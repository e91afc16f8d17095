package templates

import (
	"bytes"
	"embed"
	htmltemplate "html/template"
	texttemplate "text/template"
)

//go:embed *.tmpl
var templateFS embed.FS

// InvitationData feeds the invitation email templates.
type InvitationData struct {
	OrganisationName string
	StudyCount       int
	SignInURL        string
}

var (
	invitationHTML = htmltemplate.Must(htmltemplate.ParseFS(templateFS, "invitation.html.tmpl"))
	invitationText = texttemplate.Must(texttemplate.ParseFS(templateFS, "invitation.text.tmpl"))
)

// InvitationHTML renders the HTML invitation body. Pure; safe to call
// concurrently.
func InvitationHTML(data any) (string, error) {
	var buf bytes.Buffer
	if err := invitationHTML.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// InvitationText renders the plain-text invitation body.
func InvitationText(data any) (string, error) {
	var buf bytes.Buffer
	if err := invitationText.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
