package email

import (
	"bytes"
	"html/template"
	"strings"
	"time"

	"Backend-Feedback-Portal/src/models"
)

type FormPublishedData struct {
	StudentName string
	FormTitle   string
	Description string
	Questions   int
	Deadline    string
	FillLink    string
}

var formPublishedTmpl = template.Must(template.New("formPublished").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #222;">
  <p>สวัสดี {{.StudentName}},</p>
  <p>A new feedback form is open for you: <strong>{{.FormTitle}}</strong></p>
  {{if .Description}}<p>{{.Description}}</p>{{end}}
  <p>{{.Questions}} question(s){{if .Deadline}}, open until {{.Deadline}}{{end}}.</p>
  <p><a href="{{.FillLink}}" style="background:#1f6feb;color:#fff;padding:10px 16px;border-radius:6px;text-decoration:none;">Fill in the form</a></p>
</body>
</html>`))

func RenderFormPublishedHTML(data FormPublishedData) (string, error) {
	var buf bytes.Buffer
	if err := formPublishedTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// FormMailer sends the formPublished e-mail; it satisfies the notification Mailer.
type FormMailer struct {
	sender  MailSender
	baseURL string
}

func NewFormMailer(sender MailSender, baseURL string) *FormMailer {
	return &FormMailer{sender: sender, baseURL: strings.TrimRight(baseURL, "/")}
}

func (m *FormMailer) SendFormPublished(to models.User, form *models.Form) error {
	if to.Email == "" {
		return nil
	}
	data := FormPublishedData{
		StudentName: to.FullName,
		FormTitle:   form.Title,
		Description: form.Description,
		Questions:   len(form.Questions),
		FillLink:    form.FillURL(m.baseURL),
	}
	if form.Deadline != nil {
		data.Deadline = form.Deadline.In(bangkok()).Format("02/01/2006 15:04")
	}

	html, err := RenderFormPublishedHTML(data)
	if err != nil {
		return err
	}
	return m.sender.Send(to.Email, "New feedback form: "+form.Title, html)
}

func bangkok() *time.Location {
	loc, err := time.LoadLocation("Asia/Bangkok")
	if err != nil {
		return time.UTC
	}
	return loc
}
