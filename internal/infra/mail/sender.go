package mail

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"gopkg.in/gomail.v2"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

func NewEmailSender(host string, port int, user, password, from string) *EmailSender {
	return &EmailSender{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		From:     from,
	}
}

// Render executes templates/<name>.html. "Content" is trusted HTML built by
// the notification fan-out; every other value is escaped.
func Render(name string, data map[string]string) (string, error) {
	t := templates.Lookup(name + ".html")
	if t == nil {
		return "", fmt.Errorf("unknown email template %q", name)
	}

	values := make(map[string]any, len(data))
	for k, v := range data {
		values[k] = v
	}
	if c, ok := data["Content"]; ok {
		values["Content"] = template.HTML(c)
	}

	var body bytes.Buffer
	if err := t.Execute(&body, values); err != nil {
		return "", fmt.Errorf("render template %s: %w", name, err)
	}
	return body.String(), nil
}

func (s *EmailSender) SendTemplate(to, subject, name string, data map[string]string) error {
	body, err := Render(name, data)
	if err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(s.Host, s.Port, s.User, s.Password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("send email via smtp: %w", err)
	}
	return nil
}
