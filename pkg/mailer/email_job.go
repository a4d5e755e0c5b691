package mailer

import "strings"

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// Either Template+Data or Subject+Text/HTML must be set.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"` // verify_email, reset_password
	Data     map[string]any `json:"data,omitempty"`
}

// Normalize fills recipient fields the templates expect from To.
func (j *EmailJob) Normalize() {
	j.To = strings.TrimSpace(j.To)
	if j.Data == nil {
		j.Data = map[string]any{}
	}
	for _, k := range []string{"Email", "RecipientEmail"} {
		if v, _ := j.Data[k].(string); v == "" {
			j.Data[k] = j.To
		}
	}
}
