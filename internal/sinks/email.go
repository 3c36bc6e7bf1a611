package sinks

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	htmltemplate "html/template"
	"strings"
	"text/template"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	awsclient "assistant-workers/internal/common/aws"
	"assistant-workers/internal/common/logger"
	"assistant-workers/internal/common/validation"
	"assistant-workers/internal/models"
)

var (
	ErrNotificationFailed = errors.New("NOTIFICATION_SEND_FAILED")
	ErrNoRecipients       = errors.New("no valid recipients")
)

type EmailMessage struct {
	To      []string
	Subject string
	Text    string
	HTML    string
}

// EmailSender delivers rendered messages through SES.
type EmailSender struct {
	client awsclient.SESAPI
	from   string
	logger logger.Logger
}

func NewEmailSender(client awsclient.SESAPI, from string, log logger.Logger) *EmailSender {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &EmailSender{client: client, from: from, logger: log}
}

// Send drops malformed addresses and returns the SES message id.
func (s *EmailSender) Send(ctx context.Context, msg EmailMessage) (string, error) {
	to := make([]string, 0, len(msg.To))
	for _, addr := range msg.To {
		addr = strings.TrimSpace(addr)
		if validation.ValidateEmail(addr) {
			to = append(to, addr)
		} else {
			s.logger.Warn("Skipping invalid recipient", map[string]interface{}{"recipient": addr})
		}
	}
	if len(to) == 0 {
		return "", fmt.Errorf("%w: %v", ErrNotificationFailed, ErrNoRecipients)
	}

	body := &types.Body{Text: &types.Content{Data: aws.String(msg.Text)}}
	if msg.HTML != "" {
		body.Html = &types.Content{Data: aws.String(msg.HTML)}
	}

	out, err := s.client.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{ToAddresses: to},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(msg.Subject)},
			Body:    body,
		},
		Source: aws.String(s.from),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotificationFailed, err)
	}

	s.logger.Info("Email sent", map[string]interface{}{
		"recipients": len(to),
		"subject":    msg.Subject,
	})
	return aws.ToString(out.MessageId), nil
}

type summaryView struct {
	Location string
	Options  []models.Option
}

var summaryText = template.Must(template.New("summary").Funcs(template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}).Parse(`Team dinner options in {{.Location}}

{{range $i, $o := .Options}}{{inc $i}}. {{$o.Restaurant.Name}} ({{printf "%.1f" $o.Restaurant.Rating}}) on {{$o.Date}} at {{$o.Time}}, {{$o.AvailableAttendees}}/{{$o.TotalAttendees}} available
{{end}}
Reply with the option number to book.
`))

var summaryHTML = htmltemplate.Must(htmltemplate.New("summary").Parse(`<h2>Team dinner options in {{.Location}}</h2>
<ol>{{range .Options}}
<li><strong>{{.Restaurant.Name}}</strong> ({{printf "%.1f" .Restaurant.Rating}}) on {{.Date}} at {{.Time}}, {{.AvailableAttendees}}/{{.TotalAttendees}} available</li>{{end}}
</ol>`))

// RenderOptionSummary renders the option list mail. Recipients are left to the caller.
func RenderOptionSummary(location string, options []models.Option) (EmailMessage, error) {
	view := summaryView{Location: location, Options: options}

	var text, html bytes.Buffer
	if err := summaryText.Execute(&text, view); err != nil {
		return EmailMessage{}, fmt.Errorf("render summary text: %w", err)
	}
	if err := summaryHTML.Execute(&html, view); err != nil {
		return EmailMessage{}, fmt.Errorf("render summary html: %w", err)
	}

	return EmailMessage{
		Subject: fmt.Sprintf("Team Dinner Options - %s (%d)", location, len(options)),
		Text:    text.String(),
		HTML:    html.String(),
	}, nil
}

// RenderInvitation renders the booking invitation sent once an option is confirmed.
func RenderInvitation(conf *Confirmation, option models.Option) EmailMessage {
	var sb strings.Builder
	sb.WriteString("Dear Team,\n\nYou're invited to our team dinner!\n\n")
	fmt.Fprintf(&sb, "Date: %s\nTime: %s\nDuration: 2 hours\n\n", option.Date, option.Time)
	sb.WriteString(conf.Description)
	fmt.Fprintf(&sb, "\n\nConfirmation: %s (%s)\n%s\n", conf.ConfirmationID, conf.Status, conf.Instructions)
	fmt.Fprintf(&sb, "Add to calendar: %s\n", conf.CalendarLink)

	return EmailMessage{
		To:      append([]string(nil), conf.Attendees...),
		Subject: "Team Dinner Invitation - " + option.Restaurant.Name,
		Text:    sb.String(),
	}
}
