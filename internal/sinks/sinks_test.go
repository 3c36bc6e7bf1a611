package sinks

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assistant-workers/internal/common/logger"
	"assistant-workers/internal/models"
)

// ==========================
// Mocks
// ==========================

type MockSESService struct {
	SendEmailFunc func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

func (m *MockSESService) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	return m.SendEmailFunc(ctx, params, optFns...)
}

type MockSNSService struct {
	PublishFunc func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

func (m *MockSNSService) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	return m.PublishFunc(ctx, params, optFns...)
}

type fakeWriter struct {
	messages []kafka.Message
	err      error
	closeErr error
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return w.closeErr
}

func testOption() models.Option {
	return models.Option{
		Restaurant: models.RestaurantCandidate{
			Name:           "Paradise Biryani",
			Rating:         4.5,
			ReviewCount:    1200,
			Cuisines:       []string{"indian", "biryani"},
			Address:        "Secunderabad, Hyderabad",
			Phone:          "+91-40-6666-1234",
			BusinessStatus: models.BusinessStatusOperational,
		},
		Date:               "2026-10-20",
		Time:               "19:30",
		AvailableAttendees: 5,
		TotalAttendees:     6,
	}
}

func fixedNow() time.Time {
	return time.Date(2026, 10, 18, 14, 5, 9, 0, time.UTC)
}

// ==========================
// Booking
// ==========================

func TestBooker_Confirm(t *testing.T) {
	b := NewBooker(fixedNow)
	attendees := []string{"alice@company.com", "bob@company.com"}

	conf, err := b.Confirm(testOption(), attendees)
	require.NoError(t, err)

	assert.Equal(t, "BOOK_20261018140509", conf.ConfirmationID)
	assert.Equal(t, StatusPendingConfirmation, conf.Status)
	assert.Equal(t, ReservationMethodManual, conf.Method)
	assert.Equal(t, "Team Dinner at Paradise Biryani", conf.EventTitle)
	assert.Equal(t, time.Date(2026, 10, 20, 19, 30, 0, 0, time.UTC), conf.Start)
	assert.Equal(t, conf.Start.Add(2*time.Hour), conf.End)
	assert.Equal(t, "Call +91-40-6666-1234 to confirm reservation", conf.Instructions)
	assert.Equal(t, attendees, conf.Attendees)
	assert.Contains(t, conf.Description, "Team Dinner Booking - BOOK_20261018140509")
	assert.Contains(t, conf.Description, "- bob@company.com")

	link, err := url.Parse(conf.CalendarLink)
	require.NoError(t, err)
	assert.Equal(t, "calendar.google.com", link.Host)
	q := link.Query()
	assert.Equal(t, "TEMPLATE", q.Get("action"))
	assert.Equal(t, "Team Dinner at Paradise Biryani", q.Get("text"))
	assert.Equal(t, "20261020T193000Z/20261020T213000Z", q.Get("dates"))
	assert.NotContains(t, q.Get("details"), "\n")
}

func TestBooker_ConfirmRejectsInvalidOptions(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(o *models.Option)
	}{
		{"missing restaurant name", func(o *models.Option) { o.Restaurant.Name = "" }},
		{"bad time", func(o *models.Option) { o.Time = "7pm" }},
		{"bad date", func(o *models.Option) { o.Date = "20/10/2026" }},
		{"more available than invited", func(o *models.Option) { o.AvailableAttendees = 9 }},
	}

	b := NewBooker(fixedNow)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opt := testOption()
			tt.mutate(&opt)
			_, err := b.Confirm(opt, nil)
			assert.ErrorIs(t, err, ErrInvalidOption)
		})
	}
}

func TestBooker_NoPhoneFallsBackToGenericInstructions(t *testing.T) {
	opt := testOption()
	opt.Restaurant.Phone = ""

	conf, err := NewBooker(fixedNow).Confirm(opt, nil)
	require.NoError(t, err)
	assert.Equal(t, "Call the restaurant to confirm reservation", conf.Instructions)
	assert.Contains(t, conf.Description, "Phone: N/A")
}

func TestCalendarLink_TruncatesDetails(t *testing.T) {
	start := time.Date(2026, 10, 20, 18, 0, 0, 0, time.UTC)
	details := strings.Repeat("line\n", 200)

	link, err := url.Parse(CalendarLink("Dinner", details, start, start.Add(EventDuration)))
	require.NoError(t, err)

	got := link.Query().Get("details")
	assert.Len(t, got, 500)
	assert.NotContains(t, got, "\n")
	assert.Equal(t, "true", link.Query().Get("sf"))
}

// ==========================
// Email
// ==========================

func TestEmailSender_Send(t *testing.T) {
	var captured *ses.SendEmailInput
	mock := &MockSESService{
		SendEmailFunc: func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
			captured = params
			return &ses.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
		},
	}
	sender := NewEmailSender(mock, "assistant@company.com", logger.NewTestLogger(t))

	id, err := sender.Send(context.Background(), EmailMessage{
		To:      []string{"alice@company.com", "not-an-email", " bob@company.com "},
		Subject: "Options",
		Text:    "plain",
		HTML:    "<p>html</p>",
	})
	require.NoError(t, err)
	assert.Equal(t, "msg-1", id)

	require.NotNil(t, captured)
	assert.Equal(t, []string{"alice@company.com", "bob@company.com"}, captured.Destination.ToAddresses)
	assert.Equal(t, "assistant@company.com", aws.ToString(captured.Source))
	assert.Equal(t, "Options", aws.ToString(captured.Message.Subject.Data))
	assert.Equal(t, "plain", aws.ToString(captured.Message.Body.Text.Data))
	assert.Equal(t, "<p>html</p>", aws.ToString(captured.Message.Body.Html.Data))
}

func TestEmailSender_Errors(t *testing.T) {
	tests := []struct {
		name string
		to   []string
		err  error
	}{
		{"no valid recipients", []string{"nobody"}, nil},
		{"ses failure", []string{"alice@company.com"}, errors.New("throttled")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			mock := &MockSESService{
				SendEmailFunc: func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
					calls++
					return nil, tt.err
				},
			}
			sender := NewEmailSender(mock, "assistant@company.com", nil)

			_, err := sender.Send(context.Background(), EmailMessage{To: tt.to, Subject: "s", Text: "t"})
			assert.ErrorIs(t, err, ErrNotificationFailed)
			if tt.err == nil {
				assert.Zero(t, calls)
			}
		})
	}
}

func TestRenderOptionSummary(t *testing.T) {
	second := testOption()
	second.Restaurant.Name = "Bawarchi & Sons"
	second.Time = "19:00"

	msg, err := RenderOptionSummary("Hyderabad", []models.Option{testOption(), second})
	require.NoError(t, err)

	assert.Equal(t, "Team Dinner Options - Hyderabad (2)", msg.Subject)
	assert.Contains(t, msg.Text, "1. Paradise Biryani (4.5) on 2026-10-20 at 19:30, 5/6 available")
	assert.Contains(t, msg.Text, "2. Bawarchi & Sons (4.5) on 2026-10-20 at 19:00")
	assert.Contains(t, msg.HTML, "Bawarchi &amp; Sons")
	assert.Empty(t, msg.To)
}

func TestRenderInvitation(t *testing.T) {
	conf, err := NewBooker(fixedNow).Confirm(testOption(), []string{"alice@company.com"})
	require.NoError(t, err)

	msg := RenderInvitation(conf, testOption())
	assert.Equal(t, "Team Dinner Invitation - Paradise Biryani", msg.Subject)
	assert.Equal(t, []string{"alice@company.com"}, msg.To)
	assert.Contains(t, msg.Text, "Confirmation: BOOK_20261018140509 (pending_confirmation)")
	assert.Contains(t, msg.Text, conf.CalendarLink)
}

// ==========================
// SMS
// ==========================

func TestSMSSender_Send(t *testing.T) {
	var captured *sns.PublishInput
	mock := &MockSNSService{
		PublishFunc: func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
			captured = params
			return &sns.PublishOutput{MessageId: aws.String("sms-1")}, nil
		},
	}
	sender := NewSMSSender(mock, "DINNER", logger.NewTestLogger(t))

	id, err := sender.Send(context.Background(), "+919876543210", strings.Repeat("x", 200))
	require.NoError(t, err)
	assert.Equal(t, "sms-1", id)

	require.NotNil(t, captured)
	assert.Equal(t, "+919876543210", aws.ToString(captured.PhoneNumber))
	assert.Len(t, aws.ToString(captured.Message), 160)
	assert.Equal(t, "DINNER", aws.ToString(captured.MessageAttributes["AWS.SNS.SMS.SenderID"].StringValue))
	assert.Equal(t, "Transactional", aws.ToString(captured.MessageAttributes["AWS.SNS.SMS.SMSType"].StringValue))
}

func TestSMSSender_Errors(t *testing.T) {
	mock := &MockSNSService{
		PublishFunc: func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
			return nil, errors.New("opted out")
		},
	}
	sender := NewSMSSender(mock, "", nil)

	_, err := sender.Send(context.Background(), "9876543210", "hi")
	assert.ErrorIs(t, err, ErrNotificationFailed)

	_, err = sender.Send(context.Background(), "+919876543210", "hi")
	assert.ErrorIs(t, err, ErrNotificationFailed)
}

func TestConfirmationSMS(t *testing.T) {
	conf, err := NewBooker(fixedNow).Confirm(testOption(), nil)
	require.NoError(t, err)

	assert.Equal(t, "BOOK_20261018140509: dinner at Paradise Biryani on Oct 20 19:30. Call to confirm the table.",
		ConfirmationSMS(conf, "Paradise Biryani"))
}

// ==========================
// Events
// ==========================

func TestEventPublisher_PublishOptionsGenerated(t *testing.T) {
	w := &fakeWriter{}
	p := NewEventPublisher(w, nil, logger.NewTestLogger(t))
	p.now = fixedNow

	id, err := p.PublishOptionsGenerated(context.Background(), OptionsGeneratedPayload{
		Location: "Hyderabad",
		Status:   "OPTIONS",
		Options:  []models.Option{testOption()},
	})
	require.NoError(t, err)
	require.Len(t, w.messages, 1)

	msg := w.messages[0]
	assert.Equal(t, "hyderabad", string(msg.Key))

	headers := map[string]string{}
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, id, headers[HeaderEventID])
	assert.Equal(t, EventOptionsGenerated, headers[HeaderEventType])
	assert.Equal(t, "assistant-workers", headers[HeaderSource])

	var decoded struct {
		ID         string                  `json:"eventId"`
		Type       string                  `json:"type"`
		OccurredAt time.Time               `json:"occurredAt"`
		Payload    OptionsGeneratedPayload `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, id, decoded.ID)
	assert.True(t, fixedNow().Equal(decoded.OccurredAt))
	assert.Equal(t, "Paradise Biryani", decoded.Payload.Options[0].Restaurant.Name)
}

func TestEventPublisher_PublishOptionConfirmed(t *testing.T) {
	w := &fakeWriter{}
	p := NewEventPublisher(nil, w, nil)

	conf, err := NewBooker(fixedNow).Confirm(testOption(), nil)
	require.NoError(t, err)

	_, err = p.PublishOptionConfirmed(context.Background(), OptionConfirmedPayload{Confirmation: conf, Option: testOption()})
	require.NoError(t, err)
	require.Len(t, w.messages, 1)
	assert.Equal(t, "BOOK_20261018140509", string(w.messages[0].Key))
}

func TestEventPublisher_SkipsMissingWriter(t *testing.T) {
	p := NewEventPublisher(nil, nil, nil)

	id, err := p.PublishOptionsGenerated(context.Background(), OptionsGeneratedPayload{Location: "Delhi"})
	require.NoError(t, err)
	assert.Empty(t, id)
	assert.NoError(t, p.Close())
}

func TestEventPublisher_WriteFailure(t *testing.T) {
	w := &fakeWriter{err: errors.New("leader not available")}
	p := NewEventPublisher(w, nil, nil)

	_, err := p.PublishOptionsGenerated(context.Background(), OptionsGeneratedPayload{Location: "Delhi"})
	assert.ErrorIs(t, err, ErrEventPublishFailed)
}

func TestEventPublisher_CloseJoinsErrors(t *testing.T) {
	a := &fakeWriter{closeErr: errors.New("a")}
	b := &fakeWriter{}
	p := NewEventPublisher(a, b, nil)

	err := p.Close()
	require.Error(t, err)
	assert.True(t, a.closed)
	assert.True(t, b.closed)
}
