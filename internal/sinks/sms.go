package sinks

import (
	"context"
	"fmt"
	"regexp"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"

	awsclient "assistant-workers/internal/common/aws"
	"assistant-workers/internal/common/logger"
)

const maxSMSLength = 160

var e164Regex = regexp.MustCompile(`^\+[1-9]\d{6,14}$`)

// SMSSender publishes transactional text messages through SNS.
type SMSSender struct {
	client   awsclient.SNSAPI
	senderID string
	logger   logger.Logger
}

func NewSMSSender(client awsclient.SNSAPI, senderID string, log logger.Logger) *SMSSender {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &SMSSender{client: client, senderID: senderID, logger: log}
}

// Send expects an E.164 number. Messages longer than one SMS are truncated.
func (s *SMSSender) Send(ctx context.Context, phone, message string) (string, error) {
	if !e164Regex.MatchString(phone) {
		return "", fmt.Errorf("%w: invalid phone number %q", ErrNotificationFailed, phone)
	}
	if len(message) > maxSMSLength {
		message = message[:maxSMSLength]
	}

	attrs := map[string]types.MessageAttributeValue{
		"AWS.SNS.SMS.SMSType": {DataType: aws.String("String"), StringValue: aws.String("Transactional")},
	}
	if s.senderID != "" {
		attrs["AWS.SNS.SMS.SenderID"] = types.MessageAttributeValue{
			DataType:    aws.String("String"),
			StringValue: aws.String(s.senderID),
		}
	}

	out, err := s.client.Publish(ctx, &sns.PublishInput{
		PhoneNumber:       aws.String(phone),
		Message:           aws.String(message),
		MessageAttributes: attrs,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotificationFailed, err)
	}

	s.logger.Info("SMS sent", map[string]interface{}{"length": len(message)})
	return aws.ToString(out.MessageId), nil
}

// ConfirmationSMS is the short notice sent to the organiser.
func ConfirmationSMS(conf *Confirmation, restaurantName string) string {
	return fmt.Sprintf("%s: dinner at %s on %s. Call to confirm the table.",
		conf.ConfirmationID, restaurantName, conf.Start.Format("Jan 2 15:04"))
}
