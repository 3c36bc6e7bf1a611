// internal/common/aws/ses.go
package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
)

// SESAPI is the part of the SES client the sinks use.
type SESAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// LoadConfig resolves credentials from the default chain for the given region.
func LoadConfig(ctx context.Context, region string) (aws.Config, error) {
	return config.LoadDefaultConfig(ctx, config.WithRegion(region))
}

// NewSESClient builds an SES client. A non-empty endpoint overrides the regional
// endpoint, which is how local stacks are reached.
func NewSESClient(cfg aws.Config, endpoint string) *ses.Client {
	return ses.NewFromConfig(cfg, func(o *ses.Options) {
		if endpoint != "" {
			o.EndpointResolver = ses.EndpointResolverFromURL(endpoint)
		}
	})
}
