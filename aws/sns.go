package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/spf13/viper"
)

type SNSClient struct {
	C        *sns.Client
	TopicARN string
}

// NewSNS returns (nil, nil) when no topic is configured. That disables
// notification dispatch without being a startup error
func NewSNS() (*SNSClient, error) {
	topic := viper.GetString("aws.sns_topic_arn")
	if topic == "" {
		return nil, nil
	}

	cfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			viper.GetString("aws.access_key_id"),
			viper.GetString("aws.secret_access_key"),
			"",
		)),
	)
	if err != nil {
		return nil, err
	}

	client := sns.NewFromConfig(cfg, func(o *sns.Options) {
		o.Region = viper.GetString("aws.region")
	})

	return &SNSClient{
		C:        client,
		TopicARN: topic,
	}, nil
}

func (s *SNSClient) Publish(ctx context.Context, message []byte) error {
	_, err := s.C.Publish(ctx, &sns.PublishInput{
		Message:  aws.String(string(message)),
		TopicArn: aws.String(s.TopicARN),
	})
	return err
}
