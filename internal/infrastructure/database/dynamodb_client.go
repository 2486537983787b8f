package database

import (
	"context"

	"retail_backoffice/internal/infrastructure/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// ConnectDynamoDB creates a DynamoDB client from the loaded configuration.
//
// Local DynamoDB is reached by setting DYNAMODB_ENDPOINT (e.g.
// http://dynamodb:8000); it does not validate credentials, but the SDK
// requires some, so they default to "local".
func ConnectDynamoDB(ctx context.Context, cfg config.Config) (*dynamodb.Client, error) {
	awsCfg, err := NewDynamoDBConfig(ctx, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "dynamodb config")
	}

	var optFns []func(*dynamodb.Options)
	if cfg.DynamoDBEndpoint != "" {
		endpoint := cfg.DynamoDBEndpoint
		optFns = append(optFns, func(o *dynamodb.Options) {
			o.BaseEndpoint = aws.String(endpoint)
		})
		log.Printf("[store][dynamodb] using endpoint=%s region=%s", endpoint, cfg.AWSRegion)
	}
	return dynamodb.NewFromConfig(awsCfg, optFns...), nil
}

func NewDynamoDBConfig(ctx context.Context, cfg config.Config) (aws.Config, error) {
	creds := credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, "")
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
		awsconfig.WithCredentialsProvider(creds),
	)
}
