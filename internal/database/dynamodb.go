package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/hypernova-labs/fattura-service/internal/config"
)

// lockItem is the DynamoDB row of a held invoice lock.
//
// Table requirements:
//   - PK: id (string)
//   - optional TTL attribute: expires_at (epoch seconds)
type lockItem struct {
	ID        string `dynamodbav:"id"`
	Token     string `dynamodbav:"token"`
	ExpiresAt int64  `dynamodbav:"expires_at"`
}

// DynamoLocker implements invoice locks with DynamoDB conditional writes
type DynamoLocker struct {
	ddb       *dynamodb.Client
	tableName string
	now       func() time.Time
}

// ConnectDynamoDB builds a DynamoDB client from the lock configuration.
// DYNAMODB_ENDPOINT points the client at a local emulator.
func ConnectDynamoDB(ctx context.Context, cfg *config.Config) (*dynamodb.Client, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Locks.AWSRegion),
	}

	if endpoint := cfg.Locks.DynamoDBEndpoint; endpoint != "" {
		// Local DynamoDB does not validate credentials, but the SDK requires them.
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider("local", "local", ""),
		))
		resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, _ ...interface{}) (aws.Endpoint, error) {
			if service == dynamodb.ServiceID {
				return aws.Endpoint{URL: endpoint, SigningRegion: region, HostnameImmutable: true}, nil
			}
			return aws.Endpoint{}, &aws.EndpointNotFoundError{}
		})
		loadOpts = append(loadOpts, awsconfig.WithEndpointResolverWithOptions(resolver))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("error creating AWS config: %w", err)
	}

	return dynamodb.NewFromConfig(awsCfg), nil
}

// NewDynamoLocker creates a locker over tableName
func NewDynamoLocker(ddb *dynamodb.Client, tableName string) *DynamoLocker {
	return &DynamoLocker{
		ddb:       ddb,
		tableName: tableName,
		now:       time.Now,
	}
}

// TryLock writes the lock row unless a live holder owns it
func (l *DynamoLocker) TryLock(ctx context.Context, key, token string, ttl time.Duration) (bool, error) {
	now := l.now()
	av, err := attributevalue.MarshalMap(lockItem{
		ID:        key,
		Token:     token,
		ExpiresAt: now.Add(ttl).Unix(),
	})
	if err != nil {
		return false, fmt.Errorf("error marshalling lock: %w", err)
	}

	_, err = l.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(l.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(#id) OR #expires_at < :now"),
		ExpressionAttributeNames: map[string]string{
			"#id":         "id",
			"#expires_at": "expires_at",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":now": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", now.Unix())},
		},
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return false, nil
		}
		return false, fmt.Errorf("error acquiring dynamodb lock %s: %w", key, err)
	}

	return true, nil
}

// Unlock deletes the lock row if token still owns it
func (l *DynamoLocker) Unlock(ctx context.Context, key, token string) error {
	_, err := l.ddb.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(l.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: key},
		},
		ConditionExpression:      aws.String("#token = :token"),
		ExpressionAttributeNames: map[string]string{"#token": "token"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":token": &types.AttributeValueMemberS{Value: token},
		},
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			// Expired and taken over by someone else.
			return nil
		}
		return fmt.Errorf("error releasing dynamodb lock %s: %w", key, err)
	}

	return nil
}
