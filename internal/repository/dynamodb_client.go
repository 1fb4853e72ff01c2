package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"mortgage-voice-relay/internal/domain"
)

const (
	pkPrefixDay = "DAY#"
	skPrefixMsg = "MSG#"
	ttlDuration = 30 * 24 * time.Hour // 30-day TTL
)

// dynamodbAPI is the minimal DynamoDB interface required by Client.
type dynamodbAPI interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// Client writes email delivery records to a DynamoDB table, partitioned by
// UTC day so a day's deliveries can be queried together.
type Client struct {
	api       dynamodbAPI
	tableName string
	now       func() time.Time
}

// New creates a new repository Client.
func New(api dynamodbAPI, tableName string) (*Client, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	return &Client{api: api, tableName: tableName, now: time.Now}, nil
}

func dayPK(ts time.Time) string {
	return pkPrefixDay + ts.UTC().Format("2006-01-02")
}

func deliverySK(ts time.Time, messageID string) string {
	return skPrefixMsg + ts.UTC().Format(time.RFC3339) + "#" + messageID
}

func (c *Client) ttlValue() int64 {
	return c.now().Add(ttlDuration).Unix()
}

// RecordDelivery fills in the keys and TTL, then writes the record. An
// existing record with the same keys is never overwritten.
func (c *Client) RecordDelivery(ctx context.Context, rec domain.DeliveryRecord) error {
	if strings.TrimSpace(rec.MessageID) == "" {
		return errors.New("repository: RecordDelivery: message id is required")
	}
	sentAt := c.now().UTC()
	if rec.SentAt != "" {
		parsed, err := time.Parse(time.RFC3339, rec.SentAt)
		if err != nil {
			return fmt.Errorf("repository: RecordDelivery: parse sentAt: %w", err)
		}
		sentAt = parsed.UTC()
	}
	rec.SentAt = sentAt.Format(time.RFC3339)
	rec.PK = dayPK(sentAt)
	rec.SK = deliverySK(sentAt, rec.MessageID)
	rec.TTL = c.ttlValue()

	_, err := c.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(c.tableName),
		Item:                deliveryItem(rec),
		ConditionExpression: aws.String("attribute_not_exists(PK) AND attribute_not_exists(SK)"),
	})
	if err != nil {
		return fmt.Errorf("repository: RecordDelivery: %w", err)
	}
	return nil
}

func deliveryItem(rec domain.DeliveryRecord) map[string]types.AttributeValue {
	item := map[string]types.AttributeValue{
		"PK":              &types.AttributeValueMemberS{Value: rec.PK},
		"SK":              &types.AttributeValueMemberS{Value: rec.SK},
		"messageId":       &types.AttributeValueMemberS{Value: rec.MessageID},
		"sentAt":          &types.AttributeValueMemberS{Value: rec.SentAt},
		"recipient":       &types.AttributeValueMemberS{Value: rec.Recipient},
		"hasRecording":    &types.AttributeValueMemberBOOL{Value: rec.HasRecording},
		"transcriptBytes": &types.AttributeValueMemberN{Value: strconv.Itoa(rec.TranscriptBytes)},
		"summaryBytes":    &types.AttributeValueMemberN{Value: strconv.Itoa(rec.SummaryBytes)},
		"ttl":             &types.AttributeValueMemberN{Value: strconv.FormatInt(rec.TTL, 10)},
	}
	if rec.RecordingName != "" {
		item["recordingName"] = &types.AttributeValueMemberS{Value: rec.RecordingName}
	}
	return item
}
