package repository

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/require"

	"mortgage-voice-relay/internal/domain"
)

type fakeDynamo struct {
	putErr       error
	lastPutInput *dynamodb.PutItemInput
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.lastPutInput = in
	return &dynamodb.PutItemOutput{}, f.putErr
}

var fixedNow = time.Date(2026, 3, 1, 23, 59, 30, 0, time.UTC)

func mustNewClient(t *testing.T, db *fakeDynamo) *Client {
	t.Helper()
	c, err := New(db, "test-table")
	require.NoError(t, err)
	c.now = func() time.Time { return fixedNow }
	return c
}

func sAttr(t *testing.T, item map[string]types.AttributeValue, key string) string {
	t.Helper()
	v, ok := item[key].(*types.AttributeValueMemberS)
	require.True(t, ok, "attribute %q is not a string", key)
	return v.Value
}

func nAttr(t *testing.T, item map[string]types.AttributeValue, key string) string {
	t.Helper()
	v, ok := item[key].(*types.AttributeValueMemberN)
	require.True(t, ok, "attribute %q is not a number", key)
	return v.Value
}

func TestNew_Validates(t *testing.T) {
	_, err := New(nil, "t")
	require.Error(t, err)
	_, err = New(&fakeDynamo{}, "  ")
	require.Error(t, err)
}

func TestRecordDelivery_HappyPath(t *testing.T) {
	db := &fakeDynamo{}
	c := mustNewClient(t, db)

	err := c.RecordDelivery(context.Background(), domain.DeliveryRecord{
		MessageID:       "<abc@omni.example>",
		SentAt:          "2026-03-01T12:00:00Z",
		Recipient:       "loans@omni.example",
		HasRecording:    true,
		RecordingName:   "call.webm",
		TranscriptBytes: 120,
		SummaryBytes:    40,
	})
	require.NoError(t, err)

	in := db.lastPutInput
	require.NotNil(t, in)
	require.Equal(t, "test-table", *in.TableName)
	require.Equal(t, "attribute_not_exists(PK) AND attribute_not_exists(SK)", *in.ConditionExpression)

	item := in.Item
	require.Equal(t, "DAY#2026-03-01", sAttr(t, item, "PK"))
	require.Equal(t, "MSG#2026-03-01T12:00:00Z#<abc@omni.example>", sAttr(t, item, "SK"))
	require.Equal(t, "<abc@omni.example>", sAttr(t, item, "messageId"))
	require.Equal(t, "loans@omni.example", sAttr(t, item, "recipient"))
	require.Equal(t, "call.webm", sAttr(t, item, "recordingName"))
	require.Equal(t, "120", nAttr(t, item, "transcriptBytes"))
	require.Equal(t, "40", nAttr(t, item, "summaryBytes"))
	require.True(t, item["hasRecording"].(*types.AttributeValueMemberBOOL).Value)
}

func TestRecordDelivery_TTLIsThirtyDaysOut(t *testing.T) {
	db := &fakeDynamo{}
	c := mustNewClient(t, db)

	require.NoError(t, c.RecordDelivery(context.Background(), domain.DeliveryRecord{MessageID: "<a@b>"}))
	want := fixedNow.Add(30 * 24 * time.Hour).Unix()
	require.Equal(t, strconv.FormatInt(want, 10), nAttr(t, db.lastPutInput.Item, "ttl"))
}

func TestRecordDelivery_DefaultsSentAtToNow(t *testing.T) {
	db := &fakeDynamo{}
	c := mustNewClient(t, db)

	require.NoError(t, c.RecordDelivery(context.Background(), domain.DeliveryRecord{MessageID: "<a@b>"}))
	item := db.lastPutInput.Item
	require.Equal(t, "2026-03-01T23:59:30Z", sAttr(t, item, "sentAt"))
	require.Equal(t, "DAY#2026-03-01", sAttr(t, item, "PK"))
	_, hasName := item["recordingName"]
	require.False(t, hasName)
}

func TestRecordDelivery_RequiresMessageID(t *testing.T) {
	db := &fakeDynamo{}
	c := mustNewClient(t, db)
	err := c.RecordDelivery(context.Background(), domain.DeliveryRecord{})
	require.Error(t, err)
	require.Nil(t, db.lastPutInput)
}

func TestRecordDelivery_BadSentAt(t *testing.T) {
	c := mustNewClient(t, &fakeDynamo{})
	err := c.RecordDelivery(context.Background(), domain.DeliveryRecord{MessageID: "<a@b>", SentAt: "yesterday"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "parse sentAt")
}

func TestRecordDelivery_DynamoError(t *testing.T) {
	db := &fakeDynamo{putErr: errors.New("ProvisionedThroughputExceededException")}
	c := mustNewClient(t, db)
	err := c.RecordDelivery(context.Background(), domain.DeliveryRecord{MessageID: "<a@b>"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "RecordDelivery")
}
