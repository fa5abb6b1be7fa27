package queue

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSQS struct {
	inputs []*sqs.SendMessageInput
	err    error
}

func (f *fakeSQS) SendMessage(_ context.Context, params *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.inputs = append(f.inputs, params)
	return &sqs.SendMessageOutput{}, f.err
}

func TestSQSClientSend(t *testing.T) {
	fake := &fakeSQS{}
	client, err := newSQSClient(fake, " https://sqs.local/notify ")
	require.NoError(t, err)

	require.NoError(t, client.Send(context.Background(), Message{ID: "n-1", Subject: "hi", RequestID: "req-9", Version: CurrentVersion}))
	require.Len(t, fake.inputs, 1)
	in := fake.inputs[0]
	assert.Equal(t, "https://sqs.local/notify", aws.ToString(in.QueueUrl))
	assert.Nil(t, in.MessageGroupId)
	assert.Equal(t, "req-9", aws.ToString(in.MessageAttributes["requestId"].StringValue))

	decoded, err := DecodeMessage([]byte(aws.ToString(in.MessageBody)))
	require.NoError(t, err)
	assert.Equal(t, "n-1", decoded.ID)
}

func TestSQSClientFIFO(t *testing.T) {
	fake := &fakeSQS{}
	client, err := newSQSClient(fake, "https://sqs.local/notify.fifo")
	require.NoError(t, err)

	require.NoError(t, client.Send(context.Background(), Message{ID: "n-2"}))
	in := fake.inputs[0]
	assert.Equal(t, fifoGroup, aws.ToString(in.MessageGroupId))
	assert.Equal(t, "n-2", aws.ToString(in.MessageDeduplicationId))
	assert.Empty(t, in.MessageAttributes)
}

func TestSQSClientSendError(t *testing.T) {
	client, err := newSQSClient(&fakeSQS{err: errors.New("throttled")}, "q")
	require.NoError(t, err)
	err = client.Send(context.Background(), Message{ID: "n-3"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "throttled")
}

func TestNewSQSClientRequiresURL(t *testing.T) {
	_, err := newSQSClient(&fakeSQS{}, " ")
	assert.Error(t, err)
}
