package tasks

import (
	"context"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmtukut/propabridge-2/internal/config"
)

type recordingSender struct {
	to      []string
	message []string
	err     error
}

func (s *recordingSender) Send(ctx context.Context, to, message string) error {
	if s.err != nil {
		return s.err
	}
	s.to = append(s.to, to)
	s.message = append(s.message, message)
	return nil
}

func TestHandleSmsDeliverTask(t *testing.T) {
	sender := &recordingSender{}
	p := NewTaskProcessor(&config.Config{}, sender, nil, nil)

	task := asynq.NewTask(TypeSmsDeliver, []byte(`{"to": "+2348012345678", "message": "Your code is 123456"}`))
	err := p.HandleSmsDeliverTask(context.Background(), task)

	require.NoError(t, err)
	require.Len(t, sender.to, 1)
	assert.Equal(t, "+2348012345678", sender.to[0])
	assert.Equal(t, "Your code is 123456", sender.message[0])
}

func TestHandleSmsDeliverTask_SenderFailureRetries(t *testing.T) {
	sender := &recordingSender{err: errors.New("gateway down")}
	p := NewTaskProcessor(&config.Config{}, sender, nil, nil)

	task := asynq.NewTask(TypeSmsDeliver, []byte(`{"to": "+2348012345678", "message": "hi"}`))
	err := p.HandleSmsDeliverTask(context.Background(), task)

	require.Error(t, err)
	assert.False(t, errors.Is(err, asynq.SkipRetry))
}

func TestHandleSmsDeliverTask_BadPayloadSkipsRetry(t *testing.T) {
	p := NewTaskProcessor(&config.Config{}, &recordingSender{}, nil, nil)

	task := asynq.NewTask(TypeSmsDeliver, []byte("not json"))
	err := p.HandleSmsDeliverTask(context.Background(), task)

	require.Error(t, err)
	assert.True(t, errors.Is(err, asynq.SkipRetry))
}

func TestHandleImageProcessTask_BadPayloadSkipsRetry(t *testing.T) {
	p := NewTaskProcessor(&config.Config{}, &recordingSender{}, nil, nil)

	task := asynq.NewTask(TypeImageProcess, []byte("{"))
	err := p.HandleImageProcessTask(context.Background(), task)

	require.Error(t, err)
	assert.True(t, errors.Is(err, asynq.SkipRetry))
}
