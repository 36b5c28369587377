// Package cwlog appends pipeline status lines to a CloudWatch Logs stream.
// One call, one event; there is no buffering and a failed append is the
// caller's error to deal with.
package cwlog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs/types"
)

// API is the subset of the CloudWatch Logs client the sender needs.
type API interface {
	PutLogEvents(ctx context.Context, params *cloudwatchlogs.PutLogEventsInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.PutLogEventsOutput, error)
	CreateLogGroup(ctx context.Context, params *cloudwatchlogs.CreateLogGroupInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.CreateLogGroupOutput, error)
	CreateLogStream(ctx context.Context, params *cloudwatchlogs.CreateLogStreamInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.CreateLogStreamOutput, error)
	GetLogEvents(ctx context.Context, params *cloudwatchlogs.GetLogEventsInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.GetLogEventsOutput, error)
}

// Sender writes timestamped lines to one log group/stream pair.
type Sender struct {
	client API
	group  string
	stream string
	now    func() time.Time
}

func NewSender(client API, group, stream string) *Sender {
	return &Sender{client: client, group: group, stream: stream, now: time.Now}
}

// NewFromConfig builds a sender on a real CloudWatch Logs client.
func NewFromConfig(cfg aws.Config, group, stream string) *Sender {
	return NewSender(cloudwatchlogs.NewFromConfig(cfg), group, stream)
}

// Send appends one event timestamped at call time (millisecond epoch).
func (s *Sender) Send(ctx context.Context, message string) error {
	_, err := s.client.PutLogEvents(ctx, &cloudwatchlogs.PutLogEventsInput{
		LogGroupName:  aws.String(s.group),
		LogStreamName: aws.String(s.stream),
		LogEvents: []types.InputLogEvent{{
			Message:   aws.String(message),
			Timestamp: aws.Int64(s.now().UnixMilli()),
		}},
	})
	if err != nil {
		return fmt.Errorf("put log events to %s/%s: %w", s.group, s.stream, err)
	}
	return nil
}

// EnsureStream creates the log group and stream when they do not exist yet.
// Already-existing resources are fine.
func (s *Sender) EnsureStream(ctx context.Context) error {
	_, err := s.client.CreateLogGroup(ctx, &cloudwatchlogs.CreateLogGroupInput{
		LogGroupName: aws.String(s.group),
	})
	if err != nil && !alreadyExists(err) {
		return fmt.Errorf("create log group %s: %w", s.group, err)
	}
	_, err = s.client.CreateLogStream(ctx, &cloudwatchlogs.CreateLogStreamInput{
		LogGroupName:  aws.String(s.group),
		LogStreamName: aws.String(s.stream),
	})
	if err != nil && !alreadyExists(err) {
		return fmt.Errorf("create log stream %s/%s: %w", s.group, s.stream, err)
	}
	return nil
}

// LastLine returns the newest event message in the stream, or "" when the
// stream is empty.
func (s *Sender) LastLine(ctx context.Context) (string, error) {
	out, err := s.client.GetLogEvents(ctx, &cloudwatchlogs.GetLogEventsInput{
		LogGroupName:  aws.String(s.group),
		LogStreamName: aws.String(s.stream),
		StartFromHead: aws.Bool(false),
		Limit:         aws.Int32(1),
	})
	if err != nil {
		return "", fmt.Errorf("get log events from %s/%s: %w", s.group, s.stream, err)
	}
	if len(out.Events) == 0 {
		return "", nil
	}
	return aws.ToString(out.Events[len(out.Events)-1].Message), nil
}

func alreadyExists(err error) bool {
	var exists *types.ResourceAlreadyExistsException
	return errors.As(err, &exists)
}
