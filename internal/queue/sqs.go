package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/mfield/notebox/internal/domain"
)

// SQSConfig holds configuration for an SQS-compatible queue.
type SQSConfig struct {
	Endpoint    string // empty for real AWS, set for LocalStack/ElasticMQ
	Name        string
	Region      string
	AccessKey   string
	SecretKey   string
	WaitSeconds int32
}

// SQSQueue implements Queue on SQS. Message bodies are the compact
// JSON envelope {"ownerId","jobId"}.
type SQSQueue struct {
	client      *sqs.Client
	name        string
	waitSeconds int32

	mu       sync.Mutex
	queueURL string
}

// NewSQSQueue creates a new SQS-backed queue client.
// Parameters:
//   - cfg: queue name, region, credentials and optional custom endpoint.
// Returns:
//   - *SQSQueue: initialized queue; the queue itself is created lazily
//     by EnsureQueue.
//   - error: non-nil if the AWS config cannot be built.
func NewSQSQueue(cfg *SQSConfig) (*SQSQueue, error) {
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := sqs.NewFromConfig(awsCfg, func(o *sqs.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	waitSeconds := cfg.WaitSeconds
	if waitSeconds <= 0 {
		waitSeconds = 20
	}

	return &SQSQueue{
		client:      client,
		name:        cfg.Name,
		waitSeconds: waitSeconds,
	}, nil
}

// EnsureQueue creates the queue if it does not exist and caches its URL
func (q *SQSQueue) EnsureQueue(ctx context.Context) error {
	_, err := q.url(ctx)
	return err
}

// url resolves and caches the queue URL, creating the queue on first use
func (q *SQSQueue) url(ctx context.Context) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.queueURL != "" {
		return q.queueURL, nil
	}

	out, err := q.client.GetQueueUrl(ctx, &sqs.GetQueueUrlInput{
		QueueName: aws.String(q.name),
	})
	if err == nil {
		q.queueURL = aws.ToString(out.QueueUrl)
		return q.queueURL, nil
	}
	if !strings.Contains(err.Error(), "NonExistentQueue") {
		return "", fmt.Errorf("failed to resolve queue url: %w", err)
	}

	created, err := q.client.CreateQueue(ctx, &sqs.CreateQueueInput{
		QueueName: aws.String(q.name),
	})
	if err != nil {
		return "", fmt.Errorf("failed to create queue: %w", err)
	}
	q.queueURL = aws.ToString(created.QueueUrl)
	return q.queueURL, nil
}

// Publish enqueues one archive request
func (q *SQSQueue) Publish(ctx context.Context, req domain.ArchiveRequest) error {
	url, err := q.url(ctx)
	if err != nil {
		return err
	}

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal archive request: %w", err)
	}

	_, err = q.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(url),
		MessageBody: aws.String(string(body)),
	})
	if err != nil {
		return fmt.Errorf("failed to publish archive request: %w", err)
	}
	return nil
}

// Receive long-polls for up to max messages
func (q *SQSQueue) Receive(ctx context.Context, max int32) ([]Message, error) {
	url, err := q.url(ctx)
	if err != nil {
		return nil, err
	}

	out, err := q.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(url),
		MaxNumberOfMessages: max,
		WaitTimeSeconds:     q.waitSeconds,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to receive messages: %w", err)
	}

	messages := make([]Message, 0, len(out.Messages))
	for _, m := range out.Messages {
		var req domain.ArchiveRequest
		if err := json.Unmarshal([]byte(aws.ToString(m.Body)), &req); err != nil {
			return nil, fmt.Errorf("failed to unmarshal archive request: %w", err)
		}
		messages = append(messages, Message{
			Request: req,
			Handle:  aws.ToString(m.ReceiptHandle),
		})
	}
	return messages, nil
}

// Delete acknowledges a delivered message
func (q *SQSQueue) Delete(ctx context.Context, handle string) error {
	url, err := q.url(ctx)
	if err != nil {
		return err
	}

	_, err = q.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(url),
		ReceiptHandle: aws.String(handle),
	})
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	return nil
}
