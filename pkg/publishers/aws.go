package publishers

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"github.com/samvad-hq/position-parser/internal/logger"
)

const (
	attrPositions = "positions_count"
	fifoSuffix    = ".fifo"
)

type sqsClient interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

type snsClient interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// awsEnvelope is the encoded form of an event shared by the SQS and SNS publishers.
// FIFO destinations group by fingerprint so results for the same URL set stay ordered.
type awsEnvelope struct {
	body      string
	positions string
	groupID   *string
	dedupID   *string
}

func newAWSEnvelope(evt Event, fifo bool) (awsEnvelope, error) {
	payload, err := json.Marshal(evt)
	if err != nil {
		return awsEnvelope{}, fmt.Errorf("marshal event: %w", err)
	}
	env := awsEnvelope{
		body:      string(payload),
		positions: strconv.Itoa(evt.PositionsCount),
	}
	if fifo {
		env.groupID = aws.String(evt.Fingerprint)
		env.dedupID = aws.String(evt.Fingerprint + "-" + strconv.FormatInt(evt.CompletedAt.UnixNano(), 10))
	}
	return env, nil
}

func loadAWSConfig(ctx context.Context, region string) (aws.Config, error) {
	cfg, err := awscfg.LoadDefaultConfig(ctx, awscfg.WithRegion(region))
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	return cfg, nil
}

// sqsPublisher sends one message per result to a queue.
type sqsPublisher struct {
	id       string
	queueURL string
	fifo     bool
	client   sqsClient
	log      logger.Logger
}

func newSQSPublisher(ctx context.Context, cfg PublisherConfig, log logger.Logger) (Publisher, error) {
	if cfg.SQS == nil {
		return nil, fmt.Errorf("publisher %q missing sqs configuration", cfg.ID)
	}
	awsCfg, err := loadAWSConfig(ctx, cfg.SQS.Region)
	if err != nil {
		return nil, err
	}
	return &sqsPublisher{
		id:       cfg.ID,
		queueURL: cfg.SQS.QueueURL,
		fifo:     strings.HasSuffix(cfg.SQS.QueueURL, fifoSuffix),
		client:   sqs.NewFromConfig(awsCfg),
		log:      logger.Ensure(log),
	}, nil
}

func (s *sqsPublisher) ID() string   { return s.id }
func (s *sqsPublisher) Type() string { return TypeSQS }

func (s *sqsPublisher) Publish(ctx context.Context, evt Event) error {
	env, err := newAWSEnvelope(evt, s.fifo)
	if err != nil {
		return err
	}

	out, err := s.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:               aws.String(s.queueURL),
		MessageBody:            aws.String(env.body),
		MessageGroupId:         env.groupID,
		MessageDeduplicationId: env.dedupID,
		MessageAttributes: map[string]sqstypes.MessageAttributeValue{
			attrFingerprint: {DataType: aws.String("String"), StringValue: aws.String(evt.Fingerprint)},
			attrPositions:   {DataType: aws.String("Number"), StringValue: aws.String(env.positions)},
		},
	})
	if err != nil {
		return fmt.Errorf("send message to sqs: %w", err)
	}
	s.log.DebugObj("sqs publisher delivered event", "publisher_sqs_delivery", map[string]any{
		"publisher_id": s.id,
		"fingerprint":  evt.Fingerprint,
		"message_id":   aws.ToString(out.MessageId),
	})
	return nil
}

// snsPublisher announces each result on a topic.
type snsPublisher struct {
	id       string
	topicARN string
	fifo     bool
	client   snsClient
	log      logger.Logger
}

func newSNSPublisher(ctx context.Context, cfg PublisherConfig, log logger.Logger) (Publisher, error) {
	if cfg.SNS == nil {
		return nil, fmt.Errorf("publisher %q missing sns configuration", cfg.ID)
	}
	awsCfg, err := loadAWSConfig(ctx, cfg.SNS.Region)
	if err != nil {
		return nil, err
	}
	return &snsPublisher{
		id:       cfg.ID,
		topicARN: cfg.SNS.TopicARN,
		fifo:     strings.HasSuffix(cfg.SNS.TopicARN, fifoSuffix),
		client:   sns.NewFromConfig(awsCfg),
		log:      logger.Ensure(log),
	}, nil
}

func (s *snsPublisher) ID() string   { return s.id }
func (s *snsPublisher) Type() string { return TypeSNS }

func (s *snsPublisher) Publish(ctx context.Context, evt Event) error {
	env, err := newAWSEnvelope(evt, s.fifo)
	if err != nil {
		return err
	}

	out, err := s.client.Publish(ctx, &sns.PublishInput{
		TopicArn:               aws.String(s.topicARN),
		Message:                aws.String(env.body),
		MessageGroupId:         env.groupID,
		MessageDeduplicationId: env.dedupID,
		MessageAttributes: map[string]snstypes.MessageAttributeValue{
			attrFingerprint: {DataType: aws.String("String"), StringValue: aws.String(evt.Fingerprint)},
			attrPositions:   {DataType: aws.String("Number"), StringValue: aws.String(env.positions)},
		},
	})
	if err != nil {
		return fmt.Errorf("publish to sns: %w", err)
	}
	s.log.DebugObj("sns publisher delivered event", "publisher_sns_delivery", map[string]any{
		"publisher_id": s.id,
		"fingerprint":  evt.Fingerprint,
		"message_id":   aws.ToString(out.MessageId),
	})
	return nil
}
