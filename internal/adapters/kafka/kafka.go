package kafka

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	"polls-service/internal/config"
	"polls-service/internal/ports/models"

	"github.com/IBM/sarama"
	kafkago "github.com/segmentio/kafka-go"
)

// EventVoteRecorded is set as the event-type header on every vote message
const EventVoteRecorded = "vote.recorded"

// Publisher sends vote events to a Kafka topic
type Publisher interface {
	PublishVote(ctx context.Context, msg models.VoteMessage) error
	Close() error
}

// NewPublisher returns a publisher for cfg.Driver.
func NewPublisher(cfg config.KafkaConfig) (Publisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka: no brokers configured")
	}
	switch cfg.Driver {
	case "sarama":
		return NewSaramaPublisher(cfg)
	case "kafka-go", "":
		return NewWriterPublisher(cfg), nil
	default:
		return nil, fmt.Errorf("kafka: unsupported driver %q", cfg.Driver)
	}
}

// Encode returns the partition key and payload of a vote message. Messages
// are keyed by question so a question's votes stay ordered.
func Encode(msg models.VoteMessage) (key, value []byte, err error) {
	value, err = json.Marshal(msg)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka: encode vote: %w", err)
	}
	key = make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(msg.QuestionID))
	return key, value, nil
}

const (
	// writerBatchTimeout bounds how long a vote waits for its batch to flush.
	writerBatchTimeout = 10 * time.Millisecond
	writerTimeout      = 2 * time.Second
)

// WriterPublisher publishes through a segmentio kafka-go writer
type WriterPublisher struct {
	writer *kafkago.Writer
}

func NewWriterPublisher(cfg config.KafkaConfig) *WriterPublisher {
	return &WriterPublisher{
		writer: &kafkago.Writer{
			Addr:                   kafkago.TCP(cfg.Brokers...),
			Topic:                  cfg.Topic,
			Balancer:               &kafkago.Hash{},
			RequiredAcks:           kafkago.RequireAll,
			AllowAutoTopicCreation: true,
			BatchSize:              1,
			BatchTimeout:           writerBatchTimeout,
			WriteTimeout:           writerTimeout,
		},
	}
}

func (p *WriterPublisher) PublishVote(ctx context.Context, msg models.VoteMessage) error {
	key, value, err := Encode(msg)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafkago.Message{
		Key:     key,
		Value:   value,
		Headers: []kafkago.Header{{Key: "event", Value: []byte(EventVoteRecorded)}},
	})
}

func (p *WriterPublisher) Close() error {
	return p.writer.Close()
}

// SaramaPublisher publishes through a sarama SyncProducer
type SaramaPublisher struct {
	producer sarama.SyncProducer
	topic    string
}

func NewSaramaPublisher(cfg config.KafkaConfig) (*SaramaPublisher, error) {
	producer, err := InitKafkaProducer(cfg.Brokers, cfg.ClientID)
	if err != nil {
		return nil, fmt.Errorf("kafka: init producer: %w", err)
	}
	return &SaramaPublisher{producer: producer, topic: cfg.Topic}, nil
}

func InitKafkaProducer(brokers []string, clientID string) (sarama.SyncProducer, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.Partitioner = sarama.NewHashPartitioner
	config.Version = sarama.V2_0_0_0
	config.ClientID = clientID

	return sarama.NewSyncProducer(brokers, config)
}

func (p *SaramaPublisher) PublishVote(_ context.Context, msg models.VoteMessage) error {
	key, value, err := Encode(msg)
	if err != nil {
		return err
	}
	_, _, err = p.producer.SendMessage(&sarama.ProducerMessage{
		Topic:   p.topic,
		Key:     sarama.ByteEncoder(key),
		Value:   sarama.ByteEncoder(value),
		Headers: []sarama.RecordHeader{{Key: []byte("event"), Value: []byte(EventVoteRecorded)}},
	})
	return err
}

func (p *SaramaPublisher) Close() error {
	return p.producer.Close()
}
