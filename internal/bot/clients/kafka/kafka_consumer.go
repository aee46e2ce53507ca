package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	domainerrors "github.com/central-university-dev/go-MentionsRelay/internal/domain/errors"
	"github.com/central-university-dev/go-MentionsRelay/internal/domain/models"
	"github.com/segmentio/kafka-go"
)

// MessageEventPayload - формат события сообщения в топике шлюза.
type MessageEventPayload struct {
	MessageID   string   `json:"messageId"`
	Text        string   `json:"text"`
	AuthorID    string   `json:"authorId"`
	AuthorName  string   `json:"authorName"`
	Private     bool     `json:"private"`
	GroupID     string   `json:"groupId"`
	GroupName   string   `json:"groupName"`
	ChannelID   string   `json:"channelId"`
	ChannelName string   `json:"channelName"`
	Mentions    []string `json:"mentions"`
}

type MessageHandler interface {
	HandleMessage(ctx context.Context, event *models.MessageEvent) error
}

type Consumer struct {
	reader         *kafka.Reader
	dlqWriter      *kafka.Writer
	messageHandler MessageHandler
	logger         *slog.Logger
	eventsTopic    string
	dlqTopic       string
}

func NewConsumer(
	brokers []string,
	groupID string,
	eventsTopic string,
	dlqTopic string,
	messageHandler MessageHandler,
	logger *slog.Logger,
) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		GroupID:        groupID,
		Topic:          eventsTopic,
		MinBytes:       10e3,
		MaxBytes:       10e6,
		CommitInterval: 1 * time.Second,
		Logger:         kafka.LoggerFunc(logger.Debug),
		ErrorLogger:    kafka.LoggerFunc(logger.Error),
	})

	dlqWriter := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        dlqTopic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		Logger:       kafka.LoggerFunc(logger.Debug),
		ErrorLogger:  kafka.LoggerFunc(logger.Error),
	}

	return &Consumer{
		reader:         reader,
		dlqWriter:      dlqWriter,
		messageHandler: messageHandler,
		logger:         logger,
		eventsTopic:    eventsTopic,
		dlqTopic:       dlqTopic,
	}
}

func (c *Consumer) Start(ctx context.Context) {
	c.logger.Info("Запуск потребления событий сообщений из Kafka",
		"topic", c.eventsTopic,
	)

	go func() {
		for {
			select {
			case <-ctx.Done():
				c.logger.Info("Остановка потребления событий из Kafka")
				return
			default:
				msg, err := c.reader.ReadMessage(ctx)
				if err != nil {
					c.logger.Error("Ошибка при чтении сообщения из Kafka",
						"error", err,
					)

					continue
				}

				c.logger.Debug("Получено событие из Kafka",
					"topic", msg.Topic,
					"partition", msg.Partition,
					"offset", msg.Offset,
				)

				if err := c.processMessage(ctx, &msg); err != nil {
					c.logger.Error("Ошибка при обработке события",
						"error", err,
					)
				}
			}
		}
	}()
}

func (c *Consumer) processMessage(ctx context.Context, msg *kafka.Message) error {
	var payload MessageEventPayload

	if err := json.Unmarshal(msg.Value, &payload); err != nil {
		c.logger.Error("Ошибка при десериализации события",
			"error", err,
		)

		if sendErr := c.sendToDLQ(ctx, msg.Value, fmt.Sprintf("Ошибка десериализации: %s", err)); sendErr != nil {
			c.logger.Error("Ошибка при отправке сообщения в DLQ",
				"error", sendErr,
			)
		}

		return fmt.Errorf("ошибка при десериализации события: %w", err)
	}

	if payload.AuthorID == "" {
		newErr := &domainerrors.ErrMissingRequiredField{FieldName: "authorId"}
		c.logger.Error(newErr.Error())

		if sendErr := c.sendToDLQ(ctx, msg.Value, newErr.Error()); sendErr != nil {
			c.logger.Error("Ошибка при отправке сообщения в DLQ",
				"error", sendErr,
			)
		}

		return newErr
	}

	event := &models.MessageEvent{
		MessageID:   payload.MessageID,
		Text:        payload.Text,
		AuthorID:    payload.AuthorID,
		AuthorName:  payload.AuthorName,
		Private:     payload.Private,
		GroupID:     payload.GroupID,
		GroupName:   payload.GroupName,
		ChannelID:   payload.ChannelID,
		ChannelName: payload.ChannelName,
		Mentions:    payload.Mentions,
	}

	if err := c.messageHandler.HandleMessage(ctx, event); err != nil {
		c.logger.Error("Ошибка при обработке события сообщения",
			"error", err,
		)

		return fmt.Errorf("ошибка при обработке события сообщения: %w", err)
	}

	return nil
}

func (c *Consumer) sendToDLQ(ctx context.Context, message []byte, errMsg string) error {
	c.logger.Info("Отправка сообщения в DLQ",
		"error", errMsg,
		"topic", c.dlqTopic,
	)

	err := c.dlqWriter.WriteMessages(ctx, kafka.Message{
		Key:   []byte("error"),
		Value: message,
		Headers: []kafka.Header{
			{Key: "error", Value: []byte(errMsg)},
			{Key: "timestamp", Value: []byte(time.Now().Format(time.RFC3339))},
		},
		Time: time.Now(),
	})

	if err != nil {
		c.logger.Error("Ошибка при отправке сообщения в DLQ",
			"error", err,
		)

		return fmt.Errorf("ошибка при отправке сообщения в DLQ: %w", err)
	}

	return nil
}

func (c *Consumer) Close() error {
	if err := c.reader.Close(); err != nil {
		return err
	}

	return c.dlqWriter.Close()
}
