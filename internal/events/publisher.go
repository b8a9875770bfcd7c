package events

import (
	"context"
	"log"
)

type Publisher interface {
	PublishAccessMatrixSaved(ctx context.Context, event *AccessMatrixEvent) error

	// Close closes the publisher and releases resources
	Close() error
}

type EventPublisher struct {
	rabbitMQ *RabbitMQClient
	exchange string
	enabled  bool
}

func NewEventPublisher(rabbitURI, exchange string) (*EventPublisher, error) {
	if rabbitURI == "" {
		log.Println("Warning: RabbitMQ URI is empty, event publishing is disabled")
		return &EventPublisher{
			rabbitMQ: nil,
			enabled:  false,
		}, nil
	}

	client, err := NewRabbitMQClient(rabbitURI, exchange)
	if err != nil {
		return nil, err
	}

	err = client.setupExchangesAndQueues()
	if err != nil {
		client.Close()
		return nil, err
	}

	return &EventPublisher{
		rabbitMQ: client,
		exchange: exchange,
		enabled:  true,
	}, nil
}

func (p *EventPublisher) PublishAccessMatrixSaved(ctx context.Context, event *AccessMatrixEvent) error {
	if !p.enabled {
		log.Println("Event publishing is disabled, skipping AccessMatrixEvent")
		return nil
	}

	eventData, err := event.ToJSON()
	if err != nil {
		return err
	}

	err = p.rabbitMQ.PublishEvent(p.exchange, string(event.Type), eventData)
	if err != nil {
		return err
	}

	log.Printf("Published %s event for record %s (role %s)", event.Type, event.RecordID, event.RoleID)
	return nil
}

// Close releases resources
func (p *EventPublisher) Close() error {
	if !p.enabled || p.rabbitMQ == nil {
		return nil
	}

	return p.rabbitMQ.Close()
}
