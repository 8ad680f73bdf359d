package events

import "fmt"

// Open returns the publisher for broker: "kafka", "rabbitmq" or "none".
func Open(broker string, kafkaBrokers []string, rabbitURL string) (Publisher, error) {
	switch broker {
	case "", "none":
		return Noop{}, nil
	case "kafka":
		return NewKafkaPublisher(kafkaBrokers)
	case "rabbitmq":
		return NewRabbitPublisher(rabbitURL)
	default:
		return nil, fmt.Errorf("events: unknown broker %q", broker)
	}
}
