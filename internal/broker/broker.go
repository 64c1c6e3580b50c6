// Package broker distributes whole datasets over MQTT.
package broker

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"

	"github.com/MayuriEngAust/RCM/internal/models"
)

// DefaultTopic carries the retained current dataset.
const DefaultTopic = "rcm/dataset"

// QoS used for dataset messages.
const QoS byte = 1

var ErrTimeout = errors.New("mqtt operation timed out")

// Publisher is the part of mqtt.Client used to send datasets.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// Subscriber is the part of mqtt.Client used to receive datasets.
type Subscriber interface {
	Subscribe(topic string, qos byte, callback mqtt.MessageHandler) mqtt.Token
}

// Envelope is the message body on the dataset topic.
type Envelope struct {
	PublishedAt time.Time      `json:"published_at"`
	Origin      string         `json:"origin"`
	Dataset     models.Dataset `json:"dataset"`
}

// Connect opens a client connection to brokerURL.
func Connect(brokerURL, clientID string, timeout time.Duration) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(brokerURL).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectTimeout(timeout)
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		log.WithError(err).Warn("MQTT connection lost")
	}

	client := mqtt.NewClient(opts)
	if err := wait(client.Connect(), timeout); err != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", brokerURL, err)
	}
	return client, nil
}

// PublishDataset sends ds as a retained message so late subscribers get the latest copy.
func PublishDataset(client Publisher, topic string, env Envelope, timeout time.Duration) error {
	payload, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal dataset: %w", err)
	}
	if err := wait(client.Publish(topic, QoS, true, payload), timeout); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	log.WithFields(log.Fields{
		"topic":  topic,
		"bytes":  len(payload),
		"assets": len(env.Dataset.Assets),
		"origin": env.Origin,
	}).Info("Published dataset")
	return nil
}

// SubscribeDatasets calls onDataset for every well-formed dataset message on topic.
func SubscribeDatasets(client Subscriber, topic string, timeout time.Duration, onDataset func(Envelope)) error {
	if err := wait(client.Subscribe(topic, QoS, DatasetHandler(onDataset)), timeout); err != nil {
		return fmt.Errorf("subscribe %s: %w", topic, err)
	}
	log.WithField("topic", topic).Info("Subscribed to dataset topic")
	return nil
}

// DatasetHandler decodes dataset messages. Malformed payloads are logged and dropped.
func DatasetHandler(onDataset func(Envelope)) mqtt.MessageHandler {
	return func(_ mqtt.Client, msg mqtt.Message) {
		var env Envelope
		if err := json.Unmarshal(msg.Payload(), &env); err != nil {
			log.WithError(err).WithField("topic", msg.Topic()).Error("Failed to decode dataset message")
			return
		}
		log.WithFields(log.Fields{
			"topic":    msg.Topic(),
			"origin":   env.Origin,
			"assets":   len(env.Dataset.Assets),
			"failures": len(env.Dataset.Failures),
		}).Info("Received dataset")
		onDataset(env)
	}
}

func wait(token mqtt.Token, timeout time.Duration) error {
	if !token.WaitTimeout(timeout) {
		return ErrTimeout
	}
	return token.Error()
}
