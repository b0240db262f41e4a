package events

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	config "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Config"
	logger "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Logger"
)

const publishTimeout = 5 * time.Second

// publisher is the part of mqtt.Client the notifier needs
type publisher interface {
	IsConnected() bool
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Disconnect(quiesce uint)
}

type MQTTNotifier struct {
	client publisher
	prefix string
	qos    byte
	logger *logger.Logger
}

// NewMQTTNotifier connects to the broker. An unreachable broker is not
// fatal: paho keeps retrying in the background and changes published
// meanwhile are dropped.
func NewMQTTNotifier(cfg config.MQTTConfig, brokerURL string, log *logger.Logger) (*MQTTNotifier, error) {
	log = log.WithComponent("mqtt_notifier")

	opts := mqtt.NewClientOptions().
		AddBroker(brokerURL).
		SetClientID(cfg.ClientID).
		SetKeepAlive(cfg.KeepAlive).
		SetPingTimeout(cfg.PingTimeout).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetCleanSession(true)

	if cfg.BrokerUser != "" {
		opts.SetUsername(cfg.BrokerUser)
		opts.SetPassword(cfg.BrokerPass)
	}

	if cfg.UseTLS {
		tlsCfg, err := tlsConfig(cfg.CACertPath)
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}

	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		log.ErrorWithError(err, "MQTT connection lost")
	}
	opts.OnConnect = func(_ mqtt.Client) {
		log.Logger.Info().Str("broker", brokerURL).Msg("MQTT connected")
	}

	client := mqtt.NewClient(opts)
	tk := client.Connect()
	if !tk.WaitTimeout(10 * time.Second) {
		log.Logger.Warn().Str("broker", brokerURL).Msg("MQTT broker not reachable yet, retrying in background")
	} else if tk.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", tk.Error())
	}

	return newMQTTNotifier(client, cfg.TopicPrefix, cfg.QoS, log), nil
}

func newMQTTNotifier(client publisher, prefix string, qos byte, log *logger.Logger) *MQTTNotifier {
	return &MQTTNotifier{client: client, prefix: prefix, qos: qos, logger: log}
}

func (n *MQTTNotifier) Notify(_ context.Context, change Change) {
	if change.Timestamp.IsZero() {
		change.Timestamp = time.Now().UTC()
	}
	topic := Topic(n.prefix, change.Resource, change.Action)

	if !n.client.IsConnected() {
		n.logger.Logger.Debug().Str("topic", topic).Msg("MQTT not connected, dropping change notice")
		return
	}

	payload, err := json.Marshal(change)
	if err != nil {
		n.logger.ErrorWithError(err, "Failed to marshal change notice")
		return
	}

	token := n.client.Publish(topic, n.qos, false, payload)
	go func() {
		if !token.WaitTimeout(publishTimeout) {
			n.logger.Logger.Warn().Str("topic", topic).Msg("Timed out publishing change notice")
			return
		}
		if err := token.Error(); err != nil {
			n.logger.Logger.Error().Err(err).Str("topic", topic).Msg("Failed to publish change notice")
		}
	}()
}

// Check reports whether the broker connection is up
func (n *MQTTNotifier) Check(context.Context) error {
	if !n.client.IsConnected() {
		return errors.New("mqtt broker not connected")
	}
	return nil
}

func (n *MQTTNotifier) Close() {
	if n.client != nil && n.client.IsConnected() {
		n.client.Disconnect(500)
	}
}

func tlsConfig(caFile string) (*tls.Config, error) {
	cfg := &tls.Config{MinVersion: tls.VersionTLS12}
	if caFile == "" {
		return cfg, nil
	}
	ca, err := os.ReadFile(caFile)
	if err != nil {
		return nil, err
	}
	cp := x509.NewCertPool()
	if !cp.AppendCertsFromPEM(ca) {
		return nil, fmt.Errorf("bad CA file")
	}
	cfg.RootCAs = cp
	return cfg, nil
}
