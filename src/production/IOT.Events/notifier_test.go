package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	logger "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Logger"
)

type fakeToken struct {
	err  error
	done chan struct{}
}

func newFakeToken(err error) *fakeToken {
	t := &fakeToken{err: err, done: make(chan struct{})}
	close(t.done)
	return t
}

func (t *fakeToken) Wait() bool                     { return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Done() <-chan struct{}          { return t.done }
func (t *fakeToken) Error() error                   { return t.err }

type published struct {
	topic   string
	qos     byte
	payload []byte
}

type fakeClient struct {
	mu           sync.Mutex
	connected    bool
	err          error
	messages     []published
	disconnected bool
}

func (c *fakeClient) IsConnected() bool { return c.connected }

func (c *fakeClient) Publish(topic string, qos byte, _ bool, payload interface{}) mqtt.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, published{topic: topic, qos: qos, payload: payload.([]byte)})
	return newFakeToken(c.err)
}

func (c *fakeClient) Disconnect(uint) { c.disconnected = true }

func TestTopic(t *testing.T) {
	assert.Equal(t, "assets/boards/created", Topic("assets", "boards", ActionCreated))
	assert.Equal(t, "plant/a/sensors/deleted", Topic("/plant/a/", "sensors", ActionDeleted))
	assert.Equal(t, "sites/updated", Topic("", "sites", ActionUpdated))
}

func TestMQTTNotifierPublishesJSON(t *testing.T) {
	client := &fakeClient{connected: true}
	n := newMQTTNotifier(client, "assets", 1, logger.NewNop())

	n.Notify(context.Background(), Change{Resource: "boards", Action: ActionDeleted, ID: "abc", Deleted: 4, Cascade: true})

	require.Len(t, client.messages, 1)
	msg := client.messages[0]
	assert.Equal(t, "assets/boards/deleted", msg.topic)
	assert.Equal(t, byte(1), msg.qos)

	var got Change
	require.NoError(t, json.Unmarshal(msg.payload, &got))
	assert.Equal(t, "abc", got.ID)
	assert.Equal(t, int64(4), got.Deleted)
	assert.True(t, got.Cascade)
	assert.False(t, got.Timestamp.IsZero())
}

func TestMQTTNotifierDropsWhenDisconnected(t *testing.T) {
	client := &fakeClient{}
	n := newMQTTNotifier(client, "assets", 0, logger.NewNop())

	n.Notify(context.Background(), Change{Resource: "sites", Action: ActionCreated, ID: "x"})
	assert.Empty(t, client.messages)

	n.Close()
	assert.False(t, client.disconnected)
}

func TestMQTTNotifierSwallowsPublishErrors(t *testing.T) {
	client := &fakeClient{connected: true, err: errors.New("broker gone")}
	n := newMQTTNotifier(client, "assets", 1, logger.NewNop())

	assert.NotPanics(t, func() {
		n.Notify(context.Background(), Change{Resource: "sensors", Action: ActionUpdated, ID: "y"})
	})
	n.Close()
	assert.True(t, client.disconnected)
}

func TestTLSConfigRejectsBadCA(t *testing.T) {
	cfg, err := tlsConfig("")
	require.NoError(t, err)
	assert.Nil(t, cfg.RootCAs)

	_, err = tlsConfig("/nonexistent/ca.pem")
	assert.Error(t, err)
}

func TestMQTTNotifierCheck(t *testing.T) {
	client := &fakeClient{}
	n := newMQTTNotifier(client, "assets", 1, logger.NewNop())
	assert.Error(t, n.Check(context.Background()))

	client.connected = true
	assert.NoError(t, n.Check(context.Background()))
}
