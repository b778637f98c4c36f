package transport

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// EmitFunc delivers one decoded inbound value into the soup. It's
// usually a core.Injector[T].Emit (with T matching the decoded
// value's shape) or a config.Registry.Emit closed over a molecule
// name.
type EmitFunc func(value interface{}) error

// MQTTBridge subscribes to an MQTT topic and emits the JSON-decoded
// payload of each inbound message, generalizing the teacher's
// cmd/sio MQTTCouplings to a single configured Emit rather than a
// whole sio.Crew.
type MQTTBridge struct {
	Client mqtt.Client
	Topic  string
	QoS    byte
	Emit   EmitFunc

	// Debug logs every inbound message before decoding, as
	// MQTTCouplings.inHandler does.
	Debug bool
}

// NewMQTTBridge builds a Bridge around a not-yet-connected mqtt.Client
// configured from opts.
func NewMQTTBridge(opts *mqtt.ClientOptions, topic string, emit EmitFunc) *MQTTBridge {
	b := &MQTTBridge{Topic: topic, Emit: emit}
	opts.SetDefaultPublishHandler(func(_ mqtt.Client, msg mqtt.Message) {
		b.handle(msg)
	})
	b.Client = mqtt.NewClient(opts)
	return b
}

func (b *MQTTBridge) handle(msg mqtt.Message) {
	if b.Debug {
		log.Printf("chym/transport: mqtt %s: %s", msg.Topic(), msg.Payload())
	}

	var x interface{}
	payload := msg.Payload()
	if err := json.Unmarshal(payload, &x); err != nil {
		x = string(payload)
	}

	if err := b.Emit(x); err != nil {
		log.Printf("chym/transport: mqtt emit failed: %v", err)
	}
}

// Start connects the client and subscribes to Topic. It blocks only
// for the connect/subscribe handshakes, not for the message stream —
// inbound messages arrive on the client's own goroutines via the
// publish handler registered by NewMQTTBridge.
func (b *MQTTBridge) Start() error {
	if token := b.Client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("chym/transport: mqtt connect: %w", token.Error())
	}
	if token := b.Client.Subscribe(b.Topic, b.QoS, nil); token.Wait() && token.Error() != nil {
		return fmt.Errorf("chym/transport: mqtt subscribe %q: %w", b.Topic, token.Error())
	}
	return nil
}

// Publish sends value, JSON-encoded, on topic — used to forward a
// reaction's reply or output molecule back out over MQTT.
func (b *MQTTBridge) Publish(topic string, qos byte, value interface{}) error {
	js, err := json.Marshal(value)
	if err != nil {
		return err
	}
	token := b.Client.Publish(topic, qos, false, js)
	if !token.WaitTimeout(5*time.Second) || token.Error() != nil {
		return fmt.Errorf("chym/transport: mqtt publish %q: %w", topic, token.Error())
	}
	return nil
}

// Stop disconnects the client, waiting up to quiesceMillis for
// in-flight work to settle.
func (b *MQTTBridge) Stop(quiesceMillis uint) {
	b.Client.Disconnect(quiesceMillis)
}
