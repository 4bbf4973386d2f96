package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/kilianp07/ldarsim/core/factory"
	"github.com/kilianp07/ldarsim/core/flags"
	coremon "github.com/kilianp07/ldarsim/core/monitoring"
	"github.com/kilianp07/ldarsim/infra/logger"
)

func init() {
	_ = flags.RegisterSink("mqtt", func(conf map[string]any) (flags.Sink, error) {
		var c Config
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewFlagPublisher(c)
	})
}

// FlagMessage is the JSON payload published for each day's flags.
type FlagMessage struct {
	MessageID string         `json:"message_id"`
	RunID     string         `json:"run_id"`
	Program   string         `json:"program"`
	Replicate int            `json:"replicate"`
	Timestep  int            `json:"timestep"`
	Date      time.Time      `json:"date"`
	Flags     []flags.Record `json:"flags"`
}

// FlagPublisher forwards candidate flags to an MQTT broker on
// <prefix>/flags/<program>.
type FlagPublisher struct {
	cli        pahoClient
	prefix     string
	qos        byte
	retain     bool
	maxRetries int
	backoff    time.Duration
	timeout    time.Duration
	log        logger.Logger
}

// NewFlagPublisher connects to the broker described by cfg.
func NewFlagPublisher(cfg Config) (*FlagPublisher, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}
	log := logger.New("mqtt_flags")
	opts.OnConnect = func(paho.Client) {
		log.Infof("MQTT connected to %s", cfg.Broker)
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}
	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	return &FlagPublisher{
		cli:        c,
		prefix:     cfg.TopicPrefix,
		qos:        cfg.QoS,
		retain:     cfg.Retain,
		maxRetries: cfg.MaxRetries,
		backoff:    time.Duration(cfg.BackoffMS) * time.Millisecond,
		timeout:    time.Duration(cfg.TimeoutMS) * time.Millisecond,
		log:        log,
	}, nil
}

// Topic returns the topic flags of program are published on.
func (p *FlagPublisher) Topic(program string) string {
	return fmt.Sprintf("%s/flags/%s", p.prefix, program)
}

// Forward publishes the batch as one message, retrying with exponential
// backoff. Exhausted retries are reported to the monitor.
func (p *FlagPublisher) Forward(ctx context.Context, b flags.Batch) error {
	msg := FlagMessage{
		MessageID: uuid.NewString(),
		RunID:     b.RunID,
		Program:   b.Program,
		Replicate: b.Replicate,
		Timestep:  b.Timestep,
		Date:      b.Date,
		Flags:     b.Records(),
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	topic := p.Topic(b.Program)

	var publishErr error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		token := p.cli.Publish(topic, p.qos, p.retain, payload)
		if !token.WaitTimeout(p.timeout) {
			publishErr = fmt.Errorf("publish to %s timed out", topic)
		} else {
			publishErr = token.Error()
		}
		if publishErr == nil {
			p.log.Debugf("published %d flags to %s", len(msg.Flags), topic)
			return nil
		}
		p.log.Errorf("publish attempt %d failed: %v", attempt+1, publishErr)
		if attempt == p.maxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.backoff * time.Duration(1<<attempt)):
		}
	}
	coremon.CaptureException(publishErr, map[string]string{
		"module":    "mqtt",
		"program":   b.Program,
		"replicate": strconv.Itoa(b.Replicate),
	})
	return publishErr
}

// Close gracefully closes the MQTT connection.
func (p *FlagPublisher) Close() error {
	if p.cli != nil && p.cli.IsConnected() {
		p.cli.Disconnect(250)
	}
	return nil
}
