package mqtt

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/ldarsim/internal/testutil"
)

func TestFlagPublisher_Mosquitto(t *testing.T) {
	if testing.Short() {
		t.Skip("integration test requires docker")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()
	broker, cleanup, err := testutil.StartMosquitto(ctx)
	if err != nil {
		t.Skipf("mosquitto unavailable: %v", err)
	}
	defer cleanup()

	received := make(chan FlagMessage, 1)
	sub := paho.NewClient(paho.NewClientOptions().AddBroker(broker).SetClientID("triage"))
	tok := sub.Connect()
	require.True(t, tok.WaitTimeout(5*time.Second))
	require.NoError(t, tok.Error())
	defer sub.Disconnect(100)
	tok = sub.Subscribe("it/flags/#", 1, func(_ paho.Client, m paho.Message) {
		var msg FlagMessage
		if err := json.Unmarshal(m.Payload(), &msg); err == nil {
			received <- msg
		}
	})
	require.True(t, tok.WaitTimeout(5*time.Second))
	require.NoError(t, tok.Error())

	p, err := NewFlagPublisher(Config{Broker: broker, ClientID: "publisher", TopicPrefix: "it", QoS: 1})
	require.NoError(t, err)
	defer func() { _ = p.Close() }()
	require.NoError(t, p.Forward(ctx, batch()))

	select {
	case msg := <-received:
		assert.Equal(t, "P_OGI", msg.Program)
		assert.Len(t, msg.Flags, 1)
	case <-ctx.Done():
		t.Fatal("flag message not received")
	}
}
