package bus

import (
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"time"

	cmap "github.com/orcaman/concurrent-map/v2"
	"github.com/veloflow/cruisectl/internal/messages"
	"github.com/veloflow/cruisectl/internal/ui"
)

const (
	multicastPort  = 12175
	readBufferSize = 4096
)

// wireEnvelope is the on-the-wire representation of an Envelope.
type wireEnvelope struct {
	Topic       string          `json:"topic"`
	SenderStamp uint32          `json:"senderStamp"`
	SampleTime  time.Time       `json:"sampleTime"`
	Payload     json.RawMessage `json:"payload"`
}

// UdpBus is a Bus implementation on top of a UDP multicast group. All
// processes that join the same session id see each other's messages.
type UdpBus struct {
	subscribeMu sync.Mutex
	handlers    cmap.ConcurrentMap[string, []Handler]

	recvConn *net.UDPConn
	sendConn *net.UDPConn
	done     chan struct{}
}

// NewUdpBus joins the multicast session identified by cid and starts a
// receive loop that dispatches inbound envelopes to subscribers.
func NewUdpBus(cid uint16) (*UdpBus, error) {
	group := fmt.Sprintf("225.0.0.%d:%d", cid, multicastPort)
	groupAddr, err := net.ResolveUDPAddr("udp4", group)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve session group %s: %w", group, err)
	}

	recvConn, err := net.ListenMulticastUDP("udp4", nil, groupAddr)
	if err != nil {
		return nil, fmt.Errorf("cannot join session group %s: %w", group, err)
	}

	sendConn, err := net.DialUDP("udp4", nil, groupAddr)
	if err != nil {
		_ = recvConn.Close()
		return nil, fmt.Errorf("cannot open sender for session group %s: %w", group, err)
	}

	b := &UdpBus{
		handlers: cmap.New[[]Handler](),
		recvConn: recvConn,
		sendConn: sendConn,
		done:     make(chan struct{}),
	}

	go b.receiveLoop()

	return b, nil
}

func (b *UdpBus) Subscribe(topic string, handler Handler) {
	b.subscribeMu.Lock()
	defer b.subscribeMu.Unlock()
	subscribers, _ := b.handlers.Get(topic)
	b.handlers.Set(topic, append(subscribers, handler))
}

func (b *UdpBus) Publish(envelope Envelope) error {
	payload, err := json.Marshal(envelope.Payload)
	if err != nil {
		return err
	}
	data, err := json.Marshal(wireEnvelope{
		Topic:       envelope.Topic,
		SenderStamp: envelope.SenderStamp,
		SampleTime:  envelope.SampleTime,
		Payload:     payload,
	})
	if err != nil {
		return err
	}
	_, err = b.sendConn.Write(data)
	return err
}

func (b *UdpBus) Close() error {
	close(b.done)
	_ = b.sendConn.Close()
	return b.recvConn.Close()
}

func (b *UdpBus) receiveLoop() {
	buffer := make([]byte, readBufferSize)
	for {
		length, _, err := b.recvConn.ReadFromUDP(buffer)
		if err != nil {
			select {
			case <-b.done:
				return
			default:
				ui.Warning("Error reading from session group: %v", err)
				continue
			}
		}

		var wire wireEnvelope
		if err := json.Unmarshal(buffer[:length], &wire); err != nil {
			ui.Debug("Discarding malformed envelope: %v", err)
			continue
		}

		subscribers, ok := b.handlers.Get(wire.Topic)
		if !ok {
			continue
		}

		payload, err := messages.Decode(wire.Topic, wire.Payload)
		if err != nil {
			ui.Debug("Discarding envelope with malformed payload: %v", err)
			continue
		}

		envelope := Envelope{
			Topic:       wire.Topic,
			SenderStamp: wire.SenderStamp,
			SampleTime:  wire.SampleTime,
			Payload:     payload,
		}
		for _, handler := range subscribers {
			handler(envelope)
		}
	}
}
