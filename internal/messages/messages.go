package messages

import (
	"encoding/json"
	"fmt"
)

const (
	TopicGroundSpeedReading = "groundspeed.reading"
	TopicGroundSpeedRequest = "groundspeed.request"
	TopicActuationRequest   = "actuation.request"
)

// GroundSpeedReading carries a measured ground speed in m/s.
type GroundSpeedReading struct {
	GroundSpeed float64 `json:"groundSpeed"`
}

// GroundSpeedRequest carries a requested ground speed in m/s.
type GroundSpeedRequest struct {
	GroundSpeed float64 `json:"groundSpeed"`
}

// ActuationRequest carries the actuation command computed by the
// controller. Steering is always zero, this service only controls speed.
type ActuationRequest struct {
	Acceleration float32 `json:"acceleration"`
	Steering     float32 `json:"steering"`
	IsValid      bool    `json:"isValid"`
}

// Decode unmarshals a wire payload into the message type registered for
// the given topic.
func Decode(topic string, data []byte) (interface{}, error) {
	switch topic {
	case TopicGroundSpeedReading:
		var m GroundSpeedReading
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, err
		}
		return m, nil
	case TopicGroundSpeedRequest:
		var m GroundSpeedRequest
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, err
		}
		return m, nil
	case TopicActuationRequest:
		var m ActuationRequest
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, err
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unknown topic: %s", topic)
	}
}
