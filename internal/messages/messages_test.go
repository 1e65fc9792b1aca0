package messages

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecode_GroundSpeedReading(t *testing.T) {
	// GIVEN
	data := []byte(`{"groundSpeed": 5.5}`)

	// WHEN
	payload, err := Decode(TopicGroundSpeedReading, data)

	// THEN
	assert.NoError(t, err)
	assert.Equal(t, GroundSpeedReading{GroundSpeed: 5.5}, payload)
}

func TestDecode_UnknownTopic(t *testing.T) {
	// WHEN
	_, err := Decode("no.such.topic", []byte(`{}`))

	// THEN
	assert.Error(t, err)
}
