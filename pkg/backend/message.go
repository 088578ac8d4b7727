package backend

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joeydtaylor/steeze-hooks/pkg/codec"
)

var ErrBadMessage = errors.New("backend: bad job message")

// Message is the wire form of a job sent to a remote worker. Only the task
// name travels; the worker resolves it against its own registry.
type Message struct {
	ID          string    `json:"id"`
	Task        string    `json:"task"`
	Payload     []byte    `json:"payload"`
	SubmittedAt time.Time `json:"submittedAt"`
}

func encodeMessage(m Message) ([]byte, error) {
	return codec.JSON.Marshal(m)
}

func decodeMessage(b []byte) (Message, error) {
	var m Message
	if err := codec.JSONStrict.Unmarshal(b, &m); err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrBadMessage, err)
	}
	if strings.TrimSpace(m.ID) == "" || strings.TrimSpace(m.Task) == "" {
		return Message{}, fmt.Errorf("%w: id and task are required", ErrBadMessage)
	}
	return m, nil
}
