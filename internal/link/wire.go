package link

import (
	"encoding/json"
	"errors"
	"fmt"

	"paper-soccer/internal/game"
)

// Message is one completed turn as it travels between peers.
type Message struct {
	SenderTurnIndex uint64
	Directions      game.MoveSequence
}

type wireMessage struct {
	SenderTurnIndex *uint64 `json:"senderTurnIndex"`
	Directions      []int   `json:"directions"`
}

func (m Message) MarshalJSON() ([]byte, error) {
	idx := m.SenderTurnIndex
	return json.Marshal(wireMessage{SenderTurnIndex: &idx, Directions: m.Directions.Codes()})
}

func (m *Message) UnmarshalJSON(b []byte) error {
	var w wireMessage
	if err := json.Unmarshal(b, &w); err != nil {
		return fmt.Errorf("%w: %v", ErrBadMessage, err)
	}
	if w.SenderTurnIndex == nil {
		return fmt.Errorf("%w: missing senderTurnIndex", ErrBadMessage)
	}
	if w.Directions == nil {
		return fmt.Errorf("%w: missing directions", ErrBadMessage)
	}
	seq, err := game.SequenceFromCodes(w.Directions)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadMessage, err)
	}
	m.SenderTurnIndex = *w.SenderTurnIndex
	m.Directions = seq
	return nil
}

// decode turns a received frame into a Message; every failure is ErrBadMessage.
func decode(data []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		if !errors.Is(err, ErrBadMessage) {
			err = fmt.Errorf("%w: %v", ErrBadMessage, err)
		}
		return Message{}, err
	}
	return m, nil
}
