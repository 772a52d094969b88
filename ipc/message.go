package ipc

// MessageType is the message-type byte of the IPC header.
type MessageType byte

const (
	// Async messages expect no response.
	Async MessageType = 0

	// Sync messages expect a response message from the peer.
	Sync MessageType = 1

	// Response messages answer a prior Sync message.
	Response MessageType = 2
)

func (m MessageType) String() string {
	switch m {
	case Async:
		return "async"
	case Sync:
		return "sync"
	case Response:
		return "response"
	default:
		return "unknown"
	}
}

const (
	// headerSize is the fixed IPC message header:
	// [endian:1][msgType:1][flags:2][totalLen:4].
	headerSize = 8

	// sizeOffset is where the total message length lives in the header.
	// It is written as a placeholder first and patched once the payload
	// size is known.
	sizeOffset = 4
)
