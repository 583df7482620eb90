package messaging

// NATS subjects published by the relay.
const (
	// SubjectForwardCompleted carries forwarding outcomes that reached the
	// target and were accepted.
	SubjectForwardCompleted = "hookrelay.forwards.completed"

	// SubjectForwardFailed carries forwarding outcomes that could not reach
	// the target or were rejected by it.
	SubjectForwardFailed = "hookrelay.forwards.failed"
)
