package enums

// OutboxDLQErrorReason records why the publisher gave up on an outbox row.
type OutboxDLQErrorReason string

const (
	// OutboxDLQReasonMaxAttempts: publishing kept failing with retryable errors.
	OutboxDLQReasonMaxAttempts OutboxDLQErrorReason = "max_attempts"
	// OutboxDLQReasonNonRetryable: the broker or routing rejected the message outright.
	OutboxDLQReasonNonRetryable OutboxDLQErrorReason = "non_retryable"
	// OutboxDLQReasonUndecodable: the stored row could not be turned into a message.
	OutboxDLQReasonUndecodable OutboxDLQErrorReason = "undecodable"
)

func (r OutboxDLQErrorReason) IsValid() bool {
	switch r {
	case OutboxDLQReasonMaxAttempts, OutboxDLQReasonNonRetryable, OutboxDLQReasonUndecodable:
		return true
	}
	return false
}

// Replayable reports whether requeueing the row can succeed without a code
// or data fix first.
func (r OutboxDLQErrorReason) Replayable() bool {
	return r != OutboxDLQReasonUndecodable
}
