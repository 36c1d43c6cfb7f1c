package channels

// SendNonBlock attempts to send a message without blocking.
// Returns error if the channel is full or closed.
func SendNonBlock[T any](ch chan<- T, msg T) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = ErrChannelClosed
		}
	}()

	select {
	case ch <- msg:
		return nil
	default:
		return ErrChannelFull
	}
}

// SendLatest sends msg without blocking. When the channel buffer is full the
// oldest buffered value is discarded to make room, so a slow reader always
// sees the most recent value next. Reports whether a value was discarded.
//
// The caller must be the only sender on ch.
func SendLatest[T any](ch chan T, msg T) (dropped bool) {
	for {
		select {
		case ch <- msg:
			return dropped
		default:
		}

		select {
		case <-ch:
			dropped = true
		default:
		}
	}
}
