package service

import (
    "context"
    "testing"

    "github.com/stretchr/testify/assert"

    q "github.com/iliyamo/parking-slot-reservation/internal/queue"
)

func TestLogNotifierNeverFails(t *testing.T) {
    n := LogNotifier{}
    err := n.Notify(context.Background(), q.BookingEvent{
        Kind:      q.EventBookingConfirmed,
        BookingID: 1,
        UserID:    2,
        SlotID:    3,
    })
    assert.NoError(t, err)
}
