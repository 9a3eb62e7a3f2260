package ports_test

import (
	"errors"
	"fmt"
	"testing"

	"delaynotify/internal/core/domain/model/notification"
	"delaynotify/internal/core/ports"

	"github.com/stretchr/testify/assert"
)

func TestIsPermanent(t *testing.T) {
	cause := errors.New("422 invalid phone number")
	err := fmt.Errorf("send sms: %w", ports.NewPermanentError(notification.ChannelSMS, "invalid recipient", cause))

	assert.True(t, ports.IsPermanent(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "send sms: sms delivery rejected: invalid recipient (cause: 422 invalid phone number)", err.Error())

	assert.False(t, ports.IsPermanent(errors.New("connection reset")))
	assert.False(t, ports.IsPermanent(nil))
}
