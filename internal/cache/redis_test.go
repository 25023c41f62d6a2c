package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeys(t *testing.T) {
	assert.Equal(t, "lock:booking_lock_p1", lockKey("booking_lock_p1"))
	assert.Equal(t, "cache:property:p1", propertyKey("p1"))
}
