package nats

import (
	"testing"

	"github.com/Guilherme-G-Cadilhe/Go-OTCDesk-API/internal/gateway"
	"github.com/stretchr/testify/assert"
)

func TestSubjectsMirrorRoutingKeys(t *testing.T) {
	assert.Equal(t, "otc_events.transaction.completed", Subject(gateway.LifecycleExchange, "transaction.completed"))
	assert.Equal(t, []string{"otc_events.transaction.>", "otc_events.offer.>"}, AuditSubjects(gateway.LifecycleExchange))
}
