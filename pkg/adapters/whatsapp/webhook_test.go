package whatsapp_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/aretw0/mercato/pkg/adapters/whatsapp"
	"github.com/aretw0/mercato/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const textNotification = `{
  "object": "whatsapp_business_account",
  "entry": [{
    "id": "WABA",
    "changes": [{
      "field": "messages",
      "value": {
        "messaging_product": "whatsapp",
        "contacts": [{"wa_id": "265881234567", "profile": {"name": "Chifundo"}}],
        "messages": [
          {"from": "265881234567", "id": "wamid.1", "timestamp": "1712345678", "type": "text", "text": {"body": "  2 "}},
          {"from": "265881234567", "id": "wamid.2", "timestamp": "1712345679", "type": "image", "image": {"id": "MEDIA-1", "mime_type": "image/jpeg"}},
          {"from": "265881234567", "id": "wamid.3", "timestamp": "1712345680", "type": "sticker"}
        ]
      }
    }]
  }]
}`

func TestNotification_Inbound(t *testing.T) {
	var n whatsapp.Notification
	require.NoError(t, json.Unmarshal([]byte(textNotification), &n))

	events := n.Inbound()
	require.Len(t, events, 3)

	assert.Equal(t, domain.KindText, events[0].Kind)
	assert.Equal(t, "2", events[0].Text)
	assert.Equal(t, "wamid.1", events[0].ID)
	assert.Equal(t, time.Unix(1712345678, 0), events[0].ReceivedAt)

	assert.Equal(t, domain.KindImage, events[1].Kind)
	assert.Equal(t, "MEDIA-1", events[1].MediaID)

	assert.Equal(t, domain.KindText, events[2].Kind)
	assert.Empty(t, events[2].Text)
}

func TestNotification_StatusCallbackIsEmpty(t *testing.T) {
	var n whatsapp.Notification
	require.NoError(t, json.Unmarshal([]byte(`{"object":"whatsapp_business_account","entry":[{"changes":[{"value":{"statuses":[{"id":"x"}]}}]}]}`), &n))
	assert.Empty(t, n.Inbound())
}
