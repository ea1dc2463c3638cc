package chat_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/mercato/internal/chat"
	"github.com/aretw0/mercato/pkg/adapters/memory"
	"github.com/aretw0/mercato/pkg/domain"
	"github.com/aretw0/mercato/pkg/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversation_Home(t *testing.T) {
	rec := memory.NewRecorder()
	sess := domain.NewSession("265881234567")
	sess.Mode = domain.ModeBrowsing
	sess.Browse = domain.NewBrowseState(domain.StepShowShops)

	c := chat.New(sess, rec)
	c.Home(context.Background())

	assert.Equal(t, domain.ModeIdle, sess.Mode)
	assert.Nil(t, sess.Browse)
	assert.Equal(t, "265881234567", rec.Last().To)
	assert.Equal(t, chat.WelcomeMenu(), rec.Last().Body)
}

func TestConversation_SendFailuresAreCounted(t *testing.T) {
	rec := memory.NewRecorder()
	rec.FailWith(errors.New("network down"))
	metrics := observability.NewMetrics()

	c := chat.New(domain.NewSession("265881234567"), rec, chat.WithMetrics(metrics))
	c.Say(context.Background(), "hello")
	ok := c.Show(context.Background(), "https://example.com/a.jpg", "caption")

	assert.False(t, ok)
	count, err := testutil.GatherAndCount(metrics.Registry(), "mercato_collaborator_failures_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count, "one series per op")
}

func TestPrice(t *testing.T) {
	assert.Equal(t, "MWK 5,000", chat.Price("MWK", 5000))
	assert.Equal(t, "MWK 250", chat.Price("MWK", 250))
	assert.Equal(t, "MWK 1,250,000", chat.Price("MWK", 1250000))
	assert.Equal(t, "MWK 12.50", chat.Price("MWK", 12.5))
	assert.Equal(t, "ZMW 100,000,000,000,000,000,000", chat.Price("ZMW", 1e20))
}

func TestOutOfRange(t *testing.T) {
	assert.Equal(t, "❌ Please type a number between 1 and 7.", chat.OutOfRange(7))
}
