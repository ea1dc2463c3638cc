package testutils

import (
	"fmt"
	"strings"
	"testing"

	"github.com/aretw0/mercato/internal/chat"
	"github.com/aretw0/mercato/pkg/adapters/memory"
	"github.com/aretw0/mercato/pkg/domain"
	"github.com/stretchr/testify/assert"
)

// Customer is the phone number used by flow tests.
const Customer = "265881234567"

// Conversation opens a conversation over sess that records every message sent.
func Conversation(t *testing.T, sess *domain.Session) (*chat.Conversation, *memory.Recorder) {
	t.Helper()
	rec := memory.NewRecorder()
	return chat.New(sess, rec), rec
}

// Bodies returns the text of every recorded message, captions included.
func Bodies(rec *memory.Recorder) []string {
	var out []string
	for _, s := range rec.Sent() {
		out = append(out, s.Body)
	}
	return out
}

// AssertSent fails the test unless some recorded message contains substr.
func AssertSent(t *testing.T, rec *memory.Recorder, substr string) {
	t.Helper()
	for _, body := range Bodies(rec) {
		if strings.Contains(body, substr) {
			return
		}
	}
	assert.Failf(t, "message not sent", "no message contains %q; sent:\n%s", substr, strings.Join(Bodies(rec), "\n---\n"))
}

// AssertNotSent fails the test if some recorded message contains substr.
func AssertNotSent(t *testing.T, rec *memory.Recorder, substr string) {
	t.Helper()
	for _, body := range Bodies(rec) {
		if strings.Contains(body, substr) {
			assert.Failf(t, "unexpected message", "a message contains %q:\n%s", substr, body)
			return
		}
	}
}

// ElectronicsFixture is a catalog with one category, "Electronics", available in a
// single district. Its ten merchants fill exactly one shop page; the third one
// sells five products, exactly one product page.
func ElectronicsFixture() memory.Fixture {
	f := memory.Fixture{
		Categories: []domain.Category{
			{ID: "electronics", Name: "Electronics", Icon: "📱", District: "Lilongwe", Area: "Area 3"},
		},
	}
	for i := 1; i <= 10; i++ {
		f.Merchants = append(f.Merchants, domain.Merchant{
			ID:         fmt.Sprintf("SHOP-%08d", i),
			Name:       fmt.Sprintf("Gadget Store %d", i),
			Phone:      fmt.Sprintf("2658810000%02d", i),
			CategoryID: "electronics",
		})
	}
	for i := 1; i <= 5; i++ {
		f.Products = append(f.Products, domain.Product{
			ID:         fmt.Sprintf("PROD-%08d", i),
			Name:       fmt.Sprintf("Gadget %d", i),
			Price:      float64(i) * 10000,
			Currency:   domain.DefaultCurrency,
			InStock:    true,
			MerchantID: "SHOP-00000003",
			CategoryID: "electronics",
		})
	}
	return f
}

// ManyProducts returns n in-stock products of merchantID named "Item 1".."Item n".
func ManyProducts(merchantID string, n int) []domain.Product {
	out := make([]domain.Product, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, domain.Product{
			ID:         fmt.Sprintf("PROD-%s-%02d", merchantID, i),
			Name:       fmt.Sprintf("Item %d", i),
			Price:      1000,
			Currency:   domain.DefaultCurrency,
			InStock:    true,
			MerchantID: merchantID,
		})
	}
	return out
}
