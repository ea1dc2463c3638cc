package dispatch

import (
	"context"

	"github.com/aretw0/mercato/internal/chat"
	"github.com/aretw0/mercato/pkg/domain"
)

const (
	imageProcessing = "🖼️ *Processing your image...*\n\nPlease wait while we save your image to secure storage.\n\n⏳ This may take a moment."
	imageMissing    = "❌ *No Image Data*\n\nPlease send a valid image."
	imageError      = "❌ *Image Error*\n\nFailed to get image from WhatsApp. Please try again."
	imageInvalid    = "❌ *Invalid Image*\n\nPlease send a valid image (JPG, PNG, etc.)."
	imageUnexpected = "📸 *Image Received!*\n\nTo add products as a shop owner, type '6' to access your dashboard.\n\nFor browsing products, please use the main menu."
)

func (d *Dispatcher) onImage(ctx context.Context, c *chat.Conversation, mediaID string) {
	if mediaID == "" {
		c.Say(ctx, imageMissing)
		return
	}
	// Nothing is resolved or uploaded unless the wizard is waiting for images.
	if !d.merchants.AcceptsImage(c.Session) {
		c.Say(ctx, imageUnexpected)
		return
	}
	c.Say(ctx, imageProcessing)

	imageURL, ok := d.intake(ctx, c, mediaID)
	if !ok {
		return
	}
	d.merchants.HandleImage(ctx, c, imageURL)
}

// intake resolves the media handle and decides which URL the image is kept under.
// Channel URLs are kept as they are; any other web URL is persisted to the media
// host, falling back to the resolved URL. It reports false after telling the
// customer why the image was refused.
func (d *Dispatcher) intake(ctx context.Context, c *chat.Conversation, mediaID string) (string, bool) {
	if d.resolver == nil {
		c.Logger().Warn("no media resolver configured")
		c.Say(ctx, imageError)
		return "", false
	}
	resolved, err := d.resolver.ResolveMedia(ctx, mediaID)
	if err != nil || resolved == "" {
		c.Failed("media_resolver", "ResolveMedia", err)
		c.Say(ctx, imageError)
		return "", false
	}

	if domain.IsTransientMediaURL(resolved) {
		return resolved, true
	}
	if !domain.IsWebURL(resolved) {
		c.Logger().Warn("refusing media url", "url", resolved)
		c.Say(ctx, imageInvalid)
		return "", false
	}
	if d.host == nil {
		return resolved, true
	}
	hosted, err := d.host.Persist(ctx, resolved)
	if err != nil {
		c.Failed("media_host", "Persist", err)
		return resolved, true
	}
	return hosted, true
}
