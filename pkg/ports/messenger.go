package ports

import "context"

// Messenger is the outbound messaging transport.
// Flows treat both sends as fire-and-forget: an error is logged, never fatal to the conversation.
type Messenger interface {
	SendText(ctx context.Context, recipient, body string) error
	SendImage(ctx context.Context, recipient, imageURL, caption string) error
}

// MediaResolver turns an inbound media handle into a downloadable URL.
type MediaResolver interface {
	ResolveMedia(ctx context.Context, mediaID string) (string, error)
}

// MediaHost persists an image to permanent hosting and returns its new URL.
type MediaHost interface {
	Persist(ctx context.Context, sourceURL string) (string, error)
}
