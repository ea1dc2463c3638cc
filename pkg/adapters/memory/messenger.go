package memory

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// Sent is one outbound message captured by a Recorder.
type Sent struct {
	To       string
	Body     string
	ImageURL string
}

// IsImage reports whether the message was an image.
func (s Sent) IsImage() bool {
	return s.ImageURL != ""
}

// Recorder implements ports.Messenger by keeping every message in memory.
type Recorder struct {
	mu   sync.Mutex
	sent []Sent
	err  error
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// FailWith makes every following send return err. A nil err restores delivery.
func (r *Recorder) FailWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

func (r *Recorder) SendText(ctx context.Context, recipient, body string) error {
	return r.record(Sent{To: recipient, Body: body})
}

func (r *Recorder) SendImage(ctx context.Context, recipient, imageURL, caption string) error {
	return r.record(Sent{To: recipient, Body: caption, ImageURL: imageURL})
}

func (r *Recorder) record(s Sent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, s)
	return nil
}

// Sent returns a copy of the recorded messages in send order.
func (r *Recorder) Sent() []Sent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Sent(nil), r.sent...)
}

// Last returns the most recent message, or a zero Sent.
func (r *Recorder) Last() Sent {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.sent) == 0 {
		return Sent{}
	}
	return r.sent[len(r.sent)-1]
}

// Reset forgets the recorded messages.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = nil
}

// Console implements ports.Messenger by printing messages to a writer.
type Console struct {
	mu sync.Mutex
	w  io.Writer
}

// NewConsole creates a Console printing to w.
func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

func (c *Console) SendText(ctx context.Context, recipient, body string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := fmt.Fprintf(c.w, "\n%s\n", body)
	return err
}

func (c *Console) SendImage(ctx context.Context, recipient, imageURL, caption string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := fmt.Fprintf(c.w, "\n[image] %s\n%s\n", imageURL, caption)
	return err
}
