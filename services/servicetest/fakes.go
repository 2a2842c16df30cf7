package servicetest

import (
	"bytes"
	"context"
	"io"
	"sync"

	"public-complaint-api/models"
	"public-complaint-api/services"
)

// Minimal file signatures accepted by the upload sniffer.
var (
	PDFBytes = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n")
	PNGBytes = []byte{
		0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A,
		0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52,
		0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
		0x08, 0x02, 0x00, 0x00, 0x00, 0x90, 0x77, 0x53, 0xDE,
	}
)

// Upload wraps bytes as an uploaded file.
func Upload(name, contentType string, content []byte) services.UploadedFile {
	data := append([]byte(nil), content...)
	return services.UploadedFile{
		Name:        name,
		ContentType: contentType,
		Size:        int64(len(data)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// SentMail is one message captured by Mailer.
type SentMail struct {
	To      []string
	Subject string
	HTML    string
}

// Mailer records every e-mail instead of sending it.
type Mailer struct {
	mu   sync.Mutex
	Err  error
	sent []SentMail
}

func (m *Mailer) SendMail(to []string, subject, html string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, SentMail{To: to, Subject: subject, HTML: html})
	return m.Err
}

func (m *Mailer) Sent() []SentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SentMail(nil), m.sent...)
}

// Publisher records published events.
type Publisher struct {
	mu     sync.Mutex
	Err    error
	events []services.ComplaintEvent
}

func (p *Publisher) Publish(_ context.Context, ev services.ComplaintEvent, _ *models.Notification) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.Err
}

func (p *Publisher) Events() []services.ComplaintEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]services.ComplaintEvent(nil), p.events...)
}

// Notifier records dispatched events without delivering them.
type Notifier struct {
	mu     sync.Mutex
	events []services.ComplaintEvent
}

func (n *Notifier) Dispatch(_ context.Context, ev services.ComplaintEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
}

func (n *Notifier) Events() []services.ComplaintEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]services.ComplaintEvent(nil), n.events...)
}

// Sync runs fn inline; pass as DispatcherOptions.Run to make mail delivery synchronous.
func Sync(fn func()) { fn() }
