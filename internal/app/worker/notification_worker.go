package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hackboard/internal/app/service"
	"hackboard/internal/platform/metrics"
	"hackboard/internal/platform/queue"
	"log"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// MaxAttempts bounds deliveries of one notification before it is dropped.
const MaxAttempts = 5

const popTimeout = 5 * time.Second

// Sender delivers one notification to its recipient.
type Sender interface {
	Send(ctx context.Context, n service.Notification) error
}

type jobQueue interface {
	Pop(ctx context.Context, timeout time.Duration) ([]byte, error)
	Requeue(ctx context.Context, raw []byte) error
}

type NotificationWorker struct {
	queue  jobQueue
	sender Sender
	name   string
}

func NewNotificationWorker(q *queue.Queue, sender Sender) *NotificationWorker {
	return &NotificationWorker{queue: q, sender: sender, name: q.Name()}
}

func (w *NotificationWorker) Start(ctx context.Context) {
	log.Println("Notification worker started, listening to queue:", w.name)
	for {
		select {
		case <-ctx.Done():
			log.Println("Notification worker stopping...")
			return
		default:
		}

		raw, err := w.queue.Pop(ctx, popTimeout)
		if err != nil {
			if errors.Is(err, queue.ErrEmpty) {
				continue
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				continue // ctx.Done is handled at the top of the loop
			}
			log.Printf("ERROR: Failed to pop from queue '%s': %v", w.name, err)
			sleep(ctx, 5*time.Second) // Wait before retrying on other errors
			continue
		}
		w.process(ctx, raw)
	}
}

func (w *NotificationWorker) process(ctx context.Context, raw []byte) {
	var n service.Notification
	if err := json.Unmarshal(raw, &n); err != nil {
		metrics.NotificationsFailed.Inc()
		log.Printf("ERROR: Dropping undecodable notification %q: %v", raw, err)
		return
	}

	err := w.sender.Send(ctx, n)
	if err == nil {
		metrics.NotificationsDelivered.Inc()
		log.Printf("INFO: Delivered %s notification %s to %s.", n.Kind, n.ID, n.To)
		return
	}

	n.Attempts++
	if n.Attempts >= MaxAttempts {
		metrics.NotificationsFailed.Inc()
		log.Printf("ERROR: Giving up on notification %s after %d attempts: %v", n.ID, n.Attempts, err)
		return
	}
	log.Printf("WARN: Delivery of notification %s failed (attempt %d): %v. Re-queueing.", n.ID, n.Attempts, err)

	retry, err := json.Marshal(n)
	if err != nil {
		log.Printf("ERROR: Failed to re-encode notification %s: %v", n.ID, err)
		return
	}
	if err := w.queue.Requeue(context.WithoutCancel(ctx), retry); err != nil {
		metrics.NotificationsFailed.Inc()
		log.Printf("ERROR: Failed to re-queue notification %s: %v", n.ID, err)
	}
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// WebhookSender posts each notification as JSON to a mail relay or similar hook.
type WebhookSender struct {
	url    string
	client *http.Client
}

func NewWebhookSender(url string) *WebhookSender {
	return &WebhookSender{url: url, client: &http.Client{Timeout: 10 * time.Second}}
}

func (s *WebhookSender) Send(ctx context.Context, n service.Notification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	_, err = backoff.Retry(ctx, func() (struct{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
		if err != nil {
			return struct{}{}, backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := s.client.Do(req)
		if err != nil {
			return struct{}{}, err
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			return struct{}{}, nil
		case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
			return struct{}{}, fmt.Errorf("notification hook returned status %d", resp.StatusCode)
		default:
			return struct{}{}, backoff.Permanent(fmt.Errorf("notification hook rejected request with status %d", resp.StatusCode))
		}
	}, backoff.WithBackOff(b), backoff.WithMaxTries(3))
	return err
}

// LogSender only logs; used when no hook is configured.
type LogSender struct{}

func (LogSender) Send(_ context.Context, n service.Notification) error {
	log.Printf("INFO: [NOTIFY] %s -> %s (%s): application %s, hackathon %q, phase %q, message %q",
		n.Kind, n.To, n.Name, n.ApplicationID, n.HackathonTitle, n.PhaseName, n.Message)
	return nil
}
