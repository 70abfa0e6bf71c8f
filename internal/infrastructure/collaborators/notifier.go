// Package collaborators holds HTTP clients for the external services
// this backend cooperates with: notification delivery, chat and
// pricing. All of them are outside the transactional core; a failed
// call is logged, never propagated into a commit decision.
package collaborators

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/Stephen-Muteti/writing-backend/internal/application/interfaces"
	"github.com/Stephen-Muteti/writing-backend/internal/config"
	"github.com/Stephen-Muteti/writing-backend/pkg/limiter"
	"github.com/Stephen-Muteti/writing-backend/pkg/logger"
)

// Notifier delivers notifications over HTTP, paced by a dynamic rate
// limiter. Delivery is fire-and-forget: when the limiter denies an
// event the notification is dropped, and the drop is logged.
type Notifier struct {
	client  *http.Client
	limiter *limiter.DynamicRateLimiter
	logger  logger.Logger
	addr    string
	wg      sync.WaitGroup
	done    chan struct{}
	timeout time.Duration
}

func NewNotifier(config *config.Config, logger logger.Logger) (*Notifier, error) {
	if config == nil {
		return nil, errors.New("nil dependency: config")
	}

	return &Notifier{
		client:  &http.Client{Timeout: config.Collaborators.Timeout},
		limiter: limiter.New(config.Collaborators.NotifyInterval, config.Collaborators.NotifyBurst),
		logger:  logger,
		addr:    config.Collaborators.NotifyAddr,
		done:    make(chan struct{}),
		timeout: config.HTTPServer.ShutdownTimeout,
	}, nil
}

var _ interfaces.Notifier = (*Notifier)(nil)

func (n *Notifier) Notify(ctx context.Context, msg *interfaces.Notification) {
	select {
	case <-n.done:
		return
	default:
	}

	if !n.limiter.Allow() {
		n.logger.Infof("notification %q to %s dropped: rate limited", msg.Kind, msg.Email)
		return
	}

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		if err := n.post(msg); err != nil {
			n.logger.Errorf("notification %q to %s: %s", msg.Kind, msg.Email, err)
		}
	}()
}

func (n *Notifier) post(msg *interfaces.Notification) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/api/notifications", n.addr)

	res, err := n.client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusTooManyRequests {
		if after, err := strconv.Atoi(res.Header.Get("Retry-After")); err == nil && after > 0 {
			n.limiter.Update(time.Duration(after)*time.Second, 1)
		}
		return errors.New("rate limited by notification service")
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("unexpected status %d", res.StatusCode)
	}

	return nil
}

// Stop waits for in-flight deliveries, bounded by the shutdown timeout.
func (n *Notifier) Stop() {
	close(n.done)
	n.limiter.Stop()

	ready := make(chan struct{})
	go func() {
		defer close(ready)
		n.wg.Wait()
	}()

	select {
	case <-time.After(n.timeout):
		n.logger.Error("notifier stop: shutdown timeout exceeded")
	case <-ready:
	}
}
