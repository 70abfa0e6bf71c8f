package collaborators

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/Stephen-Muteti/writing-backend/internal/application/interfaces"
	"github.com/Stephen-Muteti/writing-backend/internal/config"
	"github.com/Stephen-Muteti/writing-backend/internal/domain/entities/user"
	"github.com/Stephen-Muteti/writing-backend/pkg/logger"
)

// Messenger is the HTTP client of the chat service.
type Messenger struct {
	client *http.Client
	logger logger.Logger
	addr   string
}

func NewMessenger(config *config.Config, logger logger.Logger) (*Messenger, error) {
	if config == nil {
		return nil, errors.New("nil dependency: config")
	}

	return &Messenger{
		client: &http.Client{Timeout: config.Collaborators.Timeout},
		logger: logger,
		addr:   config.Collaborators.ChatAddr,
	}, nil
}

var _ interfaces.Messenger = (*Messenger)(nil)

func (m *Messenger) GetOrCreateConversation(ctx context.Context, orderID string, clientID, writerID user.ID) (string, error) {
	body, err := json.Marshal(map[string]string{
		"order_id":  orderID,
		"client_id": string(clientID),
		"writer_id": string(writerID),
	})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/api/conversations", m.addr)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := m.client.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		return "", fmt.Errorf("unexpected status %d", res.StatusCode)
	}

	payload := struct {
		ID string `json:"id"`
	}{}

	if err = json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return "", err
	}

	return payload.ID, nil
}

func (m *Messenger) PostMessage(ctx context.Context, conversationID string, senderID user.ID, text string) error {
	body, err := json.Marshal(map[string]string{
		"sender_id": string(senderID),
		"text":      text,
	})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/api/conversations/%s/messages", m.addr, conversationID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := m.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("unexpected status %d", res.StatusCode)
	}

	return nil
}
