package analysis

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Notifier posts pipeline status updates to a webhook. Notifications are
// fire-and-forget: a dead endpoint must never slow down or fail a run.
type Notifier struct {
	URL    string
	Client *http.Client
}

func NewNotifier(url string) *Notifier {
	return &Notifier{
		URL:    url,
		Client: &http.Client{Timeout: 5 * time.Second},
	}
}

type statusPayload struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

func (n *Notifier) Notify(status string) {
	if n == nil || n.URL == "" {
		return
	}
	payload, err := json.Marshal(statusPayload{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return
	}
	go func() {
		resp, err := n.Client.Post(n.URL, "application/json", bytes.NewReader(payload))
		if err != nil {
			fmt.Printf("[NOTIFY] status post failed: %v\n", err)
			return
		}
		resp.Body.Close()
	}()
}
