package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"signal-engine/internal/strategy"
)

// TelegramNotifier sends signal alerts via the Telegram Bot API.
type TelegramNotifier struct {
	botToken string
	chatID   string
	client   *http.Client
}

// NewTelegramNotifier creates a Telegram notifier.
// botToken: Bot API token from @BotFather. chatID: target chat/channel ID.
func NewTelegramNotifier(botToken, chatID string) *TelegramNotifier {
	return &TelegramNotifier{
		botToken: botToken,
		chatID:   chatID,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (t *TelegramNotifier) Notify(ctx context.Context, sig strategy.Signal) error {
	arrow := "LONG ↑"
	if sig.Direction == strategy.Short {
		arrow = "SHORT ↓"
	}
	text := fmt.Sprintf("%s %s [%s]\nEntry: %.4f\nStop: %.4f\nTake: %.4f\nConfidence: %.0f%%",
		sig.Symbol, arrow, sig.Strategy,
		sig.EntryPrice, sig.StopLoss, sig.TakeProfit, sig.Confidence*100)

	body, _ := json.Marshal(map[string]interface{}{
		"chat_id": t.chatID,
		"text":    text,
	})

	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", t.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("telegram: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("telegram: send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram: unexpected status %d", resp.StatusCode)
	}
	return nil
}
