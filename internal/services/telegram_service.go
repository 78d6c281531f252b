package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"log"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/example/etailor/internal/models"
)

const telegramAPI = "https://api.telegram.org"

// TelegramService sends order notifications to the admin chat.
type TelegramService struct {
	botToken    string
	adminChatID string
	apiBase     string
	client      *http.Client
	limiter     *rate.Limiter
}

// NewTelegramService creates a new TelegramService. Messages are throttled
// to one per second with a small burst, under the bot API's per-chat limit.
func NewTelegramService(botToken, adminChatID string) *TelegramService {
	return &TelegramService{
		botToken:    botToken,
		adminChatID: adminChatID,
		apiBase:     telegramAPI,
		client:      &http.Client{Timeout: 10 * time.Second},
		limiter:     rate.NewLimiter(rate.Every(time.Second), 3),
	}
}

// Enabled reports whether both the token and the admin chat are configured.
func (s *TelegramService) Enabled() bool {
	return s.botToken != "" && s.adminChatID != ""
}

type telegramMessage struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// SendMessage sends a message to specified chat.
func (s *TelegramService) SendMessage(ctx context.Context, chatID, text string) error {
	if s.botToken == "" {
		log.Println("[Telegram] Bot token not configured")
		return nil
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("telegram throttled: %w", err)
	}

	body, err := json.Marshal(telegramMessage{ChatID: chatID, Text: text, ParseMode: "HTML"})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", s.apiBase, s.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		log.Printf("[Telegram] Failed to send message: %v", err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("[Telegram] Unexpected status: %d", resp.StatusCode)
		return fmt.Errorf("telegram returned status %d", resp.StatusCode)
	}
	return nil
}

// SendToAdmin sends a message to the admin chat.
func (s *TelegramService) SendToAdmin(ctx context.Context, text string) error {
	if s.adminChatID == "" {
		log.Println("[Telegram] Admin chat ID not configured")
		return nil
	}
	return s.SendMessage(ctx, s.adminChatID, text)
}

// FormatPrice renders a whole-rupee amount with thousand separators.
func FormatPrice(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	str := fmt.Sprintf("%d", amount)

	var result strings.Builder
	length := len(str)
	for i, digit := range str {
		if i > 0 && (length-i)%3 == 0 {
			result.WriteString(",")
		}
		result.WriteRune(digit)
	}
	return sign + "₹" + result.String()
}

// NotifyNewOrder tells the admin chat about a placed order.
func (s *TelegramService) NotifyNewOrder(ctx context.Context, order models.Order) error {
	if !s.Enabled() {
		return nil
	}

	var items strings.Builder
	for i, item := range order.Items {
		fmt.Fprintf(&items, "%d. <b>%s</b> in %s\n   %d x %s = %s\n",
			i+1,
			html.EscapeString(item.ProductName),
			html.EscapeString(item.FabricName),
			item.Quantity,
			FormatPrice(item.UnitPrice),
			FormatPrice(item.TotalPrice),
		)
	}

	message := fmt.Sprintf(`<b>🧵 NEW ORDER</b>
<b>📋 Order:</b> %s
<b>👤 Customer:</b> %s
<b>📞 Phone:</b> %s
<b>📦 Items:</b>
%s
<b>💰 Total:</b> %s
<b>🚚 Estimated delivery:</b> %s
━━━━━━━━━━━━━━━━━━`,
		order.OrderNumber,
		html.EscapeString(order.CustomerName),
		html.EscapeString(order.CustomerPhone),
		items.String(),
		FormatPrice(order.TotalAmount),
		formatDate(order.EstimatedDelivery),
	)
	return s.SendToAdmin(ctx, strings.TrimSpace(message))
}

// NotifyStatusChange tells the admin chat that an order moved on.
func (s *TelegramService) NotifyStatusChange(ctx context.Context, order models.Order, previous models.OrderStatus) error {
	if !s.Enabled() {
		return nil
	}

	message := fmt.Sprintf(`<b>📍 ORDER STATUS</b>
<b>📋 Order:</b> %s
<b>👤 Customer:</b> %s
<b>🔁 Status:</b> %s → %s
━━━━━━━━━━━━━━━━━━`,
		order.OrderNumber,
		html.EscapeString(order.CustomerName),
		previous,
		order.Status,
	)
	return s.SendToAdmin(ctx, strings.TrimSpace(message))
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("02 Jan 2006")
}
