package telegram

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"cryptohustle/internal/domain"
)

// NotificationService pushes game events to players over the Bot API.
// With no bot token configured every send is a silent no-op.
type NotificationService struct {
	botToken   string
	enabled    bool
	httpClient *http.Client
}

type botMessage struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(botToken string) *NotificationService {
	return &NotificationService{
		botToken: botToken,
		enabled:  botToken != "",
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SendNewReferral tells a referrer a friend joined with their code
func (s *NotificationService) SendNewReferral(chatID int64, referredName string, bonus int64) error {
	message := fmt.Sprintf(
		"🎉 *New referral!*\n\n"+
			"*%s* joined with your code.\n"+
			"💰 Welcome bonus: `+%d PTS`",
		referredName,
		bonus,
	)
	return s.sendMessage(chatID, message)
}

// SendCommission tells a referrer commission landed in their pending
// balance
func (s *NotificationService) SendCommission(chatID int64, amount int64, kind domain.BonusKind) error {
	sourceEmoji := "📈"
	sourceText := "trading"
	if kind == domain.BonusMining {
		sourceEmoji = "⛏"
		sourceText = "mining"
	}

	message := fmt.Sprintf(
		"%s *Referral bonus*\n\n"+
			"💰 `+%d PTS` from your referral's %s.\n"+
			"Claim it on the referrals page.",
		sourceEmoji,
		amount,
		sourceText,
	)
	return s.sendMessage(chatID, message)
}

// sendMessage sends a message to a chat using the Bot API
func (s *NotificationService) sendMessage(chatID int64, text string) error {
	if !s.enabled {
		return nil // Silently skip if Telegram is not configured
	}

	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", s.botToken)

	payload := botMessage{
		ChatID:    strconv.FormatInt(chatID, 10),
		Text:      text,
		ParseMode: "Markdown",
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal telegram message: %w", err)
	}

	resp, err := s.httpClient.Post(url, "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("telegram API error (status %d): %s", resp.StatusCode, string(body))
	}

	return nil
}
