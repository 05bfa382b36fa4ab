package alerting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// PairSummary is one ranked pair in a run notification.
type PairSummary struct {
	Label        string
	Differential decimal.Decimal
	FinalReturn  decimal.Decimal
	FinalRisk    decimal.Decimal
	Ratio        decimal.Decimal
}

// Notification 封装一次分析运行的摘要。
type Notification struct {
	RunID         string
	StartedAt     time.Time
	Principal     decimal.Decimal
	Days          int
	Pairs         []PairSummary
	AdditionalMsg string
}

// Notifier 定义摘要推送接口。
type Notifier interface {
	Notify(ctx context.Context, notification Notification) error
}

// TelegramNotifier 通过 Telegram Bot API 推送消息。
type TelegramNotifier struct {
	botToken   string
	chatID     string
	baseURL    string
	maxElapsed time.Duration
	client     *http.Client
	logger     zerolog.Logger
}

// NewTelegramNotifier 构造 Telegram 推送器。
func NewTelegramNotifier(botToken, chatID, baseURL string, timeout, maxElapsed time.Duration, logger zerolog.Logger) *TelegramNotifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if maxElapsed <= 0 {
		maxElapsed = 30 * time.Second
	}
	if baseURL == "" {
		baseURL = "https://api.telegram.org"
	}

	return &TelegramNotifier{
		botToken:   botToken,
		chatID:     chatID,
		baseURL:    strings.TrimRight(baseURL, "/"),
		maxElapsed: maxElapsed,
		client:     &http.Client{Timeout: timeout},
		logger:     logger.With().Str("component", "alert_telegram").Logger(),
	}
}

// Notify 调用 sendMessage API 推送文本，遇到网络错误或 5xx 时指数退避重试。
func (n *TelegramNotifier) Notify(ctx context.Context, note Notification) error {
	payload := map[string]string{
		"chat_id": n.chatID,
		"text":    renderMessage(note),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal telegram payload: %w", err)
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 200 * time.Millisecond
	policy.MaxElapsedTime = n.maxElapsed

	attempt := 0
	operation := func() error {
		attempt++
		return n.send(ctx, body)
	}
	onRetry := func(err error, wait time.Duration) {
		n.logger.Warn().Err(err).Int("attempt", attempt).Dur("wait", wait).Msg("telegram 推送失败，稍后重试")
	}
	if err := backoff.RetryNotify(operation, backoff.WithContext(policy, ctx), onRetry); err != nil {
		return err
	}

	n.logger.Info().Str("run_id", note.RunID).
		Int("pairs", len(note.Pairs)).
		Int("attempts", attempt).
		Msg("摘要已发送 (Telegram)")
	return nil
}

func (n *TelegramNotifier) send(ctx context.Context, body []byte) error {
	url := fmt.Sprintf("%s/bot%s/sendMessage", n.baseURL, n.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return backoff.Permanent(fmt.Errorf("create telegram request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send telegram request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return fmt.Errorf("telegram 响应码异常: %d", resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return backoff.Permanent(fmt.Errorf("telegram 响应码异常: %d", resp.StatusCode))
	}

	var result struct {
		OK bool `json:"ok"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err == nil {
		if !result.OK {
			return backoff.Permanent(fmt.Errorf("telegram 返回 ok=false"))
		}
	}
	return nil
}

func renderMessage(note Notification) string {
	builder := strings.Builder{}
	builder.WriteString("[Carry Trade Analysis]\n")
	if note.RunID != "" {
		builder.WriteString(fmt.Sprintf("Run: %s\n", note.RunID))
	}
	if !note.StartedAt.IsZero() {
		builder.WriteString(fmt.Sprintf("Started: %s UTC\n", note.StartedAt.UTC().Format(time.RFC3339)))
	}
	builder.WriteString(fmt.Sprintf("Principal: %s over %d days\n", note.Principal.StringFixed(2), note.Days))
	for i, p := range note.Pairs {
		builder.WriteString(fmt.Sprintf("%d. %s diff %s%% return %s risk %s ratio %s\n",
			i+1,
			p.Label,
			p.Differential.Mul(decimal.NewFromInt(100)).StringFixed(3),
			p.FinalReturn.StringFixed(2),
			p.FinalRisk.StringFixed(2),
			p.Ratio.StringFixed(4),
		))
	}
	if note.AdditionalMsg != "" {
		builder.WriteString(note.AdditionalMsg)
	}
	return builder.String()
}

var _ Notifier = (*TelegramNotifier)(nil)
