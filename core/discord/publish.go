package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/soltrackdao/pump_relay/core/model"
)

const (
	defaultUsername = "Webhook"
	embedColor      = 2326507
)

type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type Embed struct {
	Title  string       `json:"title"`
	Color  int          `json:"color"`
	Fields []EmbedField `json:"fields"`
}

type webhookMessage struct {
	Username string  `json:"username"`
	Content  string  `json:"content,omitempty"`
	Embeds   []Embed `json:"embeds,omitempty"`
}

// Client posts messages to one Discord webhook. Requests are bounded by the
// http client timeout; failed deliveries are returned to the caller and never
// retried here.
type Client struct {
	webhookURL string
	username   string
	httpClient *http.Client
}

func NewClient(webhookURL, username string, timeout time.Duration) *Client {
	if username == "" {
		username = defaultUsername
	}

	return &Client{
		webhookURL: webhookURL,
		username:   username,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// PublishText forwards raw text as a plain content message.
func (c *Client) PublishText(ctx context.Context, text string) error {
	return c.post(ctx, webhookMessage{
		Username: c.username,
		Content:  text,
	})
}

// PublishTrade posts the alert embed for one normalized pump.fun trade.
func (c *Client) PublishTrade(ctx context.Context, trade model.PumpTradeData) error {
	tradeType := "Sell via pump.fun"
	action := fmt.Sprintf("Swapped *%v %s* for *%v SOL*", trade.TokenAmount, trade.TokenSymbol, trade.SolAmount)
	if trade.IsBuy {
		tradeType = "Buy via pump.fun"
		action = fmt.Sprintf("Swapped *%v SOL* for *%v %s*", trade.SolAmount, trade.TokenAmount, trade.TokenSymbol)
	}

	embed := Embed{
		Title: "Alert Bot",
		Color: embedColor,
		Fields: []EmbedField{
			{
				Name:   "Address",
				Value:  fmt.Sprintf("[%s](https://solscan.io/account/%s)", ShortenAddress(trade.UserAddress), trade.UserAddress),
				Inline: true,
			},
			{
				Name:   "Type",
				Value:  tradeType,
				Inline: true,
			},
			{
				Name:  "Action",
				Value: action,
			},
			{
				Name:  fmt.Sprintf("Token Address (%s)", trade.TokenSymbol),
				Value: fmt.Sprintf("```%s```", trade.TokenAddress),
			},
			{
				Name:  "External",
				Value: fmt.Sprintf("https://pump.fun/%s", trade.TokenAddress),
			},
			{
				Name:  "Explorer",
				Value: fmt.Sprintf("https://solscan.io/tx/%s", trade.Signature),
			},
		},
	}

	return c.post(ctx, webhookMessage{
		Username: c.username,
		Embeds:   []Embed{embed},
	})
}

func (c *Client) post(ctx context.Context, msg webhookMessage) error {
	payload, err := json.Marshal(&msg)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("discord delivery failed, %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return fmt.Errorf("discord delivery failed, status %s, %s", res.Status, string(body))
	}

	return nil
}

// ShortenAddress renders 7EcDhSYGxXyscszYEp35KHN8vvw3svAuLKTzXwCFLtV as
// 7EcD...FLtV.
func ShortenAddress(address string) string {
	if len(address) < 9 {
		return address
	}

	return fmt.Sprintf("%s...%s", address[:4], address[len(address)-4:])
}
