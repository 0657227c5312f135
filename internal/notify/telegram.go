package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/sgbadvisor/internal/config"
	"github.com/aristath/sgbadvisor/internal/domain"
)

// telegramAPIBase is the production Bot API host; tests point the client at
// an httptest server instead.
const telegramAPIBase = "https://api.telegram.org"

// markdownV2Reserved are the characters the Bot API requires escaping in
// MarkdownV2 messages.
const markdownV2Reserved = "_*[]()~`>#+-=|{}.!"

// ScreenshotFunc renders a URL and screenshots the element matching the
// selector. Injected so the notifier does not depend on the scraper package.
type ScreenshotFunc func(url, selector string) ([]byte, error)

// TelegramClient sends results through the Telegram Bot API.
type TelegramClient struct {
	baseURL    string
	botToken   string
	chatIDs    []string
	client     *http.Client
	screenshot ScreenshotFunc
	log        zerolog.Logger
}

// NewTelegramClient creates a Bot API client.
func NewTelegramClient(cfg config.TelegramConfig, screenshot ScreenshotFunc, log zerolog.Logger) *TelegramClient {
	return &TelegramClient{
		baseURL:    telegramAPIBase,
		botToken:   cfg.BotToken,
		chatIDs:    cfg.ChatIDs,
		client:     &http.Client{Timeout: 30 * time.Second},
		screenshot: screenshot,
		log:        log.With().Str("component", "telegram").Logger(),
	}
}

func (c *TelegramClient) methodURL(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.botToken, method)
}

// apiResponse is the envelope every Bot API call returns.
type apiResponse struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description"`
	Result      json.RawMessage `json:"result"`
}

func decodeResponse(resp *http.Response) (*apiResponse, error) {
	defer resp.Body.Close()

	var out apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode Bot API response: %w", err)
	}
	if !out.OK {
		return nil, fmt.Errorf("Bot API call failed: %s", out.Description)
	}
	return &out, nil
}

// Validate checks that the bot authenticates and every configured chat is
// reachable, before anything is sent.
func (c *TelegramClient) Validate() error {
	if c.botToken == "" {
		return fmt.Errorf("telegram bot token is not configured")
	}
	if len(c.chatIDs) == 0 {
		return fmt.Errorf("no telegram chat ids are configured")
	}

	resp, err := c.client.Get(c.methodURL("getMe"))
	if err != nil {
		return fmt.Errorf("getMe request failed: %w", err)
	}
	body, err := decodeResponse(resp)
	if err != nil {
		return err
	}

	var me struct {
		Username string `json:"username"`
	}
	if err := json.Unmarshal(body.Result, &me); err == nil && me.Username != "" {
		c.log.Debug().Str("username", me.Username).Msg("Telegram bot authenticated")
	}

	for _, chatID := range c.chatIDs {
		payload, _ := json.Marshal(map[string]string{"chat_id": chatID})
		resp, err := c.client.Post(c.methodURL("getChat"), "application/json", bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("getChat request for %s failed: %w", chatID, err)
		}
		if _, err := decodeResponse(resp); err != nil {
			return fmt.Errorf("chat %s is not reachable: %w", chatID, err)
		}
	}
	return nil
}

// Send delivers the result to every configured chat: a screenshot of the
// rendered table with a top-picks caption, plus the full JSON document. If
// the screenshot cannot be produced, a plain text message is sent instead.
func (c *TelegramClient) Send(result *domain.Result, htmlPath string) error {
	caption := Caption(result, 3)

	var photo []byte
	if c.screenshot != nil {
		var err error
		photo, err = c.screenshot("file://"+htmlPath, TableSelector)
		if err != nil {
			c.log.Warn().Err(err).Msg("Could not screenshot results table, falling back to text")
			photo = nil
		}
	}

	jsonPath, err := WriteJSONFile(result)
	if err != nil {
		return err
	}
	jsonData, err := JSONDocument(result)
	if err != nil {
		return err
	}

	for _, chatID := range c.chatIDs {
		if photo != nil {
			if err := c.sendPhoto(chatID, photo, caption); err != nil {
				return err
			}
		} else {
			if err := c.sendMessage(chatID, caption); err != nil {
				return err
			}
		}
		if err := c.sendDocument(chatID, jsonPath, jsonData); err != nil {
			return err
		}
	}

	c.log.Info().Int("chats", len(c.chatIDs)).Msg("Delivered to Telegram")
	return nil
}

// sendMessage posts a MarkdownV2 text message.
func (c *TelegramClient) sendMessage(chatID, text string) error {
	payload, err := json.Marshal(map[string]string{
		"chat_id":    chatID,
		"text":       text,
		"parse_mode": "MarkdownV2",
	})
	if err != nil {
		return fmt.Errorf("failed to marshal sendMessage payload: %w", err)
	}

	resp, err := c.client.Post(c.methodURL("sendMessage"), "application/json", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("sendMessage request failed: %w", err)
	}
	if _, err := decodeResponse(resp); err != nil {
		return fmt.Errorf("sendMessage to %s failed: %w", chatID, err)
	}
	return nil
}

// sendPhoto posts the table image with a caption as multipart form data.
func (c *TelegramClient) sendPhoto(chatID string, photo []byte, caption string) error {
	return c.sendMultipart("sendPhoto", chatID, "photo", "sgb-returns.png", photo, caption)
}

// sendDocument posts the JSON result document.
func (c *TelegramClient) sendDocument(chatID, path string, data []byte) error {
	return c.sendMultipart("sendDocument", chatID, "document", filepath.Base(path), data, "")
}

func (c *TelegramClient) sendMultipart(method, chatID, field, filename string, data []byte, caption string) error {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	if err := writer.WriteField("chat_id", chatID); err != nil {
		return fmt.Errorf("failed to write chat_id field: %w", err)
	}
	if caption != "" {
		if err := writer.WriteField("caption", caption); err != nil {
			return fmt.Errorf("failed to write caption field: %w", err)
		}
		if err := writer.WriteField("parse_mode", "MarkdownV2"); err != nil {
			return fmt.Errorf("failed to write parse_mode field: %w", err)
		}
	}

	part, err := writer.CreateFormFile(field, filename)
	if err != nil {
		return fmt.Errorf("failed to create %s part: %w", field, err)
	}
	if _, err := io.Copy(part, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write %s payload: %w", field, err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	resp, err := c.client.Post(c.methodURL(method), writer.FormDataContentType(), &body)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", method, err)
	}
	if _, err := decodeResponse(resp); err != nil {
		return fmt.Errorf("%s to %s failed: %w", method, chatID, err)
	}
	return nil
}

// EscapeMarkdownV2 escapes the Bot API's reserved characters.
func EscapeMarkdownV2(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		if strings.ContainsRune(markdownV2Reserved, r) {
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// Caption builds the short MarkdownV2 message: the top n picks with their
// yields, or the distinct no-recommendations notice.
func Caption(result *domain.Result, n int) string {
	if len(result.Bonds) == 0 {
		return EscapeMarkdownV2("No SGB recommendations today (nothing with positive trading volume).")
	}

	if n > len(result.Bonds) {
		n = len(result.Bonds)
	}

	var sb strings.Builder
	sb.WriteString(EscapeMarkdownV2(fmt.Sprintf("Top %d SGBs by estimated XIRR (gold at ₹%.2f):", n, result.GoldPrice)))
	sb.WriteString("\n")
	for _, b := range result.Bonds[:n] {
		line := fmt.Sprintf("%s will give you %.3f%% if gold price stays the same", b.Symbol, b.XIRR)
		sb.WriteString(EscapeMarkdownV2(line))
		sb.WriteString("\n")
	}
	return sb.String()
}
