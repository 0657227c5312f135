package notify

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/sgbadvisor/internal/config"
)

// TestEscapeMarkdownV2 tests reserved-character escaping.
func TestEscapeMarkdownV2(t *testing.T) {
	assert.Equal(t, `SGBSEP27 will give you 4\.123%`, EscapeMarkdownV2("SGBSEP27 will give you 4.123%"))
	assert.Equal(t, `a\_b\*c\[d\]e\(f\)`, EscapeMarkdownV2("a_b*c[d]e(f)"))
	assert.Equal(t, "plain text", EscapeMarkdownV2("plain text"))
	assert.Equal(t, `\#\+\-\=\|\{\}\.\!\~\>`+"\\`", EscapeMarkdownV2("#+-=|{}.!~>`"))
}

// TestCaption tests the top-n caption.
func TestCaption(t *testing.T) {
	caption := Caption(testResult(), 3)

	assert.Contains(t, caption, "SGBSEP27")
	assert.Contains(t, caption, "SGBJAN28")
	assert.Contains(t, caption, `4\.123%`)
	// Only 2 bonds exist; header says top 2.
	assert.Contains(t, caption, "Top 2")

	caption = Caption(testResult(), 1)
	assert.Contains(t, caption, "SGBSEP27")
	assert.NotContains(t, caption, "SGBJAN28")
}

// TestCaptionEmpty tests the distinct empty-result caption.
func TestCaptionEmpty(t *testing.T) {
	caption := Caption(emptyResult(), 3)
	assert.Contains(t, caption, "No SGB recommendations")
}

func telegramTestClient(t *testing.T, handler http.Handler) *TelegramClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewTelegramClient(config.TelegramConfig{
		BotToken: "123:token",
		ChatIDs:  []string{"42", "@channel"},
	}, nil, zerolog.Nop())
	client.baseURL = server.URL
	return client
}

// TestTelegramValidate tests getMe and getChat validation calls.
func TestTelegramValidate(t *testing.T) {
	var methods []string
	client := telegramTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasPrefix(r.URL.Path, "/bot123:token/"))
		methods = append(methods, strings.TrimPrefix(r.URL.Path, "/bot123:token/"))
		_, _ = w.Write([]byte(`{"ok":true,"result":{"username":"sgb_advisor_bot"}}`))
	}))

	require.NoError(t, client.Validate())
	assert.Equal(t, []string{"getMe", "getChat", "getChat"}, methods)
}

// TestTelegramValidateBotFailure tests that a failed getMe is an error.
func TestTelegramValidateBotFailure(t *testing.T) {
	client := telegramTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":false,"description":"Unauthorized"}`))
	}))

	err := client.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unauthorized")
}

// TestTelegramValidateMissingConfig tests local validation failures.
func TestTelegramValidateMissingConfig(t *testing.T) {
	client := NewTelegramClient(config.TelegramConfig{}, nil, zerolog.Nop())
	assert.Error(t, client.Validate())

	client = NewTelegramClient(config.TelegramConfig{BotToken: "123:token"}, nil, zerolog.Nop())
	assert.Error(t, client.Validate())
}

// TestTelegramSend tests the message + document fan-out to every chat. With
// no screenshot function the caption goes out as a text message.
func TestTelegramSend(t *testing.T) {
	counts := map[string]int{}
	client := telegramTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method := strings.TrimPrefix(r.URL.Path, "/bot123:token/")
		counts[method]++

		if method == "sendDocument" {
			require.NoError(t, r.ParseMultipartForm(1<<20))
			assert.NotEmpty(t, r.MultipartForm.Value["chat_id"])
			_, header, err := r.FormFile("document")
			require.NoError(t, err)
			assert.True(t, strings.HasSuffix(header.Filename, ".json"))
		}
		_, _ = w.Write([]byte(`{"ok":true,"result":{}}`))
	}))

	require.NoError(t, client.Send(testResult(), "/tmp/out.html"))
	assert.Equal(t, 2, counts["sendMessage"])
	assert.Equal(t, 2, counts["sendDocument"])
	assert.Zero(t, counts["sendPhoto"])
}

// TestTelegramSendPhoto tests that a working screenshot function switches
// delivery to sendPhoto with the caption attached.
func TestTelegramSendPhoto(t *testing.T) {
	counts := map[string]int{}
	client := telegramTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method := strings.TrimPrefix(r.URL.Path, "/bot123:token/")
		counts[method]++

		if method == "sendPhoto" {
			require.NoError(t, r.ParseMultipartForm(1<<20))
			assert.NotEmpty(t, r.MultipartForm.Value["caption"])
			_, _, err := r.FormFile("photo")
			require.NoError(t, err)
		}
		_, _ = w.Write([]byte(`{"ok":true,"result":{}}`))
	}))
	client.screenshot = func(url, selector string) ([]byte, error) {
		assert.Equal(t, "file:///tmp/out.html", url)
		assert.Equal(t, TableSelector, selector)
		return []byte("png-bytes"), nil
	}

	require.NoError(t, client.Send(testResult(), "/tmp/out.html"))
	assert.Equal(t, 2, counts["sendPhoto"])
	assert.Equal(t, 2, counts["sendDocument"])
	assert.Zero(t, counts["sendMessage"])
}

// TestTelegramSendScreenshotFallback tests the text fallback when the
// screenshot fails.
func TestTelegramSendScreenshotFallback(t *testing.T) {
	counts := map[string]int{}
	client := telegramTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		counts[strings.TrimPrefix(r.URL.Path, "/bot123:token/")]++
		_, _ = w.Write([]byte(`{"ok":true,"result":{}}`))
	}))
	client.screenshot = func(url, selector string) ([]byte, error) {
		return nil, assert.AnError
	}

	require.NoError(t, client.Send(testResult(), "/tmp/out.html"))
	assert.Equal(t, 2, counts["sendMessage"])
	assert.Zero(t, counts["sendPhoto"])
}
