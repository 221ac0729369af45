package infrastructure

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"relaybot/internal/entities"
	"relaybot/internal/interfaces"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "123:abc"

type botAPICall struct {
	method string
	params map[string]string
	files  []string
}

// fakeBotAPI answers Bot API methods the way api.telegram.org does.
// Methods listed in failing get an ok=false reply.
type fakeBotAPI struct {
	mu      sync.Mutex
	calls   []botAPICall
	failing map[string]string
}

func (f *fakeBotAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	method := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]

	call := botAPICall{method: method, params: map[string]string{}}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		_ = r.ParseMultipartForm(10 << 20)
		for k, v := range r.MultipartForm.Value {
			call.params[k] = v[0]
		}
		for k := range r.MultipartForm.File {
			call.files = append(call.files, k)
		}
	} else {
		_ = r.ParseForm()
		for k, v := range r.PostForm {
			call.params[k] = v[0]
		}
	}

	f.mu.Lock()
	if method != "getMe" {
		f.calls = append(f.calls, call)
	}
	description, fail := f.failing[method]
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch {
	case fail:
		_, _ = w.Write([]byte(`{"ok":false,"error_code":403,"description":"` + description + `"}`))
	case method == "getMe":
		_, _ = w.Write([]byte(`{"ok":true,"result":{"id":123,"is_bot":true,"first_name":"Relay","username":"relay_bot"}}`))
	case strings.HasPrefix(method, "send"):
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":1,"date":0,"chat":{"id":1,"type":"private"}}}`))
	default:
		_, _ = w.Write([]byte(`{"ok":true,"result":true}`))
	}
}

func (f *fakeBotAPI) lastCall(t *testing.T) botAPICall {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.calls)
	return f.calls[len(f.calls)-1]
}

func newTestTelegramClient(t *testing.T) (*TelegramClient, *fakeBotAPI) {
	t.Helper()
	api := &fakeBotAPI{failing: map[string]string{}}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	client, err := NewTelegramClientWithEndpoint(testToken, srv.URL+"/bot%s/%s", srv.Client(), NewSendThrottle(0, 0), nil)
	require.NoError(t, err)
	return client, api
}

func TestTelegramClientConnects(t *testing.T) {
	client, _ := newTestTelegramClient(t)
	assert.Equal(t, "relay_bot", client.Username())
}

func TestTelegramClientSendText(t *testing.T) {
	client, api := newTestTelegramClient(t)

	action := entities.ReplyAction{UserID: 42}
	err := client.SendText(context.Background(), 1000, "hello", interfaces.SendOptions{ReplyAction: &action, ReplyToMessageID: 9})
	require.NoError(t, err)

	call := api.lastCall(t)
	assert.Equal(t, "sendMessage", call.method)
	assert.Equal(t, "1000", call.params["chat_id"])
	assert.Equal(t, "hello", call.params["text"])
	assert.Equal(t, "9", call.params["reply_to_message_id"])
	assert.Contains(t, call.params["reply_markup"], `"callback_data":"reply:42"`)
	assert.Contains(t, call.params["reply_markup"], ReplyButtonLabel)
}

func TestTelegramClientTruncatesLongText(t *testing.T) {
	client, api := newTestTelegramClient(t)

	long := strings.Repeat("я", MaxTextLength+100)
	require.NoError(t, client.SendText(context.Background(), 1, long, interfaces.SendOptions{}))

	assert.Equal(t, MaxTextLength, utf8.RuneCountInString(api.lastCall(t).params["text"]))
}

func TestTelegramClientSendPhotoByFileID(t *testing.T) {
	client, api := newTestTelegramClient(t)

	caption := strings.Repeat("a", MaxCaptionLength+1)
	err := client.SendPhoto(context.Background(), 1000, entities.FileRef("AgAC"), caption, interfaces.SendOptions{})
	require.NoError(t, err)

	call := api.lastCall(t)
	assert.Equal(t, "sendPhoto", call.method)
	assert.Equal(t, "AgAC", call.params["photo"])
	assert.Len(t, call.params["caption"], MaxCaptionLength)
	assert.Empty(t, call.params["reply_markup"])
}

func TestTelegramClientSendPhotoUploadsLocalFile(t *testing.T) {
	client, api := newTestTelegramClient(t)

	path := filepath.Join(t.TempDir(), "welcome_image.jpg")
	require.NoError(t, os.WriteFile(path, []byte("\xff\xd8\xff\xe0 fake jpeg"), 0o600))

	err := client.SendPhoto(context.Background(), 42, entities.LocalFile(path), "welcome", interfaces.SendOptions{})
	require.NoError(t, err)

	call := api.lastCall(t)
	assert.Equal(t, "sendPhoto", call.method)
	assert.Equal(t, []string{"photo"}, call.files)
	assert.Equal(t, "welcome", call.params["caption"])
}

func TestTelegramClientSendVideo(t *testing.T) {
	client, api := newTestTelegramClient(t)

	require.NoError(t, client.SendVideo(context.Background(), 42, entities.FileRef("BAAC"), "clip", interfaces.SendOptions{}))

	call := api.lastCall(t)
	assert.Equal(t, "sendVideo", call.method)
	assert.Equal(t, "BAAC", call.params["video"])
	assert.Equal(t, "clip", call.params["caption"])
}

func TestTelegramClientEmptyMediaRef(t *testing.T) {
	client, _ := newTestTelegramClient(t)

	err := client.SendPhoto(context.Background(), 42, entities.MediaRef{}, "", interfaces.SendOptions{})
	assert.Error(t, err)
}

func TestTelegramClientSendFailureCarriesPlatformDescription(t *testing.T) {
	client, api := newTestTelegramClient(t)
	api.failing["sendMessage"] = "Forbidden: bot was blocked by the user"

	err := client.SendText(context.Background(), 42, "hi", interfaces.SendOptions{})
	require.Error(t, err)
	assert.Equal(t, "Forbidden: bot was blocked by the user", err.Error())
}

func TestTelegramClientAnswerCallback(t *testing.T) {
	client, api := newTestTelegramClient(t)

	require.NoError(t, client.AnswerCallback(context.Background(), "cb-1"))

	call := api.lastCall(t)
	assert.Equal(t, "answerCallbackQuery", call.method)
	assert.Equal(t, "cb-1", call.params["callback_query_id"])
}

func TestTelegramClientWebhook(t *testing.T) {
	client, api := newTestTelegramClient(t)

	require.NoError(t, client.RegisterWebhook(context.Background(), "https://bot.example.com/webhook/"+testToken))
	call := api.lastCall(t)
	assert.Equal(t, "setWebhook", call.method)
	assert.Equal(t, "https://bot.example.com/webhook/"+testToken, call.params["url"])

	require.NoError(t, client.DeleteWebhook(context.Background()))
	assert.Equal(t, "deleteWebhook", api.lastCall(t).method)

	api.failing["setWebhook"] = "Bad Request: bad webhook"
	err := client.RegisterWebhook(context.Background(), "https://bot.example.com/webhook/x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad webhook")
}

func TestTelegramClientHonorsCancelledContext(t *testing.T) {
	api := &fakeBotAPI{failing: map[string]string{}}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	// one token, already spent by the first send
	client, err := NewTelegramClientWithEndpoint(testToken, srv.URL+"/bot%s/%s", srv.Client(), NewSendThrottle(0.001, 1), nil)
	require.NoError(t, err)
	require.NoError(t, client.SendText(context.Background(), 1, "first", interfaces.SendOptions{}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, client.SendText(ctx, 1, "second", interfaces.SendOptions{}))
	assert.Len(t, api.calls, 1)
}
