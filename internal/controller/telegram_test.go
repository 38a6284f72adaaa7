package controller

import (
	"net/http"
	"net/http/httptest"
	"path"
	"strconv"
	"sync"
	"testing"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/require"
)

// apiCall - один запрос к Bot API, поля формы без файлов
type apiCall struct {
	Method string
	Form   map[string]string
}

// fakeTelegram отвечает на запросы Bot API и запоминает их
type fakeTelegram struct {
	mu    sync.Mutex
	calls []apiCall
}

func newFakeTelegram(t *testing.T) (*fakeTelegram, *bot.Bot) {
	t.Helper()

	f := &fakeTelegram{}
	srv := httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(srv.Close)

	b, err := bot.New("123:test-token", bot.WithServerURL(srv.URL), bot.WithSkipGetMe())
	require.NoError(t, err)
	return f, b
}

func (f *fakeTelegram) serve(w http.ResponseWriter, r *http.Request) {
	call := apiCall{Method: path.Base(r.URL.Path), Form: map[string]string{}}

	if err := r.ParseMultipartForm(1 << 20); err == nil && r.MultipartForm != nil {
		for k, v := range r.MultipartForm.Value {
			call.Form[k] = v[0]
		}
	} else if err := r.ParseForm(); err == nil {
		for k, v := range r.PostForm {
			call.Form[k] = v[0]
		}
	}

	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch call.Method {
	case "sendMessage", "editMessageText":
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":1,"date":0,"chat":{"id":1,"type":"private"}}}`))
	default:
		_, _ = w.Write([]byte(`{"ok":true,"result":true}`))
	}
}

func (f *fakeTelegram) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}

// find возвращает вызовы метода, адресованные чату (0 - любому)
func (f *fakeTelegram) find(method string, chatID int64) []apiCall {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []apiCall
	for _, c := range f.calls {
		if c.Method != method {
			continue
		}
		if chatID != 0 && c.Form["chat_id"] != strconv.FormatInt(chatID, 10) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// lastText - текст последнего sendMessage или editMessageText в чат
func (f *fakeTelegram) lastText(t *testing.T, chatID int64) string {
	t.Helper()

	f.mu.Lock()
	defer f.mu.Unlock()

	want := strconv.FormatInt(chatID, 10)
	for i := len(f.calls) - 1; i >= 0; i-- {
		c := f.calls[i]
		if (c.Method == "sendMessage" || c.Method == "editMessageText") && c.Form["chat_id"] == want {
			return c.Form["text"]
		}
	}
	t.Fatalf("no messages sent to chat %d", chatID)
	return ""
}

// lastAnswer - текст последнего ответа на callback query
func (f *fakeTelegram) lastAnswer(t *testing.T) string {
	t.Helper()

	answers := f.find("answerCallbackQuery", 0)
	require.NotEmpty(t, answers, "no callback answers")
	return answers[len(answers)-1].Form["text"]
}

type tgUser struct {
	ID        int64
	FirstName string
	Username  string
}

func messageUpdate(u tgUser, text string) *models.Update {
	return &models.Update{
		Message: &models.Message{
			ID:   1,
			From: &models.User{ID: u.ID, FirstName: u.FirstName, Username: u.Username},
			Chat: models.Chat{ID: u.ID, Type: models.ChatTypePrivate},
			Text: text,
		},
	}
}

func callbackUpdate(u tgUser, data string) *models.Update {
	return &models.Update{
		CallbackQuery: &models.CallbackQuery{
			ID:   "cb-" + data,
			From: models.User{ID: u.ID, FirstName: u.FirstName, Username: u.Username},
			Message: models.MaybeInaccessibleMessage{
				Type: models.MaybeInaccessibleMessageTypeMessage,
				Message: &models.Message{
					ID:   10,
					Chat: models.Chat{ID: u.ID, Type: models.ChatTypePrivate},
				},
			},
			Data: data,
		},
	}
}
