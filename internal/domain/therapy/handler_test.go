package therapy

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func newHandlerForTest(chat ChatRepository) *Handler {
	return NewHandler(newTestService(testMaterials(), chat, nil))
}

func TestHandlerListVideos(t *testing.T) {
	h := newHandlerForTest(newMockChatRepo())

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/therapy/videos", nil)
	rec := httptest.NewRecorder()

	if err := h.ListVideos(e.NewContext(req, rec)); err != nil {
		t.Fatalf("ListVideos: %v", err)
	}

	var videos []*VideoSection
	if err := json.Unmarshal(rec.Body.Bytes(), &videos); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(videos) != 1 || videos[0].Title == "" {
		t.Errorf("videos = %+v", videos)
	}
}

func TestHandlerGetVideoNotFound(t *testing.T) {
	h := newHandlerForTest(newMockChatRepo())
	e := echo.New()

	for _, id := range []string{"99", "abc"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		c := e.NewContext(req, httptest.NewRecorder())
		c.SetParamNames("sectionId")
		c.SetParamValues(id)

		assertCode(t, h.GetVideo(c), "NOT_FOUND")
	}
}

func TestHandlerGetEbook(t *testing.T) {
	h := newHandlerForTest(newMockChatRepo())

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("ebookId")
	c.SetParamValues("e_03")

	if err := h.GetEbook(c); err != nil {
		t.Fatalf("GetEbook: %v", err)
	}

	var ebook EbookContent
	if err := json.Unmarshal(rec.Body.Bytes(), &ebook); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if ebook.ID != "e_03" || ebook.PDFURL == "" {
		t.Errorf("ebook = %+v", ebook)
	}
}

func TestHandlerChatHistoryRequiresUserID(t *testing.T) {
	h := newHandlerForTest(newMockChatRepo())
	e := echo.New()

	for _, query := range []string{"", "userId=abc", "userId=0"} {
		req := httptest.NewRequest(http.MethodGet, "/therapy/chat/history?"+query, nil)
		c := e.NewContext(req, httptest.NewRecorder())

		assertCode(t, h.ChatHistory(c), "VALIDATION_ERROR")
	}
}

func TestHandlerSendChat(t *testing.T) {
	chat := newMockChatRepo()
	h := newHandlerForTest(chat)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/therapy/chat/send",
		strings.NewReader(`{"sufferer_id":7,"message":"I feel dizzy again"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	if err := h.SendChat(e.NewContext(req, rec)); err != nil {
		t.Fatalf("SendChat: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}

	var exchange ChatExchange
	if err := json.Unmarshal(rec.Body.Bytes(), &exchange); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if exchange.Message == nil || exchange.AIResponse == nil {
		t.Fatalf("exchange = %+v", exchange)
	}
	if exchange.AIResponse.Message != groundingReply {
		t.Errorf("aiResponse = %q", exchange.AIResponse.Message)
	}
}
