package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "smartspend/internal/errors"
	"smartspend/internal/models"
	"smartspend/internal/pagination"
	"smartspend/internal/services"
)

type mockChatService struct {
	getHistoryFn  func(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.ChatMessage], error)
	sendMessageFn func(userID, content string) (*services.ChatExchange, error)
}

func (m *mockChatService) GetHistory(_ context.Context, userID string, page pagination.PageRequest) (*pagination.PageResponse[models.ChatMessage], error) {
	if m.getHistoryFn != nil {
		return m.getHistoryFn(userID, page)
	}
	resp := pagination.NewPageResponse[models.ChatMessage](nil, 1, 20, 0)
	return &resp, nil
}

func (m *mockChatService) SendMessage(_ context.Context, userID, content string) (*services.ChatExchange, error) {
	if m.sendMessageFn != nil {
		return m.sendMessageFn(userID, content)
	}
	return &services.ChatExchange{}, nil
}

var _ services.ChatServicer = (*mockChatService)(nil)

func setupChatRouter(handler *ChatHandler) *gin.Engine {
	r := newTestEngine()
	r.GET("/chat", injectUserID(testUserID), handler.GetHistory)
	r.POST("/chat", injectUserID(testUserID), handler.SendMessage)
	return r
}

func TestChatHandler_GetHistory(t *testing.T) {
	t.Run("returns 200 with page", func(t *testing.T) {
		var gotPage pagination.PageRequest
		chatSvc := &mockChatService{
			getHistoryFn: func(_ string, page pagination.PageRequest) (*pagination.PageResponse[models.ChatMessage], error) {
				gotPage = page
				msgs := []models.ChatMessage{{Role: models.ChatRoleAssistant, Content: "Hi Dara!"}}
				resp := pagination.NewPageResponse(msgs, 2, 10, 11)
				return &resp, nil
			},
		}
		r := setupChatRouter(NewChatHandler(chatSvc))

		rec := doRequest(r, "GET", "/chat?page=2&page_size=10", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotPage.Page != 2 || gotPage.PageSize != 10 {
			t.Errorf("unexpected page request %+v", gotPage)
		}
		result := parseJSON(t, rec)
		data := result["data"].([]interface{})
		if len(data) != 1 || data[0].(map[string]interface{})["role"] != "assistant" {
			t.Errorf("unexpected data %v", data)
		}
	})

	t.Run("returns 401 without auth", func(t *testing.T) {
		handler := NewChatHandler(&mockChatService{})
		r := newTestEngine()
		r.GET("/chat", handler.GetHistory)

		rec := doRequest(r, "GET", "/chat", "")

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})
}

func TestChatHandler_SendMessage(t *testing.T) {
	t.Run("returns 201 with exchange", func(t *testing.T) {
		var gotContent string
		chatSvc := &mockChatService{
			sendMessageFn: func(userID, content string) (*services.ChatExchange, error) {
				gotContent = content
				return &services.ChatExchange{
					Prompt: models.ChatMessage{UserID: userID, Role: models.ChatRoleUser, Content: content},
					Reply:  models.ChatMessage{UserID: userID, Role: models.ChatRoleAssistant, Content: "Hello Dara!"},
				}, nil
			},
		}
		r := setupChatRouter(NewChatHandler(chatSvc))

		rec := doRequest(r, "POST", "/chat", `{"message":"hi there"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotContent != "hi there" {
			t.Errorf("expected prompt to be passed through, got %q", gotContent)
		}
		reply := parseJSON(t, rec)["reply"].(map[string]interface{})
		if reply["content"] != "Hello Dara!" {
			t.Errorf("unexpected reply %v", reply)
		}
	})

	t.Run("returns 400 on empty message", func(t *testing.T) {
		r := setupChatRouter(NewChatHandler(&mockChatService{}))

		rec := doRequest(r, "POST", "/chat", `{"message":""}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 500 on unexpected error", func(t *testing.T) {
		chatSvc := &mockChatService{
			sendMessageFn: func(_, _ string) (*services.ChatExchange, error) {
				return nil, apperrors.ErrInternalServer
			},
		}
		r := setupChatRouter(NewChatHandler(chatSvc))

		rec := doRequest(r, "POST", "/chat", `{"message":"hello"}`)

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}
	})
}

func TestGetTaxonomy(t *testing.T) {
	r := newTestEngine()
	r.GET("/taxonomy", GetTaxonomy)

	rec := doRequest(r, "GET", "/taxonomy", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	result := parseJSON(t, rec)
	if currencies := result["currencies"].([]interface{}); len(currencies) != 2 || currencies[0] != "USD" {
		t.Errorf("unexpected currencies %v", currencies)
	}
	if methods := result["payment_methods"].([]interface{}); len(methods) != 5 {
		t.Errorf("expected 5 payment methods, got %d", len(methods))
	}
	if len(result["categories"].([]interface{})) == 0 {
		t.Error("expected categories")
	}
}
