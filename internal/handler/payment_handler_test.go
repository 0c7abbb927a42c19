package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Svg70/crypto-booking/internal/domain"
	"github.com/Svg70/crypto-booking/internal/dto"
	"github.com/Svg70/crypto-booking/pkg/middleware"
	"github.com/Svg70/crypto-booking/pkg/response"
	"github.com/gin-gonic/gin"
)

// MockPaymentService is a mock implementation of PaymentService for testing
type MockPaymentService struct {
	PayFunc           func(ctx context.Context, caller domain.Address, req *dto.PaymentRequest) (*dto.PaymentResponse, error)
	GetSettlementFunc func(ctx context.Context, id string) (*dto.PaymentResponse, error)
}

func (m *MockPaymentService) Pay(ctx context.Context, caller domain.Address, req *dto.PaymentRequest) (*dto.PaymentResponse, error) {
	if m.PayFunc != nil {
		return m.PayFunc(ctx, caller, req)
	}
	return nil, nil
}

func (m *MockPaymentService) GetSettlement(ctx context.Context, id string) (*dto.PaymentResponse, error) {
	if m.GetSettlementFunc != nil {
		return m.GetSettlementFunc(ctx, id)
	}
	return nil, nil
}

// MockBookingService is a mock implementation of BookingService for testing
type MockBookingService struct {
	GetBookingFunc func(ctx context.Context, eventID domain.EventID, userID domain.UserID) (*dto.BookingResponse, error)
}

func (m *MockBookingService) GetBooking(ctx context.Context, eventID domain.EventID, userID domain.UserID) (*dto.BookingResponse, error) {
	if m.GetBookingFunc != nil {
		return m.GetBookingFunc(ctx, eventID, userID)
	}
	return nil, nil
}

func setupPaymentRouter(handler *PaymentHandler, caller string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	if caller != "" {
		router.Use(func(c *gin.Context) {
			c.Set(middleware.ContextKeyCallerAddress, caller)
			c.Next()
		})
	}

	router.POST("/payments", handler.Pay)
	router.GET("/payments/:id", handler.GetSettlement)
	router.GET("/bookings/:eventID/:userID", handler.GetBooking)
	return router
}

func decodeError(t *testing.T, body []byte) *response.ErrorData {
	t.Helper()
	var resp response.Response
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp.Error
}

func TestPaymentHandler_Pay(t *testing.T) {
	validRequest := &dto.PaymentRequest{
		TicketCount: 2,
		EventID:     "concert-1",
		UserID:      "user-1",
		Payer:       "0xpayer",
	}

	tests := []struct {
		name           string
		caller         string
		request        *dto.PaymentRequest
		mockFunc       func(ctx context.Context, caller domain.Address, req *dto.PaymentRequest) (*dto.PaymentResponse, error)
		expectedStatus int
		expectedCode   string
	}{
		{
			name:    "successful payment",
			caller:  "0xpayer",
			request: validRequest,
			mockFunc: func(ctx context.Context, caller domain.Address, req *dto.PaymentRequest) (*dto.PaymentResponse, error) {
				return &dto.PaymentResponse{
					SettlementID: "receipt-1",
					EventID:      req.EventID,
					UserID:       req.UserID,
					Tickets:      req.TicketCount,
					Total:        200000000,
					TransferRef:  "tx-abc",
					SettledAt:    time.Now(),
				}, nil
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "no caller identity",
			caller:         "",
			request:        validRequest,
			expectedStatus: http.StatusUnauthorized,
			expectedCode:   "UNAUTHORIZED",
		},
		{
			name:    "payer mismatch",
			caller:  "0xother",
			request: validRequest,
			mockFunc: func(ctx context.Context, caller domain.Address, req *dto.PaymentRequest) (*dto.PaymentResponse, error) {
				return nil, domain.ErrUnauthorized
			},
			expectedStatus: http.StatusForbidden,
			expectedCode:   "FORBIDDEN",
		},
		{
			name:    "insufficient allowance",
			caller:  "0xpayer",
			request: validRequest,
			mockFunc: func(ctx context.Context, caller domain.Address, req *dto.PaymentRequest) (*dto.PaymentResponse, error) {
				return nil, domain.ErrInsufficientAllowance
			},
			expectedStatus: http.StatusPaymentRequired,
			expectedCode:   "INSUFFICIENT_ALLOWANCE",
		},
		{
			name:    "wrong user address",
			caller:  "0xpayer",
			request: validRequest,
			mockFunc: func(ctx context.Context, caller domain.Address, req *dto.PaymentRequest) (*dto.PaymentResponse, error) {
				return nil, domain.ErrWrongUserAddress
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedCode:   "WRONG_USER_ADDRESS",
		},
		{
			name:    "capacity exceeded",
			caller:  "0xpayer",
			request: validRequest,
			mockFunc: func(ctx context.Context, caller domain.Address, req *dto.PaymentRequest) (*dto.PaymentResponse, error) {
				return nil, domain.ErrCapacityExceeded
			},
			expectedStatus: http.StatusConflict,
			expectedCode:   "CAPACITY_EXCEEDED",
		},
		{
			name:    "event not found",
			caller:  "0xpayer",
			request: validRequest,
			mockFunc: func(ctx context.Context, caller domain.Address, req *dto.PaymentRequest) (*dto.PaymentResponse, error) {
				return nil, domain.ErrEventNotFound
			},
			expectedStatus: http.StatusNotFound,
			expectedCode:   "NOT_FOUND",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewPaymentHandler(&MockPaymentService{PayFunc: tt.mockFunc}, &MockBookingService{})
			router := setupPaymentRouter(handler, tt.caller)

			body, _ := json.Marshal(tt.request)
			req := httptest.NewRequest(http.MethodPost, "/payments", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if tt.expectedCode != "" {
				errData := decodeError(t, w.Body.Bytes())
				if errData == nil || errData.Code != tt.expectedCode {
					t.Errorf("expected code %s, got %+v", tt.expectedCode, errData)
				}
			}
		})
	}
}

func TestPaymentHandler_Pay_InvalidBody(t *testing.T) {
	handler := NewPaymentHandler(&MockPaymentService{}, &MockBookingService{})
	router := setupPaymentRouter(handler, "0xpayer")

	req := httptest.NewRequest(http.MethodPost, "/payments", bytes.NewBufferString(`{"ticket_count":0}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestPaymentHandler_GetBooking(t *testing.T) {
	handler := NewPaymentHandler(&MockPaymentService{}, &MockBookingService{
		GetBookingFunc: func(ctx context.Context, eventID domain.EventID, userID domain.UserID) (*dto.BookingResponse, error) {
			return &dto.BookingResponse{
				EventID: string(eventID),
				UserID:  string(userID),
				Tickets: 4,
			}, nil
		},
	})
	router := setupPaymentRouter(handler, "")

	req := httptest.NewRequest(http.MethodGet, "/bookings/concert-1/user-1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp struct {
		Success bool                `json:"success"`
		Data    dto.BookingResponse `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Data.Tickets != 4 || resp.Data.EventID != "concert-1" {
		t.Errorf("unexpected body: %+v", resp.Data)
	}
}

func TestPaymentHandler_GetSettlement_NotFound(t *testing.T) {
	handler := NewPaymentHandler(&MockPaymentService{
		GetSettlementFunc: func(ctx context.Context, id string) (*dto.PaymentResponse, error) {
			return nil, domain.ErrSettlementNotFound
		},
	}, &MockBookingService{})
	router := setupPaymentRouter(handler, "")

	req := httptest.NewRequest(http.MethodGet, "/payments/missing", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}
