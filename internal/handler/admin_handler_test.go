package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Svg70/crypto-booking/internal/domain"
	"github.com/Svg70/crypto-booking/internal/dto"
	"github.com/Svg70/crypto-booking/pkg/middleware"
	"github.com/gin-gonic/gin"
)

// MockAccessService is a mock implementation of AccessService for testing
type MockAccessService struct {
	InitializeFunc    func(ctx context.Context, req *dto.InitializeRequest) error
	MetaFunc          func(ctx context.Context) (*domain.EngineMeta, error)
	GrantRoleFunc     func(ctx context.Context, caller domain.Address, req *dto.RoleRequest) error
	RevokeRoleFunc    func(ctx context.Context, caller domain.Address, req *dto.RoleRequest) error
	HasRoleFunc       func(ctx context.Context, role domain.Role, addr domain.Address) (bool, error)
	AddCreatorFunc    func(ctx context.Context, caller domain.Address, req *dto.AddCreatorRequest) error
	RemoveCreatorFunc func(ctx context.Context, caller domain.Address, id domain.CreatorID) error
	GetCreatorFunc    func(ctx context.Context, id domain.CreatorID) (*dto.CreatorResponse, error)
	CreateUserFunc    func(ctx context.Context, caller domain.Address, req *dto.CreateUserRequest) error
	UserAddressFunc   func(ctx context.Context, id domain.UserID) (domain.Address, error)
}

func (m *MockAccessService) Initialize(ctx context.Context, req *dto.InitializeRequest) error {
	if m.InitializeFunc != nil {
		return m.InitializeFunc(ctx, req)
	}
	return nil
}

func (m *MockAccessService) Meta(ctx context.Context) (*domain.EngineMeta, error) {
	if m.MetaFunc != nil {
		return m.MetaFunc(ctx)
	}
	return nil, nil
}

func (m *MockAccessService) GrantRole(ctx context.Context, caller domain.Address, req *dto.RoleRequest) error {
	if m.GrantRoleFunc != nil {
		return m.GrantRoleFunc(ctx, caller, req)
	}
	return nil
}

func (m *MockAccessService) RevokeRole(ctx context.Context, caller domain.Address, req *dto.RoleRequest) error {
	if m.RevokeRoleFunc != nil {
		return m.RevokeRoleFunc(ctx, caller, req)
	}
	return nil
}

func (m *MockAccessService) HasRole(ctx context.Context, role domain.Role, addr domain.Address) (bool, error) {
	if m.HasRoleFunc != nil {
		return m.HasRoleFunc(ctx, role, addr)
	}
	return false, nil
}

func (m *MockAccessService) AddCreator(ctx context.Context, caller domain.Address, req *dto.AddCreatorRequest) error {
	if m.AddCreatorFunc != nil {
		return m.AddCreatorFunc(ctx, caller, req)
	}
	return nil
}

func (m *MockAccessService) RemoveCreator(ctx context.Context, caller domain.Address, id domain.CreatorID) error {
	if m.RemoveCreatorFunc != nil {
		return m.RemoveCreatorFunc(ctx, caller, id)
	}
	return nil
}

func (m *MockAccessService) GetCreator(ctx context.Context, id domain.CreatorID) (*dto.CreatorResponse, error) {
	if m.GetCreatorFunc != nil {
		return m.GetCreatorFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockAccessService) CreateUser(ctx context.Context, caller domain.Address, req *dto.CreateUserRequest) error {
	if m.CreateUserFunc != nil {
		return m.CreateUserFunc(ctx, caller, req)
	}
	return nil
}

func (m *MockAccessService) UserAddress(ctx context.Context, id domain.UserID) (domain.Address, error) {
	if m.UserAddressFunc != nil {
		return m.UserAddressFunc(ctx, id)
	}
	return domain.ZeroAddress, nil
}

func setupAdminRouter(handler *AdminHandler, caller string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	if caller != "" {
		router.Use(func(c *gin.Context) {
			c.Set(middleware.ContextKeyCallerAddress, caller)
			c.Next()
		})
	}

	router.POST("/admin/initialize", handler.Initialize)
	router.POST("/admin/roles", handler.GrantRole)
	router.DELETE("/admin/roles", handler.RevokeRole)
	router.POST("/admin/creators", handler.AddCreator)
	router.GET("/admin/creators/:id", handler.GetCreator)
	router.DELETE("/admin/creators/:id", handler.RemoveCreator)
	router.POST("/admin/users", handler.CreateUser)
	return router
}

func initializeBody() []byte {
	body, _ := json.Marshal(&dto.InitializeRequest{
		Admin:        "0xadmin",
		Operator:     "0xoperator",
		Treasury:     "0xtreasury",
		TokenAddress: "0xtoken",
	})
	return body
}

func TestAdminHandler_Initialize(t *testing.T) {
	tests := []struct {
		name           string
		mockFunc       func(ctx context.Context, req *dto.InitializeRequest) error
		expectedStatus int
		expectedCode   string
	}{
		{
			name:           "first initialization",
			expectedStatus: http.StatusCreated,
		},
		{
			name: "second initialization",
			mockFunc: func(ctx context.Context, req *dto.InitializeRequest) error {
				return domain.ErrAlreadyInitialized
			},
			expectedStatus: http.StatusConflict,
			expectedCode:   "ALREADY_INITIALIZED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewAdminHandler(&MockAccessService{InitializeFunc: tt.mockFunc})
			router := setupAdminRouter(handler, "0xadmin")

			req := httptest.NewRequest(http.MethodPost, "/admin/initialize", bytes.NewBuffer(initializeBody()))
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

func TestAdminHandler_Initialize_MissingField(t *testing.T) {
	handler := NewAdminHandler(&MockAccessService{})
	router := setupAdminRouter(handler, "0xadmin")

	req := httptest.NewRequest(http.MethodPost, "/admin/initialize", bytes.NewBufferString(`{"admin":"0xadmin"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestAdminHandler_GrantRole(t *testing.T) {
	roleBody, _ := json.Marshal(&dto.RoleRequest{Role: "creator", Address: "0xcreator"})

	tests := []struct {
		name           string
		caller         string
		mockFunc       func(ctx context.Context, caller domain.Address, req *dto.RoleRequest) error
		expectedStatus int
		expectedCode   string
	}{
		{
			name:           "admin grants",
			caller:         "0xadmin",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "no caller identity",
			caller:         "",
			expectedStatus: http.StatusUnauthorized,
			expectedCode:   "UNAUTHORIZED",
		},
		{
			name:   "non-admin caller",
			caller: "0xnobody",
			mockFunc: func(ctx context.Context, caller domain.Address, req *dto.RoleRequest) error {
				return domain.ErrUnauthorized
			},
			expectedStatus: http.StatusForbidden,
			expectedCode:   "FORBIDDEN",
		},
		{
			name:   "before initialization",
			caller: "0xadmin",
			mockFunc: func(ctx context.Context, caller domain.Address, req *dto.RoleRequest) error {
				return domain.ErrNotInitialized
			},
			expectedStatus: http.StatusConflict,
			expectedCode:   "NOT_INITIALIZED",
		},
		{
			name:   "unknown role",
			caller: "0xadmin",
			mockFunc: func(ctx context.Context, caller domain.Address, req *dto.RoleRequest) error {
				return domain.ErrInvalidRole
			},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "BAD_REQUEST",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewAdminHandler(&MockAccessService{GrantRoleFunc: tt.mockFunc})
			router := setupAdminRouter(handler, tt.caller)

			req := httptest.NewRequest(http.MethodPost, "/admin/roles", bytes.NewBuffer(roleBody))
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

func TestAdminHandler_GetCreator(t *testing.T) {
	handler := NewAdminHandler(&MockAccessService{
		GetCreatorFunc: func(ctx context.Context, id domain.CreatorID) (*dto.CreatorResponse, error) {
			return &dto.CreatorResponse{CreatorID: string(id), Address: ""}, nil
		},
	})
	router := setupAdminRouter(handler, "")

	req := httptest.NewRequest(http.MethodGet, "/admin/creators/creator-1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	// Removed creators resolve to the zero sentinel, not 404
	var resp struct {
		Data dto.CreatorResponse `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Data.CreatorID != "creator-1" || resp.Data.Address != "" {
		t.Errorf("unexpected body: %+v", resp.Data)
	}
}

func TestAdminHandler_CreateUser(t *testing.T) {
	var got *dto.CreateUserRequest
	handler := NewAdminHandler(&MockAccessService{
		CreateUserFunc: func(ctx context.Context, caller domain.Address, req *dto.CreateUserRequest) error {
			got = req
			return nil
		},
	})
	router := setupAdminRouter(handler, "0xadmin")

	body, _ := json.Marshal(&dto.CreateUserRequest{UserID: "user-1", Address: "0xuser"})
	req := httptest.NewRequest(http.MethodPost, "/admin/users", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	if got == nil || got.UserID != "user-1" || got.Address != "0xuser" {
		t.Errorf("unexpected request passed to service: %+v", got)
	}
}
