package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Aswindil12/algus-turf/internal/domain"
	"github.com/Aswindil12/algus-turf/internal/dto"
)

// MockBookingService is a mock implementation of BookingService for testing
type MockBookingService struct {
	CreateBookingFunc  func(ctx context.Context, req *dto.CreateBookingRequest) (*dto.CreateBookingResponse, error)
	ConfirmBookingFunc func(ctx context.Context, bookingID string, req *dto.ConfirmBookingRequest) (*dto.BookingResponse, error)
	CancelBookingFunc  func(ctx context.Context, bookingID string) (*dto.CancelBookingResponse, error)
	GetBookingFunc     func(ctx context.Context, bookingID string) (*dto.BookingResponse, error)
	ListBookingsFunc   func(ctx context.Context, filter *dto.ListBookingsFilter) ([]*dto.BookingResponse, error)
	QuoteFunc          func(ctx context.Context, turfType string, slotCount int) (*dto.QuoteResponse, error)
	ExpirePaymentsFunc func(ctx context.Context, limit int) (int, error)
}

func (m *MockBookingService) CreateBooking(ctx context.Context, req *dto.CreateBookingRequest) (*dto.CreateBookingResponse, error) {
	if m.CreateBookingFunc != nil {
		return m.CreateBookingFunc(ctx, req)
	}
	return nil, nil
}

func (m *MockBookingService) ConfirmBooking(ctx context.Context, bookingID string, req *dto.ConfirmBookingRequest) (*dto.BookingResponse, error) {
	if m.ConfirmBookingFunc != nil {
		return m.ConfirmBookingFunc(ctx, bookingID, req)
	}
	return nil, nil
}

func (m *MockBookingService) CancelBooking(ctx context.Context, bookingID string) (*dto.CancelBookingResponse, error) {
	if m.CancelBookingFunc != nil {
		return m.CancelBookingFunc(ctx, bookingID)
	}
	return nil, nil
}

func (m *MockBookingService) GetBooking(ctx context.Context, bookingID string) (*dto.BookingResponse, error) {
	if m.GetBookingFunc != nil {
		return m.GetBookingFunc(ctx, bookingID)
	}
	return nil, nil
}

func (m *MockBookingService) ListBookings(ctx context.Context, filter *dto.ListBookingsFilter) ([]*dto.BookingResponse, error) {
	if m.ListBookingsFunc != nil {
		return m.ListBookingsFunc(ctx, filter)
	}
	return nil, nil
}

func (m *MockBookingService) Quote(ctx context.Context, turfType string, slotCount int) (*dto.QuoteResponse, error) {
	if m.QuoteFunc != nil {
		return m.QuoteFunc(ctx, turfType, slotCount)
	}
	return nil, nil
}

func (m *MockBookingService) ExpirePayments(ctx context.Context, limit int) (int, error) {
	if m.ExpirePaymentsFunc != nil {
		return m.ExpirePaymentsFunc(ctx, limit)
	}
	return 0, nil
}

// MockAvailabilityService is a mock implementation of AvailabilityService
type MockAvailabilityService struct {
	GetAvailabilityFunc func(ctx context.Context, date, turfType string) (*dto.AvailabilityResponse, error)
}

func (m *MockAvailabilityService) GetAvailability(ctx context.Context, date, turfType string) (*dto.AvailabilityResponse, error) {
	if m.GetAvailabilityFunc != nil {
		return m.GetAvailabilityFunc(ctx, date, turfType)
	}
	return nil, nil
}

func setupBookingRouter(bookingService *MockBookingService, availabilityService *MockAvailabilityService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	handler := NewBookingHandler(bookingService, availabilityService)

	router.GET("/api/availability", handler.GetAvailability)
	router.GET("/api/pricing/quote", handler.GetQuote)
	bookings := router.Group("/api/bookings")
	{
		bookings.POST("", handler.CreateBooking)
		bookings.GET("/:id", handler.GetBooking)
		bookings.POST("/:id/confirm", handler.ConfirmBooking)
		bookings.POST("/:id/cancel", handler.CancelBooking)
	}

	return router
}

func TestBookingHandler_CreateBooking(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		mockFunc       func(ctx context.Context, req *dto.CreateBookingRequest) (*dto.CreateBookingResponse, error)
		expectedStatus int
		expectedCode   string
	}{
		{
			name: "successful booking",
			body: `{"name":"Rahul","email":"rahul@example.com","phone":"9876543210","turf_type":"football-full","date":"2026-09-15","slots":["18:00","19:00"]}`,
			mockFunc: func(ctx context.Context, req *dto.CreateBookingRequest) (*dto.CreateBookingResponse, error) {
				return &dto.CreateBookingResponse{
					BookingID:     "booking-123",
					Status:        "pending",
					Total:         2000,
					Advance:       600,
					Remaining:     1400,
					HoldExpiresAt: time.Now().Add(10 * time.Minute),
				}, nil
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "malformed body",
			body:           "not json",
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "INVALID_REQUEST",
		},
		{
			name: "slot already taken",
			body: `{"name":"Rahul","email":"rahul@example.com","phone":"9876543210","turf_type":"football-full","date":"2026-09-15","slots":["18:00"]}`,
			mockFunc: func(ctx context.Context, req *dto.CreateBookingRequest) (*dto.CreateBookingResponse, error) {
				return nil, domain.ErrSlotUnavailable
			},
			expectedStatus: http.StatusConflict,
			expectedCode:   "SLOT_UNAVAILABLE",
		},
		{
			name: "unknown turf type",
			body: `{"name":"Rahul","email":"rahul@example.com","phone":"9876543210","turf_type":"tennis","date":"2026-09-15","slots":["18:00"]}`,
			mockFunc: func(ctx context.Context, req *dto.CreateBookingRequest) (*dto.CreateBookingResponse, error) {
				return nil, domain.ErrUnknownTurfType
			},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "INVALID_REQUEST",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupBookingRouter(&MockBookingService{CreateBookingFunc: tt.mockFunc}, &MockAvailabilityService{})

			req := httptest.NewRequest(http.MethodPost, "/api/bookings", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			if tt.expectedCode != "" {
				var response dto.ErrorResponse
				if err := json.Unmarshal(w.Body.Bytes(), &response); err == nil {
					if response.Code != tt.expectedCode {
						t.Errorf("expected code %s, got %s", tt.expectedCode, response.Code)
					}
				}
			}
		})
	}
}

func TestBookingHandler_ConfirmBooking(t *testing.T) {
	tests := []struct {
		name           string
		bookingID      string
		body           string
		mockFunc       func(ctx context.Context, bookingID string, req *dto.ConfirmBookingRequest) (*dto.BookingResponse, error)
		expectedStatus int
		expectedCode   string
	}{
		{
			name:      "successful confirmation",
			bookingID: "booking-123",
			body:      `{"payment_ref":"pi_123"}`,
			mockFunc: func(ctx context.Context, bookingID string, req *dto.ConfirmBookingRequest) (*dto.BookingResponse, error) {
				return &dto.BookingResponse{ID: bookingID, Status: "confirmed"}, nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "missing payment_ref",
			bookingID:      "booking-123",
			body:           `{}`,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "INVALID_REQUEST",
		},
		{
			name:      "booking not found",
			bookingID: "non-existent",
			body:      `{"payment_ref":"pi_123"}`,
			mockFunc: func(ctx context.Context, bookingID string, req *dto.ConfirmBookingRequest) (*dto.BookingResponse, error) {
				return nil, domain.ErrBookingNotFound
			},
			expectedStatus: http.StatusNotFound,
			expectedCode:   "NOT_FOUND",
		},
		{
			name:      "already confirmed",
			bookingID: "booking-123",
			body:      `{"payment_ref":"pi_123"}`,
			mockFunc: func(ctx context.Context, bookingID string, req *dto.ConfirmBookingRequest) (*dto.BookingResponse, error) {
				return nil, domain.ErrAlreadyConfirmed
			},
			expectedStatus: http.StatusConflict,
			expectedCode:   "ALREADY_CONFIRMED",
		},
		{
			name:      "payment window elapsed",
			bookingID: "booking-123",
			body:      `{"payment_ref":"pi_123"}`,
			mockFunc: func(ctx context.Context, bookingID string, req *dto.ConfirmBookingRequest) (*dto.BookingResponse, error) {
				return nil, domain.ErrPaymentTimedOut
			},
			expectedStatus: http.StatusGone,
			expectedCode:   "PAYMENT_TIMED_OUT",
		},
		{
			name:      "payment declined",
			bookingID: "booking-123",
			body:      `{"payment_ref":"pi_123"}`,
			mockFunc: func(ctx context.Context, bookingID string, req *dto.ConfirmBookingRequest) (*dto.BookingResponse, error) {
				return nil, domain.ErrPaymentFailed
			},
			expectedStatus: http.StatusPaymentRequired,
			expectedCode:   "PAYMENT_FAILED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupBookingRouter(&MockBookingService{ConfirmBookingFunc: tt.mockFunc}, &MockAvailabilityService{})

			req := httptest.NewRequest(http.MethodPost, "/api/bookings/"+tt.bookingID+"/confirm", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			if tt.expectedCode != "" {
				var response dto.ErrorResponse
				if err := json.Unmarshal(w.Body.Bytes(), &response); err == nil {
					if response.Code != tt.expectedCode {
						t.Errorf("expected code %s, got %s", tt.expectedCode, response.Code)
					}
				}
			}
		})
	}
}

func TestBookingHandler_CancelBooking(t *testing.T) {
	tests := []struct {
		name           string
		bookingID      string
		mockFunc       func(ctx context.Context, bookingID string) (*dto.CancelBookingResponse, error)
		expectedStatus int
		expectedCode   string
	}{
		{
			name:      "successful cancellation",
			bookingID: "booking-123",
			mockFunc: func(ctx context.Context, bookingID string) (*dto.CancelBookingResponse, error) {
				return &dto.CancelBookingResponse{BookingID: bookingID, Status: "cancelled"}, nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:      "cancel again is a no-op",
			bookingID: "booking-123",
			mockFunc: func(ctx context.Context, bookingID string) (*dto.CancelBookingResponse, error) {
				return &dto.CancelBookingResponse{BookingID: bookingID, Status: "cancelled"}, nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:      "booking not found",
			bookingID: "non-existent",
			mockFunc: func(ctx context.Context, bookingID string) (*dto.CancelBookingResponse, error) {
				return nil, domain.ErrBookingNotFound
			},
			expectedStatus: http.StatusNotFound,
			expectedCode:   "NOT_FOUND",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupBookingRouter(&MockBookingService{CancelBookingFunc: tt.mockFunc}, &MockAvailabilityService{})

			req := httptest.NewRequest(http.MethodPost, "/api/bookings/"+tt.bookingID+"/cancel", nil)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			if tt.expectedCode != "" {
				var response dto.ErrorResponse
				if err := json.Unmarshal(w.Body.Bytes(), &response); err == nil {
					if response.Code != tt.expectedCode {
						t.Errorf("expected code %s, got %s", tt.expectedCode, response.Code)
					}
				}
			}
		})
	}
}

func TestBookingHandler_GetAvailability(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		mockFunc       func(ctx context.Context, date, turfType string) (*dto.AvailabilityResponse, error)
		expectedStatus int
		expectedCode   string
	}{
		{
			name:  "full grid",
			query: "?date=2026-09-15",
			mockFunc: func(ctx context.Context, date, turfType string) (*dto.AvailabilityResponse, error) {
				if date != "2026-09-15" {
					t.Errorf("expected date 2026-09-15, got %s", date)
				}
				if turfType != "" {
					t.Errorf("expected empty turf type, got %s", turfType)
				}
				return &dto.AvailabilityResponse{Date: date, TotalSlots: 19, AvailableCount: 19}, nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:  "narrowed to one turf",
			query: "?date=2026-09-15&turf_type=cricket",
			mockFunc: func(ctx context.Context, date, turfType string) (*dto.AvailabilityResponse, error) {
				if turfType != "cricket" {
					t.Errorf("expected turf type cricket, got %s", turfType)
				}
				return &dto.AvailabilityResponse{Date: date, TurfType: turfType, TotalSlots: 19, AvailableCount: 19}, nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "missing date",
			query:          "",
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "INVALID_REQUEST",
		},
		{
			name:  "invalid date",
			query: "?date=tomorrow",
			mockFunc: func(ctx context.Context, date, turfType string) (*dto.AvailabilityResponse, error) {
				return nil, domain.ErrInvalidDate
			},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "INVALID_REQUEST",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupBookingRouter(&MockBookingService{}, &MockAvailabilityService{GetAvailabilityFunc: tt.mockFunc})

			req := httptest.NewRequest(http.MethodGet, "/api/availability"+tt.query, nil)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			if tt.expectedCode != "" {
				var response dto.ErrorResponse
				if err := json.Unmarshal(w.Body.Bytes(), &response); err == nil {
					if response.Code != tt.expectedCode {
						t.Errorf("expected code %s, got %s", tt.expectedCode, response.Code)
					}
				}
			}
		})
	}
}

func TestBookingHandler_GetQuote(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		mockFunc       func(ctx context.Context, turfType string, slotCount int) (*dto.QuoteResponse, error)
		expectedStatus int
		expectedCode   string
	}{
		{
			name:  "two slot quote",
			query: "?turf_type=football-full&slots=2",
			mockFunc: func(ctx context.Context, turfType string, slotCount int) (*dto.QuoteResponse, error) {
				if turfType != "football-full" || slotCount != 2 {
					t.Errorf("expected football-full/2, got %s/%d", turfType, slotCount)
				}
				return &dto.QuoteResponse{TurfType: turfType, SlotCount: slotCount, Total: 2000, Advance: 600, Remaining: 1400}, nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "non-numeric slots",
			query:          "?turf_type=cricket&slots=two",
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "INVALID_REQUEST",
		},
		{
			name:           "negative slots",
			query:          "?turf_type=cricket&slots=-1",
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "INVALID_REQUEST",
		},
		{
			name:  "unknown turf",
			query: "?turf_type=tennis&slots=1",
			mockFunc: func(ctx context.Context, turfType string, slotCount int) (*dto.QuoteResponse, error) {
				return nil, domain.ErrUnknownTurfType
			},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "INVALID_REQUEST",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupBookingRouter(&MockBookingService{QuoteFunc: tt.mockFunc}, &MockAvailabilityService{})

			req := httptest.NewRequest(http.MethodGet, "/api/pricing/quote"+tt.query, nil)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			if tt.expectedCode != "" {
				var response dto.ErrorResponse
				if err := json.Unmarshal(w.Body.Bytes(), &response); err == nil {
					if response.Code != tt.expectedCode {
						t.Errorf("expected code %s, got %s", tt.expectedCode, response.Code)
					}
				}
			}
		})
	}
}

func TestBookingHandler_HandleError(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedCode   string
	}{
		{name: "not found", err: domain.ErrBookingNotFound, expectedStatus: http.StatusNotFound, expectedCode: "NOT_FOUND"},
		{name: "slot unavailable", err: domain.ErrSlotUnavailable, expectedStatus: http.StatusConflict, expectedCode: "SLOT_UNAVAILABLE"},
		{name: "already confirmed", err: domain.ErrAlreadyConfirmed, expectedStatus: http.StatusConflict, expectedCode: "ALREADY_CONFIRMED"},
		{name: "cancelled", err: domain.ErrBookingCancelled, expectedStatus: http.StatusConflict, expectedCode: "BOOKING_CANCELLED"},
		{name: "payment timed out", err: domain.ErrPaymentTimedOut, expectedStatus: http.StatusGone, expectedCode: "PAYMENT_TIMED_OUT"},
		{name: "payment failed", err: domain.ErrPaymentFailed, expectedStatus: http.StatusPaymentRequired, expectedCode: "PAYMENT_FAILED"},
		{name: "invalid booking id", err: domain.ErrInvalidBookingID, expectedStatus: http.StatusBadRequest, expectedCode: "INVALID_REQUEST"},
		{name: "invalid slot", err: domain.ErrInvalidSlot, expectedStatus: http.StatusBadRequest, expectedCode: "INVALID_REQUEST"},
		{name: "unexpected error", err: context.DeadlineExceeded, expectedStatus: http.StatusInternalServerError, expectedCode: "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockBookingService{
				GetBookingFunc: func(ctx context.Context, bookingID string) (*dto.BookingResponse, error) {
					return nil, tt.err
				},
			}
			router := setupBookingRouter(mockService, &MockAvailabilityService{})

			req := httptest.NewRequest(http.MethodGet, "/api/bookings/test-id", nil)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			var response dto.ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
				t.Fatalf("failed to unmarshal response: %v", err)
			}
			if response.Code != tt.expectedCode {
				t.Errorf("expected code %s, got %s", tt.expectedCode, response.Code)
			}
		})
	}
}
