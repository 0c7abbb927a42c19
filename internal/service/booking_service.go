package service

import (
	"context"

	"github.com/Svg70/crypto-booking/internal/domain"
	"github.com/Svg70/crypto-booking/internal/dto"
	"github.com/Svg70/crypto-booking/internal/repository"
)

// BookingService exposes the cumulative ticket ledger
type BookingService interface {
	// GetBooking returns the tickets a user holds for an event. A pair
	// that never settled reads as zero, not as an error.
	GetBooking(ctx context.Context, eventID domain.EventID, userID domain.UserID) (*dto.BookingResponse, error)
}

// bookingService implements BookingService
type bookingService struct {
	bookings repository.BookingRepository
}

// NewBookingService creates a new booking service
func NewBookingService(bookings repository.BookingRepository) BookingService {
	return &bookingService{bookings: bookings}
}

func (s *bookingService) GetBooking(ctx context.Context, eventID domain.EventID, userID domain.UserID) (*dto.BookingResponse, error) {
	if eventID == "" {
		return nil, domain.ErrInvalidEventID
	}
	if userID == "" {
		return nil, domain.ErrInvalidUserID
	}

	booking, err := s.bookings.GetBooking(ctx, eventID, userID)
	if err != nil {
		return nil, err
	}
	return &dto.BookingResponse{
		EventID: string(booking.EventID),
		UserID:  string(booking.UserID),
		Tickets: booking.Tickets,
	}, nil
}

// Ensure bookingService implements BookingService
var _ BookingService = (*bookingService)(nil)
