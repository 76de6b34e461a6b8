package http

import "time"

// Request payloads. Validation rules live on the structs; handlers run them
// through a shared validator before touching the services.

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"omitempty,oneof=customer rider shop_owner"`
}

type userStatusRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8"`
}

type createUserRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required,oneof=admin manager shop_owner rider customer"`
}

type updateProfileRequest struct {
	Username string `json:"username" validate:"omitempty,min=3,max=50"`
	Email    string `json:"email" validate:"omitempty,email"`
}

type updateUserRequest struct {
	Username string `json:"username" validate:"omitempty,min=3,max=50"`
	Email    string `json:"email" validate:"omitempty,email"`
	Role     string `json:"role" validate:"omitempty,oneof=admin manager shop_owner rider customer"`
}

type createRiderRequest struct {
	Name             string     `json:"name" validate:"required"`
	PhoneNumber      string     `json:"phoneNumber" validate:"required"`
	Township         string     `json:"township" validate:"required"`
	FullAddress      string     `json:"fullAddress" validate:"required"`
	Email            string     `json:"email" validate:"required,email"`
	Password         string     `json:"password" validate:"required,min=8"`
	NRC              string     `json:"nrc"`
	JoinedDate       *time.Time `json:"joinedDate"`
	EmergencyContact string     `json:"emergencyContact"`
	VehicleType      string     `json:"vehicleType"`
}

type updateRiderRequest struct {
	Name             string `json:"name"`
	PhoneNumber      string `json:"phoneNumber"`
	Township         string `json:"township"`
	FullAddress      string `json:"fullAddress"`
	NRC              string `json:"nrc"`
	EmergencyContact string `json:"emergencyContact"`
	VehicleType      string `json:"vehicleType"`
	Email            string `json:"email" validate:"omitempty,email"`
}

type shopRequest struct {
	OwnerID     string `json:"ownerId"`
	Name        string `json:"name" validate:"required"`
	PhoneNumber string `json:"phoneNumber" validate:"required"`
	Address     string `json:"address" validate:"required"`
	Township    string `json:"township"`
	Email       string `json:"email" validate:"omitempty,email"`
}

type createDeliveryRequest struct {
	RiderID         string     `json:"riderId"`
	ShopID          string     `json:"shopId"`
	PickupAddress   string     `json:"pickupAddress" validate:"required"`
	DeliveryAddress string     `json:"deliveryAddress" validate:"required"`
	ScheduledTime   *time.Time `json:"scheduledTime"`
	Notes           string     `json:"notes"`
	Price           float64    `json:"price" validate:"gte=0"`
	PaymentMethod   string     `json:"paymentMethod"`
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type updatePaymentRequest struct {
	PaymentStatus string `json:"paymentStatus" validate:"required,oneof=pending paid failed"`
	PaymentMethod string `json:"paymentMethod"`
}

type assignRiderRequest struct {
	RiderID string `json:"riderId" validate:"required"`
}
