package handlers

import (
	"net/http"

	"ticketmate-backend/internal/models"
	"ticketmate-backend/internal/services"
)

// OTPHandler handles phone verification endpoints
type OTPHandler struct {
	otpService *services.OTPService
}

// NewOTPHandler creates a new OTP handler
func NewOTPHandler(otpService *services.OTPService) *OTPHandler {
	return &OTPHandler{otpService: otpService}
}

type sendOTPRequest struct {
	PhoneNumber string `json:"phone_number"`
	Purpose     string `json:"purpose"`
}

type verifyOTPRequest struct {
	PhoneNumber string `json:"phone_number"`
	Code        string `json:"code"`
	Purpose     string `json:"purpose"`
}

// Send handles POST /api/otp/send
func (h *OTPHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req sendOTPRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := h.otpService.SendOTP(req.PhoneNumber, models.OTPPurpose(req.Purpose))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	message := "OTP sent successfully"
	if !result.SMSDelivered {
		message = "SMS delivery failed, use the code in this response"
	}

	respondMessage(w, http.StatusOK, message, result)
}

// Resend handles POST /api/otp/resend
func (h *OTPHandler) Resend(w http.ResponseWriter, r *http.Request) {
	var req sendOTPRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := h.otpService.ResendOTP(req.PhoneNumber, models.OTPPurpose(req.Purpose))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	message := "OTP resent successfully"
	if !result.SMSDelivered {
		message = "SMS delivery failed, use the code in this response"
	}

	respondMessage(w, http.StatusOK, message, result)
}

// Verify handles POST /api/otp/verify
func (h *OTPHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req verifyOTPRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.otpService.VerifyOTP(req.PhoneNumber, req.Code, models.OTPPurpose(req.Purpose)); err != nil {
		respondServiceError(w, err)
		return
	}

	respondMessage(w, http.StatusOK, "OTP verified successfully", nil)
}
