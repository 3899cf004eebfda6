package gateway

import (
	"context"
	"net/http"

	"github.com/rtb-ict/devicehub/internal/model"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is the backend's answer to a credentials check. A successful
// login issues an OTP challenge, not a session: Token is normally empty here.
type LoginResponse struct {
	Message string      `json:"message"`
	Token   string      `json:"token,omitempty"`
	User    *model.User `json:"user,omitempty"`
}

// Login verifies credentials. Success means the backend accepted them and
// emailed an OTP; it does not authenticate the caller.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	var out LoginResponse
	err := c.do(ctx, http.MethodPost, "/users/login", loginRequest{Email: email, Password: password}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

type otpRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

// VerifyOTPResponse carries the issued session credentials. Both fields must
// be present for the response to be usable; the caller enforces that.
type VerifyOTPResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// VerifyOTP exchanges a login OTP for a token and profile.
func (c *Client) VerifyOTP(ctx context.Context, email, otp string) (*VerifyOTPResponse, error) {
	var out VerifyOTPResponse
	err := c.do(ctx, http.MethodPost, "/users/verify-otp", otpRequest{Email: email, OTP: otp}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

type messageResponse struct {
	Message string `json:"message"`
}

// ForgotPassword asks the backend to email a password-reset OTP.
func (c *Client) ForgotPassword(ctx context.Context, email string) (string, error) {
	var out messageResponse
	err := c.do(ctx, http.MethodPost, "/users/forgot-password", map[string]string{"email": email}, &out)
	if err != nil {
		return "", err
	}
	return out.Message, nil
}

// VerifyResetOTP confirms a password-reset OTP without consuming it; the same
// OTP must accompany the subsequent ResetPassword call.
func (c *Client) VerifyResetOTP(ctx context.Context, email, otp string) (string, error) {
	var out messageResponse
	err := c.do(ctx, http.MethodPost, "/users/verify-reset-otp", otpRequest{Email: email, OTP: otp}, &out)
	if err != nil {
		return "", err
	}
	return out.Message, nil
}

type resetPasswordRequest struct {
	Email       string `json:"email"`
	OTP         string `json:"otp"`
	NewPassword string `json:"newPassword"`
}

// ResetPassword sets a new password using a previously verified OTP.
func (c *Client) ResetPassword(ctx context.Context, email, otp, newPassword string) (string, error) {
	var out messageResponse
	err := c.do(ctx, http.MethodPost, "/users/reset-password", resetPasswordRequest{
		Email:       email,
		OTP:         otp,
		NewPassword: newPassword,
	}, &out)
	if err != nil {
		return "", err
	}
	return out.Message, nil
}
