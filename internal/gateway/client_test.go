package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rtb-ict/devicehub/internal/model"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return New(Config{BaseURL: server.URL})
}

func TestBearerTokenInjected(t *testing.T) {
	var gotAuth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(DeviceList{})
	})

	if _, err := c.WithToken("t-123").ListDevices(context.Background(), DeviceListParams{}); err != nil {
		t.Fatalf("list devices: %v", err)
	}
	if gotAuth != "Bearer t-123" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "Bearer t-123")
	}
}

func TestNoTokenNoAuthHeader(t *testing.T) {
	var gotAuth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(LoginResponse{Message: "OTP sent"})
	})

	if _, err := c.Login(context.Background(), "u@rtb.gov.rw", "pw"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if gotAuth != "" {
		t.Errorf("expected no Authorization header, got %q", gotAuth)
	}
}

func TestErrorEnvelopeMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"message": "Invalid credentials"})
	})

	_, err := c.Login(context.Background(), "u@rtb.gov.rw", "wrong")
	if err == nil {
		t.Fatal("expected error")
	}
	ge, ok := err.(*Error)
	if !ok {
		t.Fatalf("error type = %T, want *Error", err)
	}
	if ge.Message != "Invalid credentials" {
		t.Errorf("message = %q, want %q", ge.Message, "Invalid credentials")
	}
	if ge.Kind != KindAuth {
		t.Errorf("kind = %v, want KindAuth", ge.Kind)
	}
	if !IsAuth(err) {
		t.Error("IsAuth = false, want true")
	}
}

func TestErrorFallbackMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("not json"))
	})

	_, err := c.Analytics(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Error() != "HTTP 500" {
		t.Errorf("message = %q, want %q", err.Error(), "HTTP 500")
	}
}

func TestNetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // nothing listening anymore

	c := New(Config{BaseURL: server.URL})
	_, err := c.Analytics(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsNetwork(err) {
		t.Errorf("expected network error, got %v", err)
	}
	ge := err.(*Error)
	if ge.Status != 0 {
		t.Errorf("status = %d, want 0", ge.Status)
	}
	if ge.Message == "" {
		t.Error("expected underlying error message")
	}
}

func TestDeviceListParamsEncoding(t *testing.T) {
	var gotQuery string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		json.NewEncoder(w).Encode(DeviceList{})
	})

	_, err := c.ListDevices(context.Background(), DeviceListParams{
		Page:     2,
		Limit:    50,
		Status:   "active",
		SchoolID: 7,
		Search:   "dell",
	})
	if err != nil {
		t.Fatalf("list devices: %v", err)
	}
	for _, want := range []string{"page=2", "limit=50", "status=active", "schoolId=7", "search=dell"} {
		if !strings.Contains(gotQuery, want) {
			t.Errorf("query %q missing %q", gotQuery, want)
		}
	}
	if strings.Contains(gotQuery, "condition=") {
		t.Errorf("query %q should omit zero-value params", gotQuery)
	}
}

func TestBulkImportMultipart(t *testing.T) {
	var gotContentType string
	var gotFile string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("form file: %v", err)
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		defer file.Close()
		gotFile = header.Filename
		json.NewEncoder(w).Encode(BulkImportResult{Imported: 12, Failed: 3})
	})

	result, err := c.WithToken("t").BulkImportDevices(context.Background(), "devices.csv", strings.NewReader("serial,model\nA1,X"))
	if err != nil {
		t.Fatalf("bulk import: %v", err)
	}
	if !strings.HasPrefix(gotContentType, "multipart/form-data") {
		t.Errorf("Content-Type = %q, want multipart/form-data", gotContentType)
	}
	if gotFile != "devices.csv" {
		t.Errorf("filename = %q, want %q", gotFile, "devices.csv")
	}
	if result.Imported != 12 || result.Failed != 3 {
		t.Errorf("result = %+v, want imported 12, failed 3", result)
	}
}

func TestVerifyOTPDecodesTokenAndUser(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/verify-otp" {
			t.Errorf("path = %q, want /users/verify-otp", r.URL.Path)
		}
		var req otpRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Email != "u@rtb.gov.rw" || req.OTP != "123456" {
			t.Errorf("request = %+v", req)
		}
		json.NewEncoder(w).Encode(VerifyOTPResponse{
			Token: "t1",
			User:  &model.User{ID: 1, Email: "u@rtb.gov.rw", Role: model.RoleAdmin},
		})
	})

	resp, err := c.VerifyOTP(context.Background(), "u@rtb.gov.rw", "123456")
	if err != nil {
		t.Fatalf("verify otp: %v", err)
	}
	if resp.Token != "t1" {
		t.Errorf("token = %q, want %q", resp.Token, "t1")
	}
	if resp.User == nil || resp.User.Role != model.RoleAdmin {
		t.Errorf("user = %+v, want admin", resp.User)
	}
}

func TestResetPasswordBody(t *testing.T) {
	var gotBody resetPasswordRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]string{"message": "Password updated"})
	})

	msg, err := c.ResetPassword(context.Background(), "a@b.com", "000111", "s3cret")
	if err != nil {
		t.Fatalf("reset password: %v", err)
	}
	if msg != "Password updated" {
		t.Errorf("message = %q, want %q", msg, "Password updated")
	}
	if gotBody.Email != "a@b.com" || gotBody.OTP != "000111" || gotBody.NewPassword != "s3cret" {
		t.Errorf("body = %+v", gotBody)
	}
}

func TestDeleteSendsNoBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("method = %q, want DELETE", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "" {
			t.Errorf("Content-Type = %q, want empty", ct)
		}
		w.WriteHeader(http.StatusNoContent)
	})

	if err := c.WithToken("t").DeleteDevice(context.Background(), 42); err != nil {
		t.Fatalf("delete device: %v", err)
	}
}
