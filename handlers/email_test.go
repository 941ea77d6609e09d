package handlers

import (
	"fmt"
	"net/http"
	"testing"
)

func TestSendOrderEmailSuccess(t *testing.T) {
	var gotTo, gotSubject, gotBody string
	router := setupEmailRouter(func(to, subject, htmlBody string) error {
		gotTo, gotSubject, gotBody = to, subject, htmlBody
		return nil
	})

	w := doJSON(t, router, http.MethodPost, "/api/email/order", staffToken(t), map[string]any{
		"recipientEmail": "supplier@example.com",
		"subject":        "Weekly order",
		"body":           "<p>2kg flour</p>",
	})
	expectCode(t, w, http.StatusOK, "")

	body := decodeBody(t, w)
	if body["success"] != true || body["message"] != "Email sent successfully!" {
		t.Errorf("unexpected response: %v", body)
	}
	if gotTo != "supplier@example.com" || gotSubject != "Weekly order" || gotBody != "<p>2kg flour</p>" {
		t.Errorf("transport got %q %q %q", gotTo, gotSubject, gotBody)
	}
}

func TestSendOrderEmailTransportFailureIsInternal(t *testing.T) {
	router := setupEmailRouter(func(to, subject, htmlBody string) error {
		return fmt.Errorf("smtp: 535 authentication failed")
	})

	w := doJSON(t, router, http.MethodPost, "/api/email/order", staffToken(t), map[string]any{
		"recipientEmail": "supplier@example.com",
		"subject":        "Weekly order",
		"body":           "<p>2kg flour</p>",
	})
	expectCode(t, w, http.StatusInternalServerError, "internal")

	// The raw transport error must not leak to the caller.
	if body := decodeBody(t, w); body["error"] != "Error sending email." {
		t.Errorf("expected generic message, got %v", body["error"])
	}
}

func TestSendOrderEmailValidation(t *testing.T) {
	called := false
	router := setupEmailRouter(func(to, subject, htmlBody string) error {
		called = true
		return nil
	})

	w := doJSON(t, router, http.MethodPost, "/api/email/order", staffToken(t), map[string]any{
		"recipientEmail": "not-an-email",
		"subject":        "Weekly order",
		"body":           "x",
	})
	expectCode(t, w, http.StatusBadRequest, "invalid-argument")
	if called {
		t.Error("transport must not be touched on invalid input")
	}
}

func TestSendOrderEmailRequiresAuth(t *testing.T) {
	router := setupEmailRouter(func(to, subject, htmlBody string) error { return nil })

	w := doJSON(t, router, http.MethodPost, "/api/email/order", "", map[string]any{
		"recipientEmail": "supplier@example.com",
		"subject":        "Weekly order",
		"body":           "x",
	})
	expectCode(t, w, http.StatusUnauthorized, "unauthenticated")
}
