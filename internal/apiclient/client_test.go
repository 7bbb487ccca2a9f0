package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLoginStoresToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || r.URL.Path != "/api/login" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body["email"] != "a@b.c" || body["password"] != "secret" {
			t.Errorf("credentials not forwarded: %v", body)
		}
		json.NewEncoder(w).Encode(map[string]string{
			"message": "Login successful",
			"token":   "tok123",
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	if err := c.Login(context.Background(), "a@b.c", "secret"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if c.Token() != "tok123" {
		t.Errorf("token = %q, want tok123", c.Token())
	}
}

func TestAuthorizedCallsSendBearerToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok123" {
			t.Errorf("Authorization = %q, want Bearer tok123", got)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"user": map[string]any{"id": 1, "email": "a@b.c", "balance": "10.00000000"},
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	c.SetToken("tok123")
	p, err := c.Profile(context.Background())
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if p.Balance != "10.00000000" {
		t.Errorf("balance = %q, want 10.00000000", p.Balance)
	}
}

func TestServerErrorCarriesMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "Email already in use"})
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.Signup(context.Background(), "a@b.c", "alice", "secret")
	if err == nil {
		t.Fatal("expected error")
	}
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("error type = %T, want *Error", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", apiErr.StatusCode)
	}
	if apiErr.Error() != "Email already in use" {
		t.Errorf("message = %q, want server error string", apiErr.Error())
	}
}

func TestErrorWithoutBodyFallsBackToStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL)
	err := c.RecordSession(context.Background(), 30, 10, "easy", "win")
	if err == nil {
		t.Fatal("expected error")
	}
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("error type = %T, want *Error", err)
	}
	if apiErr.Error() != "server returned 500" {
		t.Errorf("message = %q", apiErr.Error())
	}
}

func TestSessionsDecodesList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/user/sessions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"sessions": []map[string]any{
				{"id": 2, "timeTaken": 40, "moves": 12, "difficulty": "medium", "result": "win"},
				{"id": 1, "timeTaken": 90, "moves": 30, "difficulty": "hard", "result": "lose"},
			},
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	c.SetToken("tok")
	sessions, err := c.Sessions(context.Background())
	if err != nil {
		t.Fatalf("sessions: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("got %d sessions, want 2", len(sessions))
	}
	if sessions[0].ID != 2 || sessions[0].Result != "win" {
		t.Errorf("unexpected first session: %+v", sessions[0])
	}
}
