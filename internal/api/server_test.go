package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mwatts/notedeck/internal/auth"
	"github.com/mwatts/notedeck/internal/repository/memory"
	"github.com/mwatts/notedeck/internal/service"
)

const testSecret = "test-secret"

func newTestServerNotReady() *Server {
	l := logrus.New()
	l.SetOutput(io.Discard)

	tokens := auth.NewTokenManager(testSecret, time.Hour)
	svc := service.New(l, tokens,
		memory.NewUserRepository(),
		memory.NewNoteRepository(),
		memory.NewCommentRepository(),
	)
	return NewServer(svc, tokens, l)
}

func newTestServer() *Server {
	s := newTestServerNotReady()
	s.SetReady()
	return s
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response %q: %v", rr.Body.String(), err)
	}
	return body
}

// doJSON performs a request against the full router and decodes the envelope.
func doJSON(t *testing.T, s *Server, method, path, token string, payload any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("failed to marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	return rr, decodeBody(t, rr)
}

// registerUser registers an account and returns the user object and token.
func registerUser(t *testing.T, s *Server, username string) (map[string]any, string) {
	t.Helper()

	rr, body := doJSON(t, s, "POST", "/api/auth/register", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "hunter2",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("register %q: status %d body %v", username, rr.Code, body)
	}
	return body["user"].(map[string]any), body["token"].(string)
}

func TestRegisterEndpoint(t *testing.T) {
	t.Run("successful registration", func(t *testing.T) {
		s := newTestServer()

		rr, body := doJSON(t, s, "POST", "/api/auth/register", "", map[string]string{
			"username": "alice", "email": "alice@example.com", "password": "hunter2",
		})
		if rr.Code != http.StatusCreated {
			t.Fatalf("status: got %d want %d", rr.Code, http.StatusCreated)
		}
		if body["success"] != true || body["token"] == nil {
			t.Errorf("unexpected envelope: %v", body)
		}
		user := body["user"].(map[string]any)
		if user["username"] != "alice" {
			t.Errorf("username: got %v", user["username"])
		}
		if _, leaked := user["password_hash"]; leaked {
			t.Error("password hash leaked in response")
		}
	})

	t.Run("duplicate username", func(t *testing.T) {
		s := newTestServer()
		registerUser(t, s, "alice")

		rr, body := doJSON(t, s, "POST", "/api/auth/register", "", map[string]string{
			"username": "alice", "email": "other@example.com", "password": "pw",
		})
		if rr.Code != http.StatusBadRequest {
			t.Errorf("status: got %d want %d", rr.Code, http.StatusBadRequest)
		}
		if body["error"] != "username already taken" {
			t.Errorf("error: got %v", body["error"])
		}
	})

	t.Run("malformed JSON", func(t *testing.T) {
		s := newTestServer()

		req := httptest.NewRequest("POST", "/api/auth/register", bytes.NewReader([]byte("{not json")))
		rr := httptest.NewRecorder()
		s.Handler().ServeHTTP(rr, req)

		if rr.Code != http.StatusBadRequest {
			t.Errorf("status: got %d want %d", rr.Code, http.StatusBadRequest)
		}
	})
}

func TestLoginEndpoint(t *testing.T) {
	s := newTestServer()
	registerUser(t, s, "alice")

	t.Run("valid credentials", func(t *testing.T) {
		rr, body := doJSON(t, s, "POST", "/api/auth/login", "", map[string]string{
			"username": "alice", "password": "hunter2",
		})
		if rr.Code != http.StatusOK {
			t.Fatalf("status: got %d want %d", rr.Code, http.StatusOK)
		}
		if body["token"] == nil || body["user"] == nil {
			t.Errorf("expected token and user in envelope, got %v", body)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		rr, body := doJSON(t, s, "POST", "/api/auth/login", "", map[string]string{
			"username": "alice", "password": "wrong",
		})
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("status: got %d want %d", rr.Code, http.StatusUnauthorized)
		}
		if body["error"] != "invalid username or password" {
			t.Errorf("error: got %v", body["error"])
		}
	})

	t.Run("unknown user gets the same answer", func(t *testing.T) {
		rr, body := doJSON(t, s, "POST", "/api/auth/login", "", map[string]string{
			"username": "nobody", "password": "hunter2",
		})
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("status: got %d want %d", rr.Code, http.StatusUnauthorized)
		}
		if body["error"] != "invalid username or password" {
			t.Errorf("error: got %v", body["error"])
		}
	})
}

func TestNotesEndpoints(t *testing.T) {
	t.Run("owner stamped from token, not payload", func(t *testing.T) {
		s := newTestServer()
		user, token := registerUser(t, s, "alice")

		rr, body := doJSON(t, s, "POST", "/api/notes", token, map[string]string{
			"title":   "T",
			"body":    "B",
			"user_id": "attacker-controlled",
			"author":  "mallory",
		})
		if rr.Code != http.StatusCreated {
			t.Fatalf("status: got %d body %v", rr.Code, body)
		}
		note := body["data"].(map[string]any)
		if note["user_id"] != user["id"] {
			t.Errorf("user_id: got %v want caller id %v", note["user_id"], user["id"])
		}
		if note["author"] != "alice" {
			t.Errorf("author: got %v want %v", note["author"], "alice")
		}
	})

	t.Run("blank title rejected", func(t *testing.T) {
		s := newTestServer()
		_, token := registerUser(t, s, "alice")

		rr, body := doJSON(t, s, "POST", "/api/notes", token, map[string]string{"title": "  "})
		if rr.Code != http.StatusBadRequest {
			t.Errorf("status: got %d want %d", rr.Code, http.StatusBadRequest)
		}
		if body["error"] != "title is required" {
			t.Errorf("error: got %v", body["error"])
		}
	})

	t.Run("update cannot move ownership", func(t *testing.T) {
		s := newTestServer()
		user, token := registerUser(t, s, "alice")

		_, created := doJSON(t, s, "POST", "/api/notes", token, map[string]string{"title": "T", "body": "B"})
		noteID := created["data"].(map[string]any)["id"].(string)

		rr, body := doJSON(t, s, "PATCH", "/api/notes/"+noteID, token, map[string]string{
			"body":    "B2",
			"user_id": "attacker-controlled",
			"author":  "mallory",
		})
		if rr.Code != http.StatusOK {
			t.Fatalf("status: got %d body %v", rr.Code, body)
		}
		note := body["data"].(map[string]any)
		if note["user_id"] != user["id"] || note["author"] != "alice" {
			t.Errorf("ownership fields changed by update payload: %v", note)
		}
		if note["body"] != "B2" || note["title"] != "T" {
			t.Errorf("unexpected note after update: %v", note)
		}
	})

	t.Run("cross-user access is not found", func(t *testing.T) {
		s := newTestServer()
		_, aliceToken := registerUser(t, s, "alice")
		_, bobToken := registerUser(t, s, "bob")

		_, created := doJSON(t, s, "POST", "/api/notes", aliceToken, map[string]string{"title": "secret"})
		noteID := created["data"].(map[string]any)["id"].(string)

		rr, body := doJSON(t, s, "GET", "/api/notes/"+noteID, bobToken, nil)
		if rr.Code != http.StatusNotFound {
			t.Errorf("status: got %d want %d", rr.Code, http.StatusNotFound)
		}
		// Same message as a genuinely missing note: existence must not leak.
		if body["error"] != "Note not found" {
			t.Errorf("error: got %v", body["error"])
		}

		rr, body2 := doJSON(t, s, "GET", "/api/notes/does-not-exist", bobToken, nil)
		if rr.Code != http.StatusNotFound || body2["error"] != body["error"] {
			t.Errorf("missing and foreign notes are distinguishable: %v vs %v", body2["error"], body["error"])
		}
	})
}

func TestEndToEndFlow(t *testing.T) {
	s := newTestServer()

	// Register and log in.
	registerUser(t, s, "alice")
	rr, body := doJSON(t, s, "POST", "/api/auth/login", "", map[string]string{
		"username": "alice", "password": "hunter2",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("login: status %d body %v", rr.Code, body)
	}
	token := body["token"].(string)

	// Create a note.
	rr, body = doJSON(t, s, "POST", "/api/notes", token, map[string]string{"title": "T", "body": "B"})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create note: status %d body %v", rr.Code, body)
	}
	noteID := body["data"].(map[string]any)["id"].(string)

	// Update the body; the title stays.
	rr, body = doJSON(t, s, "PATCH", "/api/notes/"+noteID, token, map[string]string{"body": "B2"})
	if rr.Code != http.StatusOK {
		t.Fatalf("update note: status %d body %v", rr.Code, body)
	}

	rr, body = doJSON(t, s, "GET", "/api/notes/"+noteID, token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("get note: status %d body %v", rr.Code, body)
	}
	note := body["data"].(map[string]any)
	if note["title"] != "T" || note["body"] != "B2" {
		t.Fatalf("note after update: %v", note)
	}

	// Comment and list.
	rr, body = doJSON(t, s, "POST", "/api/notes/"+noteID+"/comments", token, map[string]string{"content": "hello"})
	if rr.Code != http.StatusCreated {
		t.Fatalf("add comment: status %d body %v", rr.Code, body)
	}

	rr, body = doJSON(t, s, "GET", "/api/notes/"+noteID+"/comments?sort=oldest&page=1&limit=10", token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("list comments: status %d body %v", rr.Code, body)
	}
	comments := body["data"].([]any)
	if len(comments) != 1 {
		t.Fatalf("expected exactly one comment, got %d", len(comments))
	}
	comment := comments[0].(map[string]any)
	if comment["content"] != "hello" || comment["author"] != "alice" {
		t.Errorf("unexpected comment: %v", comment)
	}
	meta := body["meta"].(map[string]any)
	if meta["total"] != float64(1) || meta["totalPages"] != float64(1) {
		t.Errorf("unexpected meta: %v", meta)
	}

	// Delete the note; note and comments are both gone.
	rr, body = doJSON(t, s, "DELETE", "/api/notes/"+noteID, token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("delete note: status %d body %v", rr.Code, body)
	}
	if body["message"] != "Note deleted successfully" {
		t.Errorf("message: got %v", body["message"])
	}

	rr, _ = doJSON(t, s, "GET", "/api/notes/"+noteID, token, nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("get deleted note: status %d want %d", rr.Code, http.StatusNotFound)
	}

	rr, _ = doJSON(t, s, "GET", "/api/notes/"+noteID+"/comments", token, nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("list comments of deleted note: status %d want %d", rr.Code, http.StatusNotFound)
	}
}
