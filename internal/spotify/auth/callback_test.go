package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"
)

func startCallbackServer(t *testing.T, state string) *CallbackServer {
	t.Helper()

	server, err := NewCallbackServer("http://127.0.0.1:0/callback", state)
	if err != nil {
		t.Fatalf("NewCallbackServer() error = %v", err)
	}
	server.Start()
	t.Cleanup(func() { _ = server.Shutdown(context.Background()) })

	if server.Port() == 0 {
		t.Fatal("Server port should not be 0 after starting")
	}
	return server
}

func hitCallback(t *testing.T, port int, query string) {
	t.Helper()

	go func() {
		time.Sleep(50 * time.Millisecond)
		resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/callback?%s", port, query))
		if err != nil {
			t.Errorf("Failed to make callback request: %v", err)
			return
		}
		_ = resp.Body.Close()
	}()
}

func TestCallbackServer(t *testing.T) {
	server := startCallbackServer(t, "test_state")
	hitCallback(t, server.Port(), "code=test_code&state=test_state")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	code, err := server.Wait(ctx)
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if code != "test_code" {
		t.Errorf("code = %q, want %q", code, "test_code")
	}
}

func TestCallbackServerError(t *testing.T) {
	server := startCallbackServer(t, "test_state")
	hitCallback(t, server.Port(), "error=access_denied&state=test_state")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if _, err := server.Wait(ctx); err == nil {
		t.Fatal("Wait() expected error for denied authorization")
	}
}

func TestCallbackServerStateMismatch(t *testing.T) {
	server := startCallbackServer(t, "expected")
	hitCallback(t, server.Port(), "code=test_code&state=forged")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := server.Wait(ctx)
	if !errors.Is(err, ErrStateMismatch) {
		t.Fatalf("Wait() error = %v, want ErrStateMismatch", err)
	}
}

func TestCallbackServerTimeout(t *testing.T) {
	server := startCallbackServer(t, "state")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := server.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Wait() error = %v, want context.DeadlineExceeded", err)
	}
}
