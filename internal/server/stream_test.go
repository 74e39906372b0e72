package server

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

type fakeFrames struct {
	mu    sync.Mutex
	frame []byte
}

func (f *fakeFrames) Frame() []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.frame
}

func (f *fakeFrames) set(b []byte) {
	f.mu.Lock()
	f.frame = b
	f.mu.Unlock()
}

func TestStreamHandler_WritesParts(t *testing.T) {
	src := &fakeFrames{}
	src.set([]byte("jpeg-1"))

	h := NewStreamHandler(src)
	h.interval = 5 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/stream", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		h.ServeHTTP(rec, req)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()
	<-done

	if ct := rec.Header().Get("Content-Type"); ct != "multipart/x-mixed-replace; boundary=frame" {
		t.Errorf("Content-Type = %q", ct)
	}

	body := rec.Body.String()
	if n := strings.Count(body, "--frame"); n != 1 {
		t.Errorf("parts = %d, want 1 for an unchanged frame", n)
	}
	if !strings.Contains(body, "Content-Length: 6\r\n\r\njpeg-1\r\n") {
		t.Errorf("body = %q", body)
	}
}

func TestStreamHandler_SkipsEmptyFrames(t *testing.T) {
	src := &fakeFrames{}
	h := NewStreamHandler(src)
	h.interval = 5 * time.Millisecond

	srv := httptest.NewServer(h)
	defer srv.Close()

	go func() {
		time.Sleep(20 * time.Millisecond)
		src.set([]byte("late"))
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET error = %v", err)
	}
	defer resp.Body.Close()

	line, err := bufio.NewReader(resp.Body).ReadString('\n')
	if err != nil {
		t.Fatalf("read error = %v", err)
	}
	if line != "--frame\r\n" {
		t.Errorf("first line = %q", line)
	}
}
