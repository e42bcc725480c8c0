package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/nikolajIvanov/langchain-crash-course/message"
)

func TestNew_CreatesDirectory(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "sessions")
	if _, err := New(dir); err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		t.Error("Directory should have been created")
	}
}

func TestStore_AppendAndLoad(t *testing.T) {
	t.Parallel()

	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	ctx := context.Background()

	turns := []message.Turn{
		message.System("You are a helpful assistant."),
		message.User("what time is it?"),
		message.Assistant("", message.ToolCall{ID: "c1", Name: "get_system_time", Arguments: `{}`}),
		message.ToolResult("c1", "get_system_time", "2024-01-01 10:00:00"),
		message.Assistant("It is 10 am."),
	}
	for _, turn := range turns {
		if err := s.Append(ctx, "user/1", turn); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	got, err := s.Load(ctx, "user/1")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(got) != len(turns) {
		t.Fatalf("expected %d turns, got %d", len(turns), len(got))
	}
	if got[2].ToolCalls[0].Name != "get_system_time" {
		t.Errorf("tool call not preserved: %+v", got[2])
	}
	if got[3].ToolCallID != "c1" {
		t.Errorf("tool call id not preserved: %+v", got[3])
	}

	entries, _ := os.ReadDir(s.dir)
	if len(entries) != 1 || entries[0].Name() != "user%2F1.jsonl" {
		t.Errorf("unexpected files: %v", entries)
	}
}

func TestStore_LoadMissingAndClear(t *testing.T) {
	t.Parallel()

	s, _ := New(t.TempDir())
	ctx := context.Background()

	turns, err := s.Load(ctx, "nobody")
	if err != nil || len(turns) != 0 {
		t.Fatalf("expected empty history, got %v, %v", turns, err)
	}

	_ = s.Append(ctx, "x", message.User("hi"))
	if err := s.Clear(ctx, "x"); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if err := s.Clear(ctx, "x"); err != nil {
		t.Fatalf("second Clear failed: %v", err)
	}
	turns, _ = s.Load(ctx, "x")
	if len(turns) != 0 {
		t.Errorf("expected cleared session, got %d turns", len(turns))
	}
}

func TestStore_CorruptFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s, _ := New(dir)
	if err := os.WriteFile(filepath.Join(dir, "bad.jsonl"), []byte("{not json}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Load(context.Background(), "bad"); err == nil {
		t.Error("expected decode error")
	}
}

func TestStore_EmptySessionID(t *testing.T) {
	t.Parallel()

	s, _ := New(t.TempDir())
	if err := s.Append(context.Background(), "", message.User("x")); err == nil {
		t.Error("expected error for empty session id")
	}
}
