package transcript

import (
	"context"
	"testing"

	"bonsai-cli/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestAppendAndRecent_OrderedOldestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	msgs := []model.ChatMessage{
		{Role: model.ChatRoleUser, Content: "add buy soil"},
		{Role: model.ChatRoleAssistant, Content: "Added \"buy soil\"."},
		{Role: model.ChatRoleUser, Content: "what's pending?"},
	}
	for _, m := range msgs {
		if err := s.Append(ctx, "u1", m); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	got, err := s.Recent(ctx, "u1", 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(got))
	}
	for i := range msgs {
		if got[i] != msgs[i] {
			t.Fatalf("message %d: got %+v want %+v", i, got[i], msgs[i])
		}
	}
}

func TestRecent_LimitKeepsNewestTail(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, c := range []string{"one", "two", "three", "four"} {
		if err := s.Append(ctx, "u1", model.ChatMessage{Role: model.ChatRoleUser, Content: c}); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	got, err := s.Recent(ctx, "u1", 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 2 || got[0].Content != "three" || got[1].Content != "four" {
		t.Fatalf("expected the newest two in order, got %+v", got)
	}
}

func TestTranscriptIsPerUser(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_ = s.Append(ctx, "u1", model.ChatMessage{Role: model.ChatRoleUser, Content: "mine"})
	_ = s.Append(ctx, "u2", model.ChatMessage{Role: model.ChatRoleUser, Content: "theirs"})

	got, err := s.Recent(ctx, "u1", 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 1 || got[0].Content != "mine" {
		t.Fatalf("expected only u1's messages, got %+v", got)
	}
}

func TestClear_RemovesOnlyThatUser(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_ = s.Append(ctx, "u1", model.ChatMessage{Role: model.ChatRoleUser, Content: "mine"})
	_ = s.Append(ctx, "u2", model.ChatMessage{Role: model.ChatRoleUser, Content: "theirs"})

	if err := s.Clear(ctx, "u1"); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if got, _ := s.Recent(ctx, "u1", 10); len(got) != 0 {
		t.Fatalf("expected u1 cleared, got %+v", got)
	}
	if got, _ := s.Recent(ctx, "u2", 10); len(got) != 1 {
		t.Fatalf("expected u2 untouched, got %+v", got)
	}
}
