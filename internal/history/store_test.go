package history_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"v2s/internal/history"
)

func openStore(t *testing.T) *history.Store {
	t.Helper()
	store, err := history.Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open history: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close history: %v", err)
		}
	})
	return store
}

func TestRecordAndList(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	entries := []history.Entry{
		{JobID: "j1", SourcePath: "/media/a.mp4", DisplayName: "a", Kind: "video", SavePath: "/media/a_mp4_subs.srt", Format: "srt", Model: "standard", Language: "auto", Preset: "standard", WordCount: 120, Confidence: 91, Duration: "10:00", FinishedAt: base},
		{JobID: "j2", SourcePath: "/media/b.mp3", DisplayName: "b", Kind: "audio", SavePath: "/media/b_mp3_subs.srt", Format: "srt", Model: "studio", Language: "en", Preset: "tiktok", WordCount: 55, Confidence: 88, Duration: "03:25", FinishedAt: base.Add(time.Hour)},
	}
	for _, entry := range entries {
		if err := store.Record(ctx, entry); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	listed, err := store.List(ctx, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(listed))
	}
	if listed[0].JobID != "j2" || listed[1].JobID != "j1" {
		t.Fatalf("expected newest first, got %s then %s", listed[0].JobID, listed[1].JobID)
	}
	if listed[0].WordCount != 55 || listed[0].Preset != "tiktok" {
		t.Fatalf("unexpected entry: %+v", listed[0])
	}
	if !listed[1].FinishedAt.Equal(base) {
		t.Fatalf("timestamp roundtrip failed: %v", listed[1].FinishedAt)
	}
}

func TestListHonorsLimit(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		entry := history.Entry{
			JobID:      "job",
			SourcePath: "/media/a.mp4",
			SavePath:   "/media/a_mp4_subs.srt",
			FinishedAt: time.Now().UTC().Add(time.Duration(i) * time.Minute),
		}
		if err := store.Record(ctx, entry); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	listed, err := store.List(ctx, 3)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(listed))
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	first, err := history.Open(path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	if err := first.Record(context.Background(), history.Entry{JobID: "j1", SourcePath: "/a", SavePath: "/a.srt"}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	second, err := history.Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer second.Close()
	listed, err := second.List(context.Background(), 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("expected entry to survive reopen, got %d", len(listed))
	}
}
