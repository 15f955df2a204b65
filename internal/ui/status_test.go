package ui

import (
	"strings"
	"testing"

	"github.com/ytget/yt-batch-downloader/internal/model"
)

func TestBatchStatusText(t *testing.T) {
	l := NewLocalization()

	tests := []struct {
		name     string
		sum      model.Summary
		running  bool
		expected string
	}{
		{"running", model.Summary{Total: 5, Completed: 1, Failed: 1}, true, "Downloading: 2/5"},
		{"finished", model.Summary{Total: 5, Completed: 4, Failed: 1}, false, "4 completed, 1 failed, 0 cancelled"},
		{"idle", model.Summary{}, false, "3 of 7 selected"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := batchStatusText(l, test.sum, test.running, 3, 7); got != test.expected {
				t.Errorf("batchStatusText() = %q, expected %q", got, test.expected)
			}
		})
	}
}

func TestItemStatusText(t *testing.T) {
	tests := []struct {
		snap     model.ItemSnapshot
		contains string
	}{
		{model.ItemSnapshot{State: model.StatePending}, "Pending"},
		{model.ItemSnapshot{State: model.StateDownloading, Progress: 0.43}, "43%"},
		{model.ItemSnapshot{State: model.StateCompleted, Progress: 1}, "Completed"},
		{model.ItemSnapshot{State: model.StateFailed, Category: model.CategoryTimedOut}, "timed out"},
		{model.ItemSnapshot{State: model.StateCancelled}, "Cancelled"},
	}

	for _, test := range tests {
		if got := itemStatusText(test.snap); !strings.Contains(got, test.contains) {
			t.Errorf("itemStatusText(%s) = %q, expected it to contain %q", test.snap.State, got, test.contains)
		}
	}
}

func TestLocalization(t *testing.T) {
	l := NewLocalization()

	l.SetLanguage("ru")
	if l.GetCurrentLanguage() != "ru" {
		t.Fatalf("language = %s, expected ru", l.GetCurrentLanguage())
	}
	if got := l.Format(KeyStatusDownloading, 1, 2); got != "Загрузка: 1/2" {
		t.Errorf("Format() = %q", got)
	}

	l.SetLanguage("xx")
	if l.GetCurrentLanguage() != "ru" {
		t.Error("unknown language should be ignored")
	}

	if got := l.GetText("missing_key"); got != "missing_key" {
		t.Errorf("missing key should fall back to itself, got %q", got)
	}

	for lang := range l.GetAvailableLanguages() {
		if _, ok := l.texts[lang]; !ok {
			t.Errorf("language %s has no texts", lang)
		}
		for key := range l.texts["en"] {
			if _, ok := l.texts[lang][key]; !ok {
				t.Errorf("language %s is missing %s", lang, key)
			}
		}
	}
}

func TestSingleLine(t *testing.T) {
	if got := singleLine("  a\tb\nc\r "); got != "a b c" {
		t.Errorf("singleLine() = %q", got)
	}
}
