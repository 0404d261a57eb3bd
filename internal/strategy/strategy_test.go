package strategy

import (
	"reflect"
	"testing"

	"github.com/fenilsonani/desk-triage/internal/config"
)

func TestNormalizeAction(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Action
	}{
		{"delete passes through", "delete", ActionDelete},
		{"move passes through", "move", ActionMove},
		{"keep passes through", "keep", ActionKeep},
		{"unknown becomes keep", "archive", ActionKeep},
		{"empty becomes keep", "", ActionKeep},
		{"case sensitive", "Delete", ActionKeep},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeAction(tt.raw); got != tt.want {
				t.Errorf("NormalizeAction(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestCategoryIndexMerge(t *testing.T) {
	index := CategoryIndex{
		"文档": {"a.pdf"},
	}

	index.Merge(CategoryIndex{
		"文档": {"b.docx"},
		"图片": {"c.jpg"},
	})

	want := CategoryIndex{
		"文档": {"a.pdf", "b.docx"},
		"图片": {"c.jpg"},
	}
	if !reflect.DeepEqual(index, want) {
		t.Errorf("merged index = %v, want %v", index, want)
	}
}

func TestCategoryIndexMergeEmptyIsNoop(t *testing.T) {
	index := CategoryIndex{
		"文档": {"a.pdf"},
	}

	index.Merge(CategoryIndex{})

	want := CategoryIndex{"文档": {"a.pdf"}}
	if !reflect.DeepEqual(index, want) {
		t.Errorf("index after empty merge = %v, want %v", index, want)
	}
}

func TestCategoryIndexLabelsSorted(t *testing.T) {
	index := CategoryIndex{
		"视频": {"a.mp4"},
		"图片": {"b.jpg"},
		"文档": {"c.pdf"},
	}

	labels := index.Labels()
	want := []string{"图片", "文档", "视频"}
	if !reflect.DeepEqual(labels, want) {
		t.Errorf("Labels() = %v, want %v", labels, want)
	}
}

func TestRegistryKnownProviders(t *testing.T) {
	cfg := &config.StrategyConfig{}

	for _, name := range []string{"rules", "remote"} {
		s, err := New(name, cfg)
		if err != nil {
			t.Fatalf("New(%q) error: %v", name, err)
		}
		if s.Name() != name {
			t.Errorf("New(%q).Name() = %q", name, s.Name())
		}
	}
}

func TestRegistryUnknownProvider(t *testing.T) {
	if _, err := New("telepathy", &config.StrategyConfig{}); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestRegistryCustomProvider(t *testing.T) {
	Register("custom-test", func(cfg *config.StrategyConfig) Strategy {
		return NewRules(cfg.Rules)
	})

	s, err := New("custom-test", &config.StrategyConfig{})
	if err != nil {
		t.Fatalf("New(custom-test) error: %v", err)
	}
	if s == nil {
		t.Fatal("expected strategy instance")
	}
}

func TestErrorUnwrap(t *testing.T) {
	err := &Error{Strategy: "remote", Cause: ErrAuth}

	if !IsAuthError(err) {
		t.Error("IsAuthError should see through the strategy error wrapper")
	}
}
