package state

import (
	"errors"
	"testing"
)

func TestStageReplacesPreviousFile(t *testing.T) {
	sel := NewSelection(1024)

	if err := sel.Stage(&StagedFile{Name: "a.txt", Size: 10}); err != nil {
		t.Fatalf("stage a: %v", err)
	}
	if err := sel.Stage(&StagedFile{Name: "b.txt", Size: 20}); err != nil {
		t.Fatalf("stage b: %v", err)
	}
	cur := sel.Current()
	if cur == nil || cur.Name != "b.txt" {
		t.Fatalf("expected b.txt staged, got %+v", cur)
	}
}

func TestStageNilClears(t *testing.T) {
	sel := NewSelection(1024)
	_ = sel.Stage(&StagedFile{Name: "a.txt", Size: 10})

	if err := sel.Stage(nil); err != nil {
		t.Fatalf("stage nil: %v", err)
	}
	if sel.HasFile() {
		t.Fatalf("expected selection cleared")
	}
}

func TestStageRejectsOversizedFile(t *testing.T) {
	sel := NewSelection(1024)
	_ = sel.Stage(&StagedFile{Name: "small.txt", Size: 1})

	err := sel.Stage(&StagedFile{Name: "big.iso", Size: 1025})
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
	if sel.HasFile() {
		t.Fatalf("oversized file must leave nothing staged")
	}
}

func TestStageAcceptsFileAtLimit(t *testing.T) {
	sel := NewSelection(1024)
	if err := sel.Stage(&StagedFile{Name: "edge.bin", Size: 1024}); err != nil {
		t.Fatalf("expected file at limit to stage, got %v", err)
	}
}

func TestStageCopiesInput(t *testing.T) {
	sel := NewSelection(0)
	file := &StagedFile{Name: "a.txt", Size: 1}
	_ = sel.Stage(file)
	file.Name = "mutated"
	if sel.Current().Name != "a.txt" {
		t.Fatalf("selection aliased caller's struct")
	}
}

func TestLimitLabel(t *testing.T) {
	if got := LimitLabel(100 * 1024 * 1024); got != "100MB" {
		t.Fatalf("unexpected label %q", got)
	}
	if got := LimitLabel(1536 * 1024); got != "1.5MB" {
		t.Fatalf("unexpected label %q", got)
	}
}
