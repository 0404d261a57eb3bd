package triage

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/fenilsonani/desk-triage/internal/scanner"
	"github.com/fenilsonani/desk-triage/internal/strategy"
)

// fakeStrategy scripts per-call outcomes for coordinator tests
type fakeStrategy struct {
	name      string
	available bool
	failTimes int
	failWith  error
	calls     int
	batches   [][]scanner.FileRecord
}

func (f *fakeStrategy) Name() string    { return f.name }
func (f *fakeStrategy) Available() bool { return f.available }

func (f *fakeStrategy) Analyze(ctx context.Context, files []scanner.FileRecord, existing []string) (*strategy.Result, error) {
	f.calls++
	f.batches = append(f.batches, files)

	if f.failTimes > 0 {
		f.failTimes--
		err := f.failWith
		if err == nil {
			err = errors.New("scripted failure")
		}
		return nil, &strategy.Error{Strategy: f.name, Cause: err}
	}

	result := strategy.EmptyResult()
	for _, file := range files {
		result.Suggestions = append(result.Suggestions, strategy.Suggestion{
			FilePath: file.Path,
			Action:   strategy.ActionKeep,
			Category: "其他",
		})
		result.Categories["其他"] = append(result.Categories["其他"], file.Name)
	}
	return result, nil
}

func makeFiles(n int) []scanner.FileRecord {
	files := make([]scanner.FileRecord, n)
	for i := range files {
		name := fmt.Sprintf("f%02d.bin", i)
		files[i] = scanner.FileRecord{
			Path:      "/d/" + name,
			Name:      name,
			Ext:       ".bin",
			IsRegular: true,
		}
	}
	return files
}

func TestRunBatchingAndProgress(t *testing.T) {
	primary := &fakeStrategy{name: "remote", available: true}
	c := New(primary, nil, 20, nil)

	type call struct {
		batch, total, suggestions int
	}
	var calls []call
	result, err := c.Run(context.Background(), makeFiles(25), func(batch, total int, r *strategy.Result) {
		calls = append(calls, call{batch, total, len(r.Suggestions)})
	})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	want := []call{{1, 2, 20}, {2, 2, 5}}
	if len(calls) != len(want) {
		t.Fatalf("got %d progress calls, want %d", len(calls), len(want))
	}
	for i, w := range want {
		if calls[i] != w {
			t.Errorf("call %d = %+v, want %+v", i, calls[i], w)
		}
	}

	if len(result.Suggestions) != 25 {
		t.Errorf("merged %d suggestions, want 25", len(result.Suggestions))
	}
	if got := result.Categories["其他"]; len(got) != 25 {
		t.Errorf("category index holds %d names, want 25", len(got))
	}
}

func TestRunPreservesInputOrder(t *testing.T) {
	primary := &fakeStrategy{name: "rules", available: true}
	c := New(primary, nil, 4, nil)

	files := makeFiles(10)
	result, err := c.Run(context.Background(), files, nil)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	for i, s := range result.Suggestions {
		if s.FilePath != files[i].Path {
			t.Fatalf("suggestion %d is for %s, want %s", i, s.FilePath, files[i].Path)
		}
	}
}

func TestRunEmptyFileList(t *testing.T) {
	c := New(&fakeStrategy{name: "rules", available: true}, nil, 10, nil)

	if _, err := c.Run(context.Background(), nil, nil); !errors.Is(err, ErrNoFiles) {
		t.Errorf("got %v, want ErrNoFiles", err)
	}
}

func TestRunUnavailableNoFallback(t *testing.T) {
	c := New(&fakeStrategy{name: "remote", available: false}, nil, 10, nil)

	if _, err := c.Run(context.Background(), makeFiles(3), nil); !errors.Is(err, ErrUnavailable) {
		t.Errorf("got %v, want ErrUnavailable", err)
	}
}

func TestRunUnavailableDegradesWholeRun(t *testing.T) {
	primary := &fakeStrategy{name: "remote", available: false}
	fallback := &fakeStrategy{name: "rules", available: true}
	c := New(primary, fallback, 10, nil)

	result, err := c.Run(context.Background(), makeFiles(5), nil)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if primary.calls != 0 {
		t.Errorf("unavailable primary was called %d times", primary.calls)
	}
	if fallback.calls != 1 {
		t.Errorf("fallback called %d times, want 1", fallback.calls)
	}
	if len(result.Suggestions) != 5 {
		t.Errorf("merged %d suggestions, want 5", len(result.Suggestions))
	}
}

func TestRunFallbackPerBatch(t *testing.T) {
	primary := &fakeStrategy{name: "remote", available: true, failTimes: 1}
	fallback := &fakeStrategy{name: "rules", available: true}
	c := New(primary, fallback, 5, nil)

	result, err := c.Run(context.Background(), makeFiles(10), nil)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	// batch 1 fails on remote, lands on rules; batch 2 stays on remote
	if primary.calls != 2 {
		t.Errorf("primary called %d times, want 2", primary.calls)
	}
	if fallback.calls != 1 {
		t.Errorf("fallback called %d times, want 1", fallback.calls)
	}
	if len(result.Suggestions) != 10 {
		t.Errorf("merged %d suggestions, want 10", len(result.Suggestions))
	}
}

func TestRunDoubleFailureContinues(t *testing.T) {
	primary := &fakeStrategy{name: "remote", available: true, failTimes: 1}
	fallback := &fakeStrategy{name: "rules", available: true, failTimes: 1}
	c := New(primary, fallback, 5, nil)

	var progress int
	result, err := c.Run(context.Background(), makeFiles(10), func(batch, total int, r *strategy.Result) {
		progress++
		if batch == 1 && len(r.Suggestions) != 0 {
			t.Errorf("failed batch reported %d suggestions, want 0", len(r.Suggestions))
		}
	})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if progress != 2 {
		t.Errorf("got %d progress calls, want 2", progress)
	}
	if len(result.Suggestions) != 5 {
		t.Errorf("merged %d suggestions, want 5 (first batch lost)", len(result.Suggestions))
	}
}

func TestRunAllBatchesFail(t *testing.T) {
	primary := &fakeStrategy{name: "remote", available: true, failTimes: 10}
	c := New(primary, nil, 5, nil)

	result, err := c.Run(context.Background(), makeFiles(10), nil)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if len(result.Suggestions) != 0 {
		t.Errorf("got %d suggestions from all-failed run, want 0", len(result.Suggestions))
	}
	if len(result.Categories) != 0 {
		t.Errorf("got %d categories from all-failed run, want 0", len(result.Categories))
	}
}

func TestRunAuthFailureSwitchesForRemainder(t *testing.T) {
	primary := &fakeStrategy{name: "remote", available: true, failTimes: 1, failWith: strategy.ErrAuth}
	fallback := &fakeStrategy{name: "rules", available: true}
	c := New(primary, fallback, 5, nil)

	result, err := c.Run(context.Background(), makeFiles(15), nil)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	// remote sees only the first batch; rules covers it and the rest
	if primary.calls != 1 {
		t.Errorf("primary called %d times after auth rejection, want 1", primary.calls)
	}
	if fallback.calls != 3 {
		t.Errorf("fallback called %d times, want 3", fallback.calls)
	}
	if len(result.Suggestions) != 15 {
		t.Errorf("merged %d suggestions, want 15", len(result.Suggestions))
	}
}

func TestRunSameStrategyNoSelfFallback(t *testing.T) {
	primary := &fakeStrategy{name: "rules", available: true, failTimes: 1}
	fallback := &fakeStrategy{name: "rules", available: true}
	c := New(primary, fallback, 10, nil)

	result, err := c.Run(context.Background(), makeFiles(5), nil)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if fallback.calls != 0 {
		t.Errorf("self-fallback invoked %d times, want 0", fallback.calls)
	}
	if len(result.Suggestions) != 0 {
		t.Errorf("got %d suggestions, want 0", len(result.Suggestions))
	}
}
