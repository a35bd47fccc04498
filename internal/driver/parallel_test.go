package driver_test

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"

	"wstok/internal/diag"
	"wstok/internal/driver"
)

type recordingSink struct {
	mu     sync.Mutex
	events []driver.Event
}

func (s *recordingSink) OnEvent(evt driver.Event) {
	s.mu.Lock()
	s.events = append(s.events, evt)
	s.mu.Unlock()
}

func (s *recordingSink) last(file string) driver.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out driver.Event
	for _, evt := range s.events {
		if evt.File == file {
			out = evt
		}
	}
	return out
}

func TestListFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.txt", "")
	writeFile(t, dir, "a.TXT", "")
	writeFile(t, dir, "sub/c.txt", "")
	writeFile(t, dir, "skip.md", "")

	files, err := driver.ListFiles(dir, []string{".txt"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{
		filepath.Join(dir, "a.TXT"),
		filepath.Join(dir, "b.txt"),
		filepath.Join(dir, "sub", "c.txt"),
	}
	if len(files) != len(want) {
		t.Fatalf("got %v, want %v", files, want)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Fatalf("files[%d] = %s, want %s", i, files[i], want[i])
		}
	}

	all, err := driver.ListFiles(dir, nil)
	if err != nil || len(all) != 4 {
		t.Fatalf("empty filter must match every file, got %v (%v)", all, err)
	}
}

func TestTokenizeDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "one.txt", "alpha beta")
	writeFile(t, dir, "two.txt", "  gamma\n")
	writeFile(t, dir, "three.txt", "")
	writeFile(t, dir, "notes.md", "ignored")

	sink := &recordingSink{}
	fs, results, err := driver.TokenizeDir(context.Background(), dir, driver.Options{Extensions: []string{".txt"}}, 2, sink)
	if err != nil {
		t.Fatalf("tokenize dir: %v", err)
	}
	if fs.Len() != 3 || len(results) != 3 {
		t.Fatalf("expected 3 files, got fileset=%d results=%d", fs.Len(), len(results))
	}

	counts := map[string]int{"one.txt": 2, "three.txt": 0, "two.txt": 1}
	for _, res := range results {
		name := filepath.Base(res.Path)
		if !res.Loaded {
			t.Fatalf("%s was not loaded", name)
		}
		if len(res.Tokens) != counts[name] {
			t.Errorf("%s: %d tokens, want %d", name, len(res.Tokens), counts[name])
		}
		for _, tok := range res.Tokens {
			if tok.Span.File != res.FileID {
				t.Errorf("%s: token span points at file %d, want %d", name, tok.Span.File, res.FileID)
			}
		}
		if evt := sink.last(res.Path); evt.Status != driver.StatusDone || evt.Tokens != counts[name] {
			t.Errorf("%s: last event %+v", name, evt)
		}
	}
	if filepath.Base(results[0].Path) != "one.txt" {
		t.Fatalf("results must keep sorted order, got %s first", results[0].Path)
	}
}

func TestTokenizeDirUnreadableFile(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced")
	}
	dir := t.TempDir()
	writeFile(t, dir, "ok.txt", "fine")
	locked := writeFile(t, dir, "locked.txt", "secret")
	if err := os.Chmod(locked, 0); err != nil {
		t.Fatalf("chmod: %v", err)
	}

	sink := &recordingSink{}
	_, results, err := driver.TokenizeDir(context.Background(), dir, driver.Options{}, 0, sink)
	if err != nil {
		t.Fatalf("load failures must not fail the run: %v", err)
	}
	if len(results) != 2 || results[0].Path != locked {
		t.Fatalf("unexpected results %+v", results)
	}
	bad := results[0]
	if bad.Loaded || !bad.Bag.HasErrors() || bad.Bag.Items()[0].Code != diag.IOLoadFileError {
		t.Fatalf("expected IO4001 for the unreadable file, got %+v", bad.Bag.Items())
	}
	if evt := sink.last(locked); evt.Status != driver.StatusError || evt.Err == nil {
		t.Fatalf("unexpected last event %+v", evt)
	}
	if len(results[1].Tokens) != 1 {
		t.Fatalf("the readable file must still be tokenized")
	}
}

func TestTokenizeDirEmpty(t *testing.T) {
	fs, results, err := driver.TokenizeDir(context.Background(), t.TempDir(), driver.Options{}, 4, nil)
	if err != nil || fs == nil || results != nil {
		t.Fatalf("unexpected result fs=%v results=%v err=%v", fs, results, err)
	}
}

func TestChannelSink(t *testing.T) {
	ch := make(chan driver.Event, 1)
	driver.ChannelSink{Ch: ch}.OnEvent(driver.Event{File: "x", Status: driver.StatusQueued})
	if evt := <-ch; evt.File != "x" {
		t.Fatalf("unexpected event %+v", evt)
	}
	driver.ChannelSink{}.OnEvent(driver.Event{})
}
