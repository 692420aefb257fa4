package show

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeShow(t *testing.T, b []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "show.bin")
	if err := os.WriteFile(path, b, 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func shortenRetry(t *testing.T, d time.Duration) {
	t.Helper()
	old := loadRetryDelay
	loadRetryDelay = d
	t.Cleanup(func() { loadRetryDelay = old })
}

func TestLoadGoodFile(t *testing.T) {
	doc := &Document{
		Header: Header{Version: CurrentVersion},
		Events: []Event{{Start: 0, Duration: 1000, Kind: KindSolid, Color: 0xFF0000, Targets: MaskOf(3)}},
	}
	path := writeShow(t, doc.Encode())

	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Events) != 1 || got.Events[0].Kind != KindSolid {
		t.Fatalf("unexpected document: %+v", got)
	}
}

func TestLoadMissingFileExhaustsRetries(t *testing.T) {
	shortenRetry(t, time.Millisecond)
	_, err := Load(filepath.Join(t.TempDir(), "absent.bin"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("want fs.ErrNotExist, got %v", err)
	}
}

func TestLoadBadMagicFailsWithoutRetry(t *testing.T) {
	// Keep the real delay: a structural failure must not sleep at all.
	b := Empty().Encode()
	copy(b, "XXXX")
	path := writeShow(t, b)

	start := time.Now()
	_, err := Load(path)
	if !errors.Is(err, ErrBadMagic) {
		t.Fatalf("want ErrBadMagic, got %v", err)
	}
	if elapsed := time.Since(start); elapsed >= loadRetryDelay {
		t.Fatalf("load retried a structural failure, took %v", elapsed)
	}
}

func TestLoadTruncatedRetriesThenFails(t *testing.T) {
	shortenRetry(t, time.Millisecond)
	path := writeShow(t, Empty().Encode()[:20])

	_, err := Load(path)
	if !errors.Is(err, ErrTruncated) {
		t.Fatalf("want ErrTruncated, got %v", err)
	}
}

func TestLoadRecoversWhenFileSettles(t *testing.T) {
	shortenRetry(t, 50*time.Millisecond)
	good := Empty().Encode()
	path := writeShow(t, good[:20])

	done := make(chan error, 1)
	go func() {
		time.Sleep(10 * time.Millisecond)
		done <- os.WriteFile(path, good, 0644)
	}()

	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Header.Version != CurrentVersion {
		t.Fatalf("unexpected header: %+v", got.Header)
	}
	if err := <-done; err != nil {
		t.Fatal(err)
	}
}
