package show

import (
	"errors"
	"os"
	"time"
)

const loadAttempts = 5

// Shortened by tests.
var loadRetryDelay = 200 * time.Millisecond

// Load reads and decodes a show file. Reads are retried a few times
// with a short delay to absorb storage that is still settling after a
// file was just written; structural failures (bad magic, unsupported
// version) cannot heal on their own and fail immediately. A truncated
// file retries like an I/O error, since it is usually a write still in
// progress.
func Load(path string) (*Document, error) {
	var lastErr error
	for attempt := 0; attempt < loadAttempts; attempt++ {
		if attempt > 0 {
			time.Sleep(loadRetryDelay)
		}
		b, err := os.ReadFile(path)
		if err != nil {
			lastErr = err
			continue
		}
		d, err := DecodeDocument(b)
		if err == nil {
			return d, nil
		}
		lastErr = err
		if errors.Is(err, ErrBadMagic) || errors.Is(err, ErrUnsupportedVersion) {
			break
		}
	}
	return nil, lastErr
}
