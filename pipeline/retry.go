// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/poiesic/minutes/storage"
)

// retryPersist calls write until it succeeds or attempts run out, sleeping
// baseDelay, 2*baseDelay, ... between tries. Errors that a second write
// cannot fix end the loop at once. The last error is returned.
func retryPersist(ctx context.Context, logger *slog.Logger, attempts int, baseDelay time.Duration, write func() error) error {
	if attempts <= 0 {
		return ErrInvalidMaxAttempts
	}

	var err error
	delay := baseDelay
	for attempt := 1; ; attempt++ {
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		if err = write(); err == nil {
			if attempt > 1 {
				logger.Debug("write succeeded after retry", "attempt", attempt)
			}
			return nil
		}
		if permanent(err) || attempt == attempts {
			return err
		}
		logger.Debug("write failed, retrying", "attempt", attempt, "of", attempts, "delay", delay, "err", err)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay *= 2
	}
}

func permanent(err error) bool {
	return errors.Is(err, storage.ErrInvalidRecord) ||
		errors.Is(err, storage.ErrNotFound) ||
		errors.Is(err, storage.ErrStorageClosed) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
