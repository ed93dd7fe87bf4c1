package vault

import (
	"fmt"
	"time"

	"github.com/sasha-s/go-deadlock"
	"go.uber.org/zap"

	"github.com/feral-file/ff-vault/internal/logger"
)

// LOCK_WAIT_TRANSFERS is how many confirmed custody transfers a lock wait may span before it is reported
const LOCK_WAIT_TRANSFERS = 20

// WatchLocks configures lock-wait detection for every vault, hub and collection lock. A wait longer
// than LOCK_WAIT_TRANSFERS confirmations is logged as an error and the process keeps running.
func WatchLocks(confirmTimeout time.Duration) time.Duration {
	timeout := LOCK_WAIT_TRANSFERS * confirmTimeout
	deadlock.Opts.DeadlockTimeout = timeout
	deadlock.Opts.OnPotentialDeadlock = func() {
		logger.Error(fmt.Errorf("lock wait exceeded %s", timeout),
			zap.Duration("confirm_timeout", confirmTimeout))
	}
	return timeout
}
