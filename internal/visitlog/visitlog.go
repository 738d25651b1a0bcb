// internal/visitlog/visitlog.go
//
// Best-effort visit persistence.
//
// Context
// -------
// Every served report appends one row to the access_log table:
//
//	CREATE TABLE access_log (
//	  id          BIGINT AUTO_INCREMENT PRIMARY KEY,
//	  ip          VARCHAR(45)  NOT NULL,
//	  country     VARCHAR(64)  NOT NULL,
//	  user_agent  VARCHAR(512) NOT NULL,
//	  created_at  TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP
//	);
//
// The write is a detached task with a do-not-propagate-failure
// contract: Record returns immediately, the insert runs on its own
// goroutine with its own deadline, and a failed insert is reported to
// the operational log and a counter, nothing else.  The response a
// visit belongs to must never wait on, or fail because of, this
// write.  No retries.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
package visitlog

import (
	"context"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/nos486/netmon/internal/metrics"
)

const insertTimeout = 5 * time.Second

// Recorder appends visit rows to access_log.
type Recorder struct {
	db *sqlx.DB
	wg sync.WaitGroup
}

// New wraps an open pool.
func New(db *sqlx.DB) *Recorder {
	return &Recorder{db: db}
}

// Record fires one detached insert for (ip, country, userAgent).  It
// never blocks on the database and never surfaces an error.
func (r *Recorder) Record(ip, country, userAgent string) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.insert(ip, country, userAgent)
	}()
}

// insert performs the actual write.  Failures are swallowed after
// logging; the row is simply lost.
func (r *Recorder) insert(ip, country, userAgent string) {
	ctx, cancel := context.WithTimeout(context.Background(), insertTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO access_log (ip, country, user_agent) VALUES (?, ?, ?)",
		ip, country, userAgent)
	if err != nil {
		metrics.VisitLogErrorsTotal.Inc()
		zap.S().Errorw("visit log write failed",
			"err", err,
			"ip", ip,
		)
	}
}

// Close waits for in-flight writes to drain.  Called at shutdown so a
// terminating process does not drop rows it already accepted.
func (r *Recorder) Close() {
	r.wg.Wait()
}
