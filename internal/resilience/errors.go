package resilience

import (
	"errors"
	"net"
	"net/http"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/minio/minio-go/v7"
)

// IsTransient reports whether err is worth retrying: network timeouts,
// refused or reset connections, Postgres errors pgconn marks safe to retry
// and object storage throttling or 5xx responses.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNABORTED) {
		return true
	}
	if pgconn.SafeToRetry(err) {
		return true
	}

	var s3Err minio.ErrorResponse
	if errors.As(err, &s3Err) {
		return s3Err.StatusCode == http.StatusTooManyRequests ||
			s3Err.StatusCode >= http.StatusInternalServerError ||
			s3Err.Code == "SlowDown"
	}

	msg := strings.ToLower(err.Error())
	for _, p := range []string{
		"connection refused",
		"connection reset by peer",
		"broken pipe",
		"i/o timeout",
		"no such host",
		"loading the dataset in memory",
	} {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}
