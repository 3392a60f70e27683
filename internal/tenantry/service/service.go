// Package service holds the invitation lifecycle and authorization logic.
// Every exported method returns either nil or an error carrying a
// domain.ErrorKind.
package service

import (
	"errors"
	"time"

	"github.com/aussiebroadwan/tenantry/internal/tenantry/domain"
	"github.com/aussiebroadwan/tenantry/internal/tenantry/store"
)

var (
	errAccountNotFound = &domain.Error{Kind: domain.KindNotFound, Msg: "account not found"}
	errUserNotFound    = &domain.Error{Kind: domain.KindNotFound, Msg: "user not found"}
)

// tokenAttempts bounds retries on a token fingerprint collision.
const tokenAttempts = 3

func nowFrom(now func() time.Time) time.Time {
	if now == nil {
		return time.Now().UTC()
	}
	return now().UTC()
}

// storeErr translates a repository failure. A missing row becomes notFound
// (which may be nil to let the caller decide); anything else is an outage.
func storeErr(err error, notFound error) error {
	if err == nil {
		return nil
	}
	if notFound != nil && errors.Is(err, store.ErrNotFound) {
		return notFound
	}
	return domain.Unavailable(err)
}
