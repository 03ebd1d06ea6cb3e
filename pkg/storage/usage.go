package storage

import (
	"go.uber.org/zap"

	"github.com/cvault/cvault/pkg/entity"
	"github.com/cvault/cvault/pkg/store"
)

// CheckAndUpdateLimit counts one assistant request against the user's daily
// allowance. It returns false when the request would exceed the limit; a
// rejected request is not counted, so the cumulative total only tracks
// requests that were allowed. The read-modify-write runs under the owner
// lock.
func (c *Context) CheckAndUpdateLimit(userID string) (bool, error) {
	unlock := c.lockOwner(userID)
	defer unlock()

	now := c.clock()
	usage, err := c.getUsage(userID)
	if err != nil {
		return false, err
	}
	if usage == nil {
		usage = &entity.APIUsage{UserID: userID, LastReset: now}
	}

	if now-usage.LastReset >= uint64(c.rateLimit.ResetInterval.Nanoseconds()) {
		usage.DailyRequests = 0
		usage.LastReset = now
	}

	if usage.DailyRequests >= c.rateLimit.DailyLimit {
		c.logger.Warn("rate limit exceeded", zap.String("user_id", userID))
		return false, nil
	}

	usage.DailyRequests++
	usage.TotalRequests++
	if _, err := c.usage.Insert(entity.DeriveKey(userID), usage.Encode()); err != nil {
		return false, SystemError("store usage counter", err)
	}
	return true, nil
}

// GetUsage returns the user's counter, or NotFound when the user has never
// made an assistant request.
func (c *Context) GetUsage(userID string) (*entity.APIUsage, error) {
	usage, err := c.getUsage(userID)
	if err != nil {
		return nil, err
	}
	if usage == nil {
		return nil, NotFound("Usage record not found")
	}
	return usage, nil
}

func (c *Context) getUsage(userID string) (*entity.APIUsage, error) {
	data, err := c.usage.Get(entity.DeriveKey(userID))
	if err == store.ErrKeyNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, SystemError("load usage counter", err)
	}
	usage, err := entity.DecodeAPIUsage(data)
	if err != nil {
		return nil, SystemError("decode usage counter", err)
	}
	return usage, nil
}
