package utils

import (
	"context"
	"fmt"
	"time"
)

// CheckCooldownHit marks a user/goal pair as recently checked and reports
// whether a previous mark is still live. Redis is the fast path; the
// database spacing query remains authoritative, so Redis errors fail open.
func CheckCooldownHit(userID, goalID uint, window time.Duration) bool {
	rc := GetRedis()
	if rc == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	key := fmt.Sprintf("check:cooldown:%d:%d", userID, goalID)
	ok, err := rc.SetNX(ctx, key, "1", window).Result()
	if err != nil {
		if Sugar != nil {
			Sugar.Debugf("cooldown setnx failed key=%s err=%v", key, err)
		}
		return false
	}
	return !ok
}

// ClearCheckCooldown drops the cooldown mark, used when a check is rolled back.
func ClearCheckCooldown(userID, goalID uint) {
	rc := GetRedis()
	if rc == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = rc.Del(ctx, fmt.Sprintf("check:cooldown:%d:%d", userID, goalID)).Err()
}
