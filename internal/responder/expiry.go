package responder

import (
	"errors"
	"fmt"
	"time"
)

// ErrNoExpiry means the group has no configured expiry date. Callers send a
// graceful fallback instead of surfacing a raw lookup failure.
var ErrNoExpiry = errors.New("no expiry date configured for group")

const noExpiryReply = "本群还没有配置到期时间，请联系管理员。"

// remainTime formats the countdown from now to the YYYYMMDD expiry date.
func remainTime(expiryDate string, now time.Time) (string, error) {
	expiry, err := time.ParseInLocation("20060102", expiryDate, time.Local)
	if err != nil {
		return "", fmt.Errorf("parse expiry date %q: %w", expiryDate, err)
	}

	diff := expiry.Sub(now)
	if diff < 0 {
		diff = 0
	}

	days := int(diff / (24 * time.Hour))
	rem := diff % (24 * time.Hour)
	hours := int(rem / time.Hour)
	minutes := int(rem % time.Hour / time.Minute)
	seconds := int(rem % time.Minute / time.Second)

	return fmt.Sprintf(
		"到期时间:\n%s，还剩余 【%d天%d小时%d分%d秒】小乖就要离开大大了...[流泪][流泪]",
		expiry.Format("2006年01月02日"), days, hours, minutes, seconds), nil
}
