package recommend

import (
	"strings"

	"github.com/yourorg/roomeasy-api/internal/model"
)

// ExtractLocationKeywords returns up to two trailing comma-separated segments
// of address, trimmed and lower-cased, area before city. It assumes an
// "..., Area, City" layout and misfires on addresses written any other way.
func ExtractLocationKeywords(address string) []string {
	var segs []string
	for _, p := range strings.Split(address, ",") {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			segs = append(segs, p)
		}
	}
	if len(segs) > 2 {
		segs = segs[len(segs)-2:]
	}
	return segs
}

// RecordView moves id to the front of the session's recently viewed list,
// keeping at most model.MaxRecentlyViewed entries.
func RecordView(sess model.ViewerSession, id int64) model.ViewerSession {
	ids := make([]int64, 0, model.MaxRecentlyViewed)
	ids = append(ids, id)
	for _, v := range sess.RecentlyViewed {
		if len(ids) == model.MaxRecentlyViewed {
			break
		}
		if v != id {
			ids = append(ids, v)
		}
	}
	sess.RecentlyViewed = ids
	return sess
}
