package mcpserver

import "strings"

const (
	defaultPageLimit  = 50
	maxPageLimit      = 100
	defaultMatchLimit = 20
	maxMatchLimit     = 200
)

func clampPagination(limit, offset, maxLimit int) (int, int) {
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func normalizeStatus(v string) string {
	return strings.ToUpper(strings.TrimSpace(v))
}

func isAllowedStatus(v string) bool {
	return v == "" || v == "LOBBY" || v == "PLAYING" || v == "PAUSED"
}
