package utils

import (
	"crypto/rand"
	"encoding/binary"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Ticket token prefixes.  "t_" marks tokens issued by the automatic deposit
// matcher, "m_" tokens issued by a manual admin approval; the distinction
// only matters for operational traceability, both validate identically.
const (
	TicketTokenPrefix = "t_"
	ManualTokenPrefix = "m_"
)

// NewTicketToken returns an opaque lowercase base36 ticket credential of the
// form <prefix><random><unix-millis>.  Uniqueness rests on the 64 bits of
// entropy plus the timestamp suffix, not on a database constraint.
func NewTicketToken(prefix string) string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand failing means the process is in a bad state; fall
		// back to a purely time-derived value rather than panicking in a
		// request path.
		return prefix + strconv.FormatInt(time.Now().UnixNano(), 36)
	}
	n := binary.BigEndian.Uint64(b[:])
	return prefix + strconv.FormatUint(n, 36) + strconv.FormatInt(time.Now().UnixMilli(), 36)
}

// ExtractTicketToken normalizes check-in desk input.  Scanners may deliver
// either the bare token or the full ticket link ({base}/?auth=<token>); a
// URL gets its auth (or token) query parameter extracted, anything else is
// treated as the token itself.
func ExtractTicketToken(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if u, err := url.Parse(raw); err == nil && u.Scheme != "" && u.Host != "" {
		q := u.Query()
		if t := strings.TrimSpace(q.Get("auth")); t != "" {
			return t
		}
		if t := strings.TrimSpace(q.Get("token")); t != "" {
			return t
		}
	}
	return raw
}

// TicketURL builds the emailed ticket link: base URL with the token as the
// auth query parameter.  Trailing slashes on the base are trimmed so the
// result always has exactly one.
func TicketURL(baseURL, token string) string {
	return strings.TrimRight(baseURL, "/") + "/?auth=" + url.QueryEscape(token)
}
