package chart

import (
	"strconv"
	"strings"
	"unicode/utf16"
)

// EventID resolves the join key shared by markers and list items within this
// process. A non-empty server id is used verbatim; otherwise the id is
// composed from the normalized category, timestamp and a hash of the title,
// so POLICY and SUPPLY copies of the same event resolve to one id. Clients
// that key id-less events by their raw category will not match POLICY ids.
func EventID(ev Event) string {
	if ev.ID != "" {
		return ev.ID
	}
	var b strings.Builder
	b.WriteString(NormalizeCategory(ev.Category))
	b.WriteByte('|')
	b.WriteString(strconv.FormatInt(ev.T, 10))
	b.WriteByte('|')
	b.WriteString(strconv.FormatUint(uint64(titleHash(ev.Title)), 10))
	return b.String()
}

// titleHash is the 31-multiplier rolling hash over UTF-16 code units, the
// same value a JS client gets from charCodeAt.
func titleHash(s string) uint32 {
	var h uint32
	for _, c := range utf16.Encode([]rune(s)) {
		h = h*31 + uint32(c)
	}
	return h
}
