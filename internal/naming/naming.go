// Package naming generates deterministic identifiers for indexes and foreign
// keys. Names only depend on their inputs, so two independent runs over the
// same schema always agree and diffs stay stable.
package naming

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/zeebo/xxh3"
)

// DefaultMaxLength keeps generated names inside the 30 character limit of
// the most restrictive engines.
const DefaultMaxLength = 30

const (
	PrefixIndex  = "idx"
	PrefixUnique = "uid"
	prefixFK     = "fk"
)

// Service generates index and foreign-key identifiers.
type Service interface {
	IndexName(prefix, table string, fields []string) string
	ForeignKeyName(fromTable, fromColumn, toTable, toColumn string) string
}

// IndexPrefix returns the prefix convention for an index.
func IndexPrefix(unique bool) string {
	if unique {
		return PrefixUnique
	}
	return PrefixIndex
}

// Hashed builds names from truncated inputs plus a short xxh3 digest of the
// full inputs.
//
//	index: <prefix>_<table[:11]>_<field0[:7]>_<hash6>
//	fk:    fk_<from[:8]>_<to[:8]>_<hash8>
type Hashed struct {
	// MaxLength bounds every generated name. Zero means DefaultMaxLength.
	MaxLength int
}

// NewHashed returns a Hashed service bounded by maxLength.
func NewHashed(maxLength int) *Hashed {
	return &Hashed{MaxLength: maxLength}
}

// IndexName implements Service.
func (h *Hashed) IndexName(prefix, table string, fields []string) string {
	first := ""
	if len(fields) > 0 {
		first = fields[0]
	}
	args := append([]string{table}, fields...)
	name := fmt.Sprintf("%s_%s_%s_%s",
		prefix,
		truncate(table, 11),
		truncate(first, 7),
		digest(6, args...),
	)
	return h.bound(name)
}

// ForeignKeyName implements Service.
func (h *Hashed) ForeignKeyName(fromTable, fromColumn, toTable, toColumn string) string {
	name := fmt.Sprintf("%s_%s_%s_%s",
		prefixFK,
		truncate(fromTable, 8),
		truncate(toTable, 8),
		digest(8, fromTable, fromColumn, toTable, toColumn),
	)
	return h.bound(name)
}

// bound keeps the trailing digest and cuts the readable part when a custom
// MaxLength is tighter than the layout.
func (h *Hashed) bound(name string) string {
	limit := h.MaxLength
	if limit <= 0 {
		limit = DefaultMaxLength
	}
	if len(name) <= limit {
		return name
	}
	cut := strings.LastIndexByte(name, '_')
	suffix := name[cut:]
	if len(suffix) >= limit {
		return suffix[len(suffix)-limit:]
	}
	return truncateBytes(name[:cut], limit-len(suffix)) + suffix
}

// digest hashes the length-prefixed parts so that no two part lists share an
// encoding.
func digest(length int, parts ...string) string {
	var b strings.Builder
	for _, p := range parts {
		b.WriteString(strconv.Itoa(len(p)))
		b.WriteByte(':')
		b.WriteString(p)
	}
	sum := fmt.Sprintf("%016x", xxh3.HashString(b.String()))
	return sum[:length]
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// truncateBytes cuts s to at most n bytes without splitting a rune.
func truncateBytes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	out := make([]byte, 0, n)
	for _, r := range s {
		enc := string(r)
		if len(out)+len(enc) > n {
			break
		}
		out = append(out, enc...)
	}
	return string(out)
}
