package dialect

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/apd/v3"

	"schemaddl/internal/core"
)

// DefaultState tells how a column default ends up in DDL.
type DefaultState uint8

const (
	// DefaultNone means no DEFAULT clause at all.
	DefaultNone DefaultState = iota
	// DefaultDeferred means a default exists but is applied by the writing
	// application, so the schema carries no literal for it.
	DefaultDeferred
	// DefaultExpression means Expr holds a rendered SQL literal or expression.
	DefaultExpression
)

func (s DefaultState) String() string {
	switch s {
	case DefaultDeferred:
		return "deferred"
	case DefaultExpression:
		return "expression"
	default:
		return "none"
	}
}

// ResolvedDefault is the outcome of default resolution for one column.
type ResolvedDefault struct {
	State DefaultState
	Expr  string
	// OnUpdate is set for auto-update timestamps on dialects with ON UPDATE.
	OnUpdate string
}

// Clause returns the fragment placed in a column definition, or "".
func (d ResolvedDefault) Clause() string {
	if d.State != DefaultExpression {
		return ""
	}
	clause := "DEFAULT " + d.Expr
	if d.OnUpdate != "" {
		clause += " ON UPDATE " + d.OnUpdate
	}
	return clause
}

// ResolveDefault computes the default of c for this dialect. It never fails:
// values without a rendering rule resolve to DefaultNone.
func (s *Spec) ResolveDefault(c *core.Column) ResolvedDefault {
	if c == nil {
		return ResolvedDefault{}
	}
	value := c.Default
	switch m := value.(type) {
	case core.EnumMember:
		value = m.Value
	case *core.EnumMember:
		if m != nil {
			value = m.Value
		} else {
			value = nil
		}
	}

	autoInsert := c.AutoNowAdd || c.AutoNow
	if value == nil && !autoInsert {
		return ResolvedDefault{}
	}
	if c.Kind.SuppressesLiteralDefault() || core.IsDefaultFunction(value) {
		return ResolvedDefault{State: DefaultDeferred}
	}

	if autoInsert {
		if s.CurrentTimestamp == "" {
			return ResolvedDefault{}
		}
		out := ResolvedDefault{State: DefaultExpression, Expr: s.CurrentTimestamp}
		if c.AutoNow {
			out.OnUpdate = s.OnUpdateTimestamp
		}
		return out
	}

	expr, ok := s.Literal(value, c.Kind)
	if !ok {
		return ResolvedDefault{}
	}
	return ResolvedDefault{State: DefaultExpression, Expr: expr}
}

// Literal renders v as an escaped SQL literal. The second result is false when
// the dialect has no rule for the value's shape.
func (s *Spec) Literal(v any, kind core.FieldKind) (string, bool) {
	switch x := v.(type) {
	case bool:
		return s.boolLiteral(x), true
	case string:
		if kind == core.KindDecimal {
			if d, _, err := apd.NewFromString(strings.TrimSpace(x)); err == nil && d.Form == apd.Finite {
				return d.Text('f'), true
			}
		}
		return s.quoteString(x), true
	case int:
		return strconv.FormatInt(int64(x), 10), true
	case int8:
		return strconv.FormatInt(int64(x), 10), true
	case int16:
		return strconv.FormatInt(int64(x), 10), true
	case int32:
		return strconv.FormatInt(int64(x), 10), true
	case int64:
		return strconv.FormatInt(x, 10), true
	case uint:
		return strconv.FormatUint(uint64(x), 10), true
	case uint8:
		return strconv.FormatUint(uint64(x), 10), true
	case uint16:
		return strconv.FormatUint(uint64(x), 10), true
	case uint32:
		return strconv.FormatUint(uint64(x), 10), true
	case uint64:
		return strconv.FormatUint(x, 10), true
	case float32:
		return floatLiteral(float64(x), kind)
	case float64:
		return floatLiteral(x, kind)
	case *apd.Decimal:
		if x == nil || x.Form != apd.Finite {
			return "", false
		}
		return x.Text('f'), true
	case apd.Decimal:
		if x.Form != apd.Finite {
			return "", false
		}
		return x.Text('f'), true
	case time.Time:
		return s.quoteString(timeLiteral(x, kind)), true
	default:
		return "", false
	}
}

func floatLiteral(f float64, kind core.FieldKind) (string, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", false
	}
	if kind == core.KindDecimal {
		d, err := new(apd.Decimal).SetFloat64(f)
		if err == nil {
			return d.Text('f'), true
		}
	}
	return strconv.FormatFloat(f, 'f', -1, 64), true
}

func timeLiteral(t time.Time, kind core.FieldKind) string {
	switch kind {
	case core.KindDate:
		return t.Format(time.DateOnly)
	case core.KindTime:
		return t.Format("15:04:05.999999")
	default:
		return t.Format("2006-01-02 15:04:05.999999")
	}
}

func (s *Spec) boolLiteral(v bool) string {
	if s.BoolLiteral != nil {
		return s.BoolLiteral(v)
	}
	if v {
		return "TRUE"
	}
	return "FALSE"
}

func (s *Spec) quoteString(v string) string {
	if s.QuoteString != nil {
		return s.QuoteString(v)
	}
	return QuoteANSIString(v)
}
