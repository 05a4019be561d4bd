package dialect

import "strings"

// render substitutes {key} placeholders in tmpl. args alternates keys and
// values. Substitution is a single left-to-right pass, so values containing
// brace text are never expanded again.
func render(tmpl string, args ...string) string {
	pairs := make([]string, 0, len(args))
	for i := 0; i+1 < len(args); i += 2 {
		pairs = append(pairs, "{"+args[i]+"}", args[i+1])
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}
