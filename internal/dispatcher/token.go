package dispatcher

import (
	"fmt"
	"strings"
)

// ParseLine splits an input line into positional arguments and flags.
// Tokens starting with "--" and containing "=" are key=value flags;
// tokens starting with a single "-" are boolean flags set to "true".
// Double quotes group words into one token.
func ParseLine(line string) (args []string, flags map[string]string, err error) {
	tokens, err := splitQuoted(line)
	if err != nil {
		return nil, nil, err
	}

	flags = map[string]string{}
	for _, token := range tokens {
		switch {
		case strings.HasPrefix(token, "--"):
			key, value, found := strings.Cut(strings.TrimPrefix(token, "--"), "=")
			if !found {
				value = "true"
			}
			flags[key] = value
		case strings.HasPrefix(token, "-") && len(token) > 1:
			flags[strings.TrimPrefix(token, "-")] = "true"
		default:
			args = append(args, token)
		}
	}
	return args, flags, nil
}

// splitQuoted splits on whitespace, honoring double-quoted groups.
func splitQuoted(line string) ([]string, error) {
	var tokens []string
	var cur strings.Builder
	inQuote := false
	hasToken := false

	for _, r := range line {
		switch {
		case r == '"':
			inQuote = !inQuote
			hasToken = true
		case (r == ' ' || r == '\t') && !inQuote:
			if hasToken {
				tokens = append(tokens, cur.String())
				cur.Reset()
				hasToken = false
			}
		default:
			cur.WriteRune(r)
			hasToken = true
		}
	}
	if inQuote {
		return nil, fmt.Errorf("unbalanced quote")
	}
	if hasToken {
		tokens = append(tokens, cur.String())
	}
	return tokens, nil
}
