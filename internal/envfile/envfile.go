// Package envfile reads dotenv files that supply pipeline inputs when a
// command runs outside of an Azure DevOps agent.
package envfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bctools/bctools/internal/messages"
)

var (
	errExpectedKeyValue = errors.New(messages.EnvfileExpectedKeyValue)
	errUnterminated     = errors.New(messages.EnvfileUnterminatedQuotedValue)
	errQuotedSuffix     = errors.New(messages.EnvfileInvalidQuotedSuffix)
)

// ReadFile parses the dotenv file at path.
func ReadFile(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return Parse(f)
}

// Parse reads KEY=VALUE lines from r. Blank lines and # comments are
// skipped, a leading "export " is ignored, and values may be single- or
// double-quoted. Later keys win.
func Parse(r io.Reader) (map[string]string, error) {
	values := make(map[string]string)
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		key, value, ok, err := parseLine(scanner.Text())
		if err != nil {
			return nil, fmt.Errorf(messages.EnvfileLineErrorFmt, lineNo, err)
		}
		if ok {
			values[key] = value
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf(messages.EnvfileReadFailedFmt, err)
	}
	return values, nil
}

func parseLine(line string) (key string, value string, ok bool, err error) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return "", "", false, nil
	}
	trimmed = strings.TrimSpace(strings.TrimPrefix(trimmed, "export "))

	key, raw, found := strings.Cut(trimmed, "=")
	key = strings.TrimSpace(key)
	if !found || key == "" {
		return "", "", false, errExpectedKeyValue
	}
	raw = strings.TrimSpace(raw)

	switch {
	case strings.HasPrefix(raw, `"`):
		value, err = unquote(raw, '"')
	case strings.HasPrefix(raw, `'`):
		value, err = unquote(raw, '\'')
	default:
		value = raw
	}
	if err != nil {
		return "", "", false, err
	}
	return key, value, true, nil
}

// unquote returns the payload of a quoted value. Double-quoted payloads
// understand \\, \", \n and \r; single-quoted payloads are literal.
func unquote(raw string, quote byte) (string, error) {
	var b strings.Builder
	escaped := false
	for i := 1; i < len(raw); i++ {
		ch := raw[i]
		switch {
		case escaped:
			escaped = false
			switch ch {
			case 'n':
				b.WriteByte('\n')
			case 'r':
				b.WriteByte('\r')
			case '\\', '"':
				b.WriteByte(ch)
			default:
				b.WriteByte('\\')
				b.WriteByte(ch)
			}
		case ch == '\\' && quote == '"':
			escaped = true
		case ch == quote:
			rest := strings.TrimSpace(raw[i+1:])
			if rest != "" && !strings.HasPrefix(rest, "#") {
				return "", errQuotedSuffix
			}
			return b.String(), nil
		default:
			b.WriteByte(ch)
		}
	}
	return "", errUnterminated
}
