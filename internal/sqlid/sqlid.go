// Package sqlid validates and quotes MySQL identifiers and column type
// definitions before they are interpolated into SQL text. Values never go
// through this package; they are always bound as parameters.
package sqlid

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Aditya-creator173/SQL-Compiler/internal/common"
)

// MaxLength is the MySQL limit for database, table and column names.
const MaxLength = 64

var (
	identRe  = regexp.MustCompile(`^[A-Za-z0-9_$]+$`)
	digitsRe = regexp.MustCompile(`^[0-9]+$`)

	// A type name, an optional parenthesised argument list of numbers or
	// quoted literals and optional attribute words: "INT", "VARCHAR(100)",
	// "DECIMAL(10, 2) NOT NULL", "ENUM('a','b')".
	typeRe = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*(\s*\((\s*([0-9]+|'[^']*')\s*,?)+\))?(\s+[A-Za-z0-9_]+)*$`)
)

// Validate reports whether name is usable as an identifier: 1 to 64
// characters from [A-Za-z0-9_$], not made of digits only.
func Validate(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: identifier is empty", common.ErrorValidation)
	case len(name) > MaxLength:
		return fmt.Errorf("%w: identifier %q is longer than %d characters", common.ErrorValidation, name, MaxLength)
	case !identRe.MatchString(name):
		return fmt.Errorf("%w: identifier %q contains illegal characters", common.ErrorValidation, name)
	case digitsRe.MatchString(name):
		return fmt.Errorf("%w: identifier %q must not be numeric", common.ErrorValidation, name)
	}
	return nil
}

// Quote returns a backticked identifier, doubling embedded backticks.
func Quote(name string) string {
	var b strings.Builder
	b.Grow(len(name) + 4)
	b.WriteByte('`')
	for i := 0; i < len(name); i++ {
		b.WriteByte(name[i])
		if name[i] == '`' {
			b.WriteByte('`')
		}
	}
	b.WriteByte('`')
	return b.String()
}

// QuoteValid validates name and returns it quoted.
func QuoteValid(name string) (string, error) {
	if err := Validate(name); err != nil {
		return "", err
	}
	return Quote(name), nil
}

// JoinQuoted validates and quotes every name and joins them with ", ".
func JoinQuoted(names []string) (string, error) {
	quoted := make([]string, len(names))
	for i, n := range names {
		q, err := QuoteValid(n)
		if err != nil {
			return "", err
		}
		quoted[i] = q
	}
	return strings.Join(quoted, ", "), nil
}

// Unquote strips one level of backtick quoting, undoing Quote.
func Unquote(name string) string {
	if l := len(name); l >= 2 && name[0] == '`' && name[l-1] == '`' {
		return strings.ReplaceAll(name[1:l-1], "``", "`")
	}
	return name
}

// ValidateType checks a column type definition as typed by a user. Statement
// separators, comments and identifier quotes are rejected.
func ValidateType(def string) error {
	def = strings.TrimSpace(def)
	if def == "" {
		return fmt.Errorf("%w: column type is empty", common.ErrorValidation)
	}
	for _, bad := range []string{";", "`", "--", "/*", "*/", "#"} {
		if strings.Contains(def, bad) {
			return fmt.Errorf("%w: column type %q contains %q", common.ErrorValidation, def, bad)
		}
	}
	if !typeRe.MatchString(def) {
		return fmt.Errorf("%w: column type %q is not a valid type definition", common.ErrorValidation, def)
	}
	return nil
}
