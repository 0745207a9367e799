package casspark

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/arloliu/casspark/types"
)

// keyspaceNameRegex matches the names this harness is willing to create:
// lower-case letters, digits, and underscores, starting with a letter.
var keyspaceNameRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Cassandra rejects keyspace names longer than 48 characters.
const maxKeyspaceNameLen = 48

// KeyspaceName derives a test keyspace name from a test suite name.
//
// The name is split on camel-case boundaries, joined with underscores,
// lower-cased, and prefixed with "test_". Characters outside [a-zA-Z0-9]
// become word separators. The derivation is deterministic: the same input
// always yields the same name, so a suite reuses its keyspace across runs
// while distinct suites stay apart on a shared cluster.
//
// Example:
//
//	KeyspaceName("MyKeyspaceSpec") // "test_my_keyspace_spec"
//
// Parameters:
//   - suite: The test suite name (typically the test function or type name)
//
// Returns:
//   - string: The derived keyspace name
func KeyspaceName(suite string) string {
	var b strings.Builder
	b.WriteString("test")

	// Only ASCII letters and digits survive into the name; anything else,
	// including non-ASCII letters, acts as a word separator.
	isUpper := func(r rune) bool { return r >= 'A' && r <= 'Z' }
	isLower := func(r rune) bool { return r >= 'a' && r <= 'z' }
	isDigit := func(r rune) bool { return r >= '0' && r <= '9' }

	runes := []rune(suite)
	lastUnderscore := false
	for i, r := range runes {
		switch {
		case isUpper(r):
			// A new word starts at an upper-case rune that follows a
			// lower-case rune or digit, or that begins a trailing
			// lower-case run after an upper-case run (e.g. CQLSpec ->
			// cql_spec).
			prevLowerOrDigit := i > 0 && (isLower(runes[i-1]) || isDigit(runes[i-1]))
			startsLowerRun := i > 0 && isUpper(runes[i-1]) &&
				i+1 < len(runes) && isLower(runes[i+1])
			if i == 0 || prevLowerOrDigit || startsLowerRun {
				b.WriteRune('_')
				lastUnderscore = false
			}
			b.WriteRune(unicode.ToLower(r))
			lastUnderscore = false
		case isLower(r) || isDigit(r):
			if b.Len() == len("test") {
				b.WriteRune('_')
			}
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore && b.Len() > len("test") {
				b.WriteRune('_')
				lastUnderscore = true
			}
		}
	}

	name := strings.TrimRight(b.String(), "_")
	if len(name) > maxKeyspaceNameLen {
		name = name[:maxKeyspaceNameLen]
		name = strings.TrimRight(name, "_")
	}

	return name
}

// ValidateKeyspaceName checks that a name is safe to interpolate into DDL.
//
// Parameters:
//   - name: The keyspace name to validate
//
// Returns:
//   - error: types.ErrInvalidKeyspaceName when the name is rejected
func ValidateKeyspaceName(name string) error {
	if name == "" || len(name) > maxKeyspaceNameLen || !keyspaceNameRegex.MatchString(name) {
		return fmt.Errorf("%w: %q", types.ErrInvalidKeyspaceName, name)
	}

	return nil
}

// DDL templates. Test keyspaces are single-node with durable writes off:
// the commit log buys nothing on a throwaway cluster and slows suites down.
const (
	dropKeyspaceDDL   = `DROP KEYSPACE IF EXISTS %s`
	createKeyspaceDDL = `CREATE KEYSPACE IF NOT EXISTS %s WITH REPLICATION = {'class':'SimpleStrategy','replication_factor':1} AND durable_writes = false`
)
