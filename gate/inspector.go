package gate

import (
	"fmt"
	"strconv"

	"github.com/Masterminds/semver/v3"
	"github.com/gocql/gocql"

	"github.com/arloliu/casspark/types"
)

// SessionInspector implements Inspector against a live gocql session by
// reading the node's system.local row.
//
// Every accessor issues a fresh query; the gates are expected to be called
// a handful of times per test class, so no caching is done.
type SessionInspector struct {
	session *gocql.Session
}

// Compile-time assertion that SessionInspector implements Inspector.
var _ Inspector = (*SessionInspector)(nil)

// NewSessionInspector creates an inspector over a gocql session.
//
// Parameters:
//   - session: An open gocql session
//
// Returns:
//   - *SessionInspector: A new inspector
//   - error: types.ErrNilSession if session is nil
func NewSessionInspector(session *gocql.Session) (*SessionInspector, error) {
	if session == nil {
		return nil, types.ErrNilSession
	}

	return &SessionInspector{session: session}, nil
}

// ProtocolVersion returns the node's native protocol version code.
func (i *SessionInspector) ProtocolVersion() (int, error) {
	var raw string
	if err := i.session.Query(`SELECT native_protocol_version FROM system.local`).Scan(&raw); err != nil {
		return 0, fmt.Errorf("casspark/gate: query native_protocol_version: %w", err)
	}

	version, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("casspark/gate: parse native_protocol_version %q: %w", raw, err)
	}

	return version, nil
}

// ReleaseVersion returns the node's release version.
func (i *SessionInspector) ReleaseVersion() (*semver.Version, error) {
	var raw string
	if err := i.session.Query(`SELECT release_version FROM system.local`).Scan(&raw); err != nil {
		return nil, fmt.Errorf("casspark/gate: query release_version: %w", err)
	}

	version, err := semver.NewVersion(raw)
	if err != nil {
		return nil, fmt.Errorf("casspark/gate: parse release_version %q: %w", raw, err)
	}

	return version, nil
}

// DSEVersion returns the node's DSE version when present.
//
// The whole system.local row is scanned into a map so that the absence of
// the vendor-specific dse_version column reads as "not DSE" instead of a
// query error on OSS Cassandra and ScyllaDB.
func (i *SessionInspector) DSEVersion() (*semver.Version, bool, error) {
	row := make(map[string]any)
	if err := i.session.Query(`SELECT * FROM system.local`).MapScan(row); err != nil {
		return nil, false, fmt.Errorf("casspark/gate: query system.local: %w", err)
	}

	raw, ok := row["dse_version"].(string)
	if !ok || raw == "" {
		return nil, false, nil
	}

	version, err := semver.NewVersion(raw)
	if err != nil {
		return nil, false, fmt.Errorf("casspark/gate: parse dse_version %q: %w", raw, err)
	}

	return version, true, nil
}
