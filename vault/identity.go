package vault

import "fmt"

// Identity selects the key IsProcessed uses to decide whether a file was
// already ingested.
type Identity int

const (
	// IdentityRelativePath matches processed/<rel> exactly.
	IdentityRelativePath Identity = iota

	// IdentityBaseName matches processed/<base(rel)> directly under the
	// processed root, or processed/<rel>. Two files with the same name in
	// different directories share one identity in this mode.
	IdentityBaseName
)

func (i Identity) String() string {
	switch i {
	case IdentityRelativePath:
		return "relative_path"
	case IdentityBaseName:
		return "base_name"
	default:
		return fmt.Sprintf("Identity(%d)", int(i))
	}
}

// ParseIdentity parses "relative_path" or "base_name". An empty string
// selects IdentityRelativePath.
func ParseIdentity(s string) (Identity, error) {
	switch s {
	case "", "relative_path":
		return IdentityRelativePath, nil
	case "base_name":
		return IdentityBaseName, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownIdentity, s)
	}
}
