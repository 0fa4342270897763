// Package inventory holds the reconciled registries: items, buckets and the
// crafted-item set, plus the identity types that key them.
package inventory

import (
	"cmp"
	"strconv"
	"strings"

	"github.com/agentstation/stash/pkg/constants"
	"github.com/agentstation/stash/pkg/errors"
)

// BucketID identifies a bucket by physical bucket hash, scope and optional
// sub-bucket grouping hash. Scope is a character id, AccountScope or
// CollectionsScope.
type BucketID struct {
	Hash  uint32
	Scope string
	Sub   uint32
}

// ID builds a bucket id. It performs no validation.
func ID(hash uint32, scope string, sub uint32) BucketID {
	return BucketID{Hash: hash, Scope: scope, Sub: sub}
}

// Generic returns the account-wide id for the same bucket hash.
func (id BucketID) Generic() BucketID {
	return BucketID{Hash: id.Hash}
}

// IsCollections reports whether the id is in the collections scope.
func (id BucketID) IsCollections() bool {
	return id.Scope == constants.CollectionsScope
}

// IsCharacter reports whether the id is scoped to a character.
func (id BucketID) IsCharacter() bool {
	return id.Scope != constants.AccountScope && id.Scope != constants.CollectionsScope
}

// String encodes the id as "hash", "hash/scope" or "hash/scope/sub".
// ParseBucketID is its inverse.
func (id BucketID) String() string {
	var b strings.Builder
	b.WriteString(strconv.FormatUint(uint64(id.Hash), 10))
	if id.Scope == "" && id.Sub == 0 {
		return b.String()
	}
	b.WriteByte('/')
	b.WriteString(id.Scope)
	if id.Sub != 0 {
		b.WriteByte('/')
		b.WriteString(strconv.FormatUint(uint64(id.Sub), 10))
	}
	return b.String()
}

// MarshalText implements encoding.TextMarshaler.
func (id BucketID) MarshalText() ([]byte, error) {
	if strings.Contains(id.Scope, "/") {
		return nil, errors.NewValidationError("scope", id.Scope, "bucket scope must not contain '/'")
	}
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *BucketID) UnmarshalText(text []byte) error {
	parsed, err := ParseBucketID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// ParseBucketID decodes an id produced by BucketID.String. Only canonical
// encodings are accepted, so String(ParseBucketID(s)) == s for every
// accepted s.
func ParseBucketID(s string) (BucketID, error) {
	parts := strings.Split(s, "/")
	if len(parts) > 3 {
		return BucketID{}, errors.NewParseError("id", "", "malformed bucket id "+strconv.Quote(s), nil)
	}
	hash, err := parseHash(parts[0])
	if err != nil {
		return BucketID{}, errors.NewParseError("id", "", "malformed bucket hash in "+strconv.Quote(s), err)
	}
	id := BucketID{Hash: hash}

	switch len(parts) {
	case 2:
		if parts[1] == "" {
			return BucketID{}, errors.NewParseError("id", "", "empty scope in "+strconv.Quote(s), nil)
		}
		id.Scope = parts[1]
	case 3:
		sub, err := parseHash(parts[2])
		if err != nil || sub == 0 {
			return BucketID{}, errors.NewParseError("id", "", "malformed sub-bucket hash in "+strconv.Quote(s), err)
		}
		id.Scope = parts[1]
		id.Sub = sub
	}
	return id, nil
}

// CompareBucketIDs orders ids by hash, scope, then sub-bucket.
func CompareBucketIDs(a, b BucketID) int {
	return cmp.Or(
		cmp.Compare(a.Hash, b.Hash),
		cmp.Compare(a.Scope, b.Scope),
		cmp.Compare(a.Sub, b.Sub),
	)
}

// ItemID identifies an item. Instanced items are keyed by instance id alone;
// stackable items by hash, scope and occurrence ordinal.
type ItemID struct {
	InstanceID string
	Hash       uint32
	Scope      string
	Ordinal    int
}

// InstanceItemID returns the id of an instanced item.
func InstanceItemID(instanceID string) ItemID {
	return ItemID{InstanceID: instanceID}
}

// StackItemID returns the id of the ordinal-th stack of hash within scope.
func StackItemID(hash uint32, scope string, ordinal int) ItemID {
	return ItemID{Hash: hash, Scope: scope, Ordinal: ordinal}
}

// Instanced reports whether the id is an instance id.
func (id ItemID) Instanced() bool {
	return id.InstanceID != ""
}

// String encodes the id as "i:<instance>" or "h:<hash>:<scope>:<ordinal>".
func (id ItemID) String() string {
	if id.Instanced() {
		return "i:" + id.InstanceID
	}
	return "h:" + strconv.FormatUint(uint64(id.Hash), 10) + ":" + id.Scope + ":" + strconv.Itoa(id.Ordinal)
}

// MarshalText implements encoding.TextMarshaler.
func (id ItemID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *ItemID) UnmarshalText(text []byte) error {
	parsed, err := ParseItemID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// ParseItemID decodes an id produced by ItemID.String.
func ParseItemID(s string) (ItemID, error) {
	switch {
	case strings.HasPrefix(s, "i:"):
		if len(s) == 2 {
			return ItemID{}, errors.NewParseError("id", "", "empty instance id", nil)
		}
		return InstanceItemID(s[2:]), nil

	case strings.HasPrefix(s, "h:"):
		rest := s[2:]
		first := strings.IndexByte(rest, ':')
		last := strings.LastIndexByte(rest, ':')
		if first < 0 || first == last {
			return ItemID{}, errors.NewParseError("id", "", "malformed item id "+strconv.Quote(s), nil)
		}
		hash, err := parseHash(rest[:first])
		if err != nil {
			return ItemID{}, errors.NewParseError("id", "", "malformed item hash in "+strconv.Quote(s), err)
		}
		ordinal, err := strconv.Atoi(rest[last+1:])
		if err != nil || ordinal < 0 || strconv.Itoa(ordinal) != rest[last+1:] {
			return ItemID{}, errors.NewParseError("id", "", "malformed ordinal in "+strconv.Quote(s), err)
		}
		return StackItemID(hash, rest[first+1:last], ordinal), nil
	}
	return ItemID{}, errors.NewParseError("id", "", "unknown item id prefix in "+strconv.Quote(s), nil)
}

// parseHash parses a canonical decimal uint32.
func parseHash(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, err
	}
	if strconv.FormatUint(v, 10) != s {
		return 0, errors.NewValidationError("hash", s, "non-canonical number")
	}
	return uint32(v), nil
}
