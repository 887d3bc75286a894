// Package identity derives stable identifiers for pages and builds.
package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

const namespace = "go-mdsite:"

// UUID derives a deterministic UUID from key using go-hashid, falling back to
// a name based SHA-1 UUID. Blank keys map to uuid.Nil.
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// PageUUID identifies a page by its content relative source path, so the id
// survives rebuilds and machine changes.
func PageUUID(source string) uuid.UUID {
	return UUID(namespace + "page:" + strings.TrimPrefix(strings.TrimSpace(source), "./"))
}

// BuildUUID identifies one build run. Builds are not meant to be
// reproducible, so it is random.
func BuildUUID() uuid.UUID {
	return uuid.New()
}
