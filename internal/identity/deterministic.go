package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Callers must ensure key construction prevents cross-entity collisions (prefix by domain/type).
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

// PageUUID derives the fixture identity for a page by slug.
func PageUUID(slug string) uuid.UUID {
	return UUID("bedrock-cms:page:" + strings.ToLower(strings.TrimSpace(slug)))
}

// PostUUID derives the fixture identity for a blog post by slug.
func PostUUID(slug string) uuid.UUID {
	return UUID("bedrock-cms:post:" + strings.ToLower(strings.TrimSpace(slug)))
}
