package structurecache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
	"time"

	types "github.com/edukraft/courseforge-backend/internal/domain/course"
)

// StructureStore is the storage tier contract. The relational primary and
// the local-file fallback both implement it, so callers never know which
// tier served a request.
type StructureStore interface {
	GetByHashKey(ctx context.Context, hashKey string) (*types.CourseStructure, error)
	ListByEducationLevel(ctx context.Context, educationLevel string) ([]*types.CourseStructure, error)
	Insert(ctx context.Context, structure *types.CourseStructure) error
	AppendUsage(ctx context.Context, record *types.StructureUsage) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	Healthy(ctx context.Context) bool
}

var subjectWSRE = regexp.MustCompile(`\s+`)

// NormalizeSubject lowercases, trims and collapses inner whitespace so that
// hash keys are stable across cosmetic input variations.
func NormalizeSubject(subject string) string {
	s := strings.ToLower(strings.TrimSpace(subject))
	return subjectWSRE.ReplaceAllString(s, " ")
}

// HashKey derives the deterministic cache key for a (subject, education
// level) pair. Same inputs always produce the same key; subject case and
// padding do not matter, education level is compared verbatim.
func HashKey(subject, educationLevel string) string {
	h := sha256.New()
	_, _ = h.Write([]byte(NormalizeSubject(subject)))
	_, _ = h.Write([]byte("::"))
	_, _ = h.Write([]byte(strings.TrimSpace(educationLevel)))
	return hex.EncodeToString(h.Sum(nil))
}
