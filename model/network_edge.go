package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MaxCommissionDepth - ancestor levels that participate in commission splits
const MaxCommissionDepth = 3

// NetworkEdge structure
//
// Denormalized projection of the affiliate tree. Exactly one row per
// affiliate. The live affiliates table remains the source of truth; this row
// is rebuilt synchronously on every create / re-parent / delete.
type NetworkEdge struct {
	ID          uint64    `gorm:"type:bigint;PRIMARY_KEY;UNIQUE;NOT NULL;" json:"id"`
	AffiliateID uint64    `gorm:"column:affiliate_id" json:"affiliate_id"`
	ParentID    *uint64   `gorm:"column:parent_id" json:"parent_id"`
	Level       int       `gorm:"column:level" json:"level"`
	Path        string    `gorm:"column:path" json:"path"`
	UpdatedAt   time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// ChainEntry - one ancestor of a purchasing affiliate, nearest first.
// Level 1 is the direct referrer.
type ChainEntry struct {
	AffiliateID uint64 `json:"affiliate_id"`
	Level       int    `json:"level"`
}

// BuildPath materializes the ancestor path as root-first slash separated ids
func BuildPath(ancestorsRootFirst []uint64, affiliateID uint64) string {
	parts := make([]string, 0, len(ancestorsRootFirst)+1)
	for _, id := range ancestorsRootFirst {
		parts = append(parts, strconv.FormatUint(id, 10))
	}
	parts = append(parts, strconv.FormatUint(affiliateID, 10))
	return strings.Join(parts, "/")
}

// ParsePath splits a materialized path back into ids, root first
func ParsePath(path string) ([]uint64, error) {
	if path == "" {
		return []uint64{}, nil
	}
	parts := strings.Split(path, "/")
	ids := make([]uint64, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseUint(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid network path segment %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// AncestorChain derives up to MaxCommissionDepth chain entries from the path,
// nearest ancestor first. The last path segment is the affiliate itself.
func (edge *NetworkEdge) AncestorChain() ([]ChainEntry, error) {
	ids, err := ParsePath(edge.Path)
	if err != nil {
		return nil, err
	}
	if len(ids) <= 1 {
		return []ChainEntry{}, nil
	}
	ancestors := ids[:len(ids)-1]
	chain := make([]ChainEntry, 0, MaxCommissionDepth)
	for i := len(ancestors) - 1; i >= 0 && len(chain) < MaxCommissionDepth; i-- {
		chain = append(chain, ChainEntry{AffiliateID: ancestors[i], Level: len(chain) + 1})
	}
	return chain, nil
}
