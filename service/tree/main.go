package tree

import (
	"context"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"gitlab.com/vendalink-commerce/affiliate_api/cache/networktree"
	"gitlab.com/vendalink-commerce/affiliate_api/model"
	"gitlab.com/vendalink-commerce/affiliate_api/monitor"
	"gitlab.com/vendalink-commerce/affiliate_api/queries"
)

// Tree resolves ancestor chains from the network_edges projection and keeps
// that projection in sync with the live affiliates table.
type Tree struct {
	repo *queries.Repo
	ctx  context.Context
}

// Init godoc
func Init(repo *queries.Repo, ctx context.Context) *Tree {
	return &Tree{repo: repo, ctx: ctx}
}

// GetAncestorChain returns up to three ancestors of the affiliate, nearest
// first. Resolution order: in-process cache, denormalized edge row, and as a
// last resort a direct walk of the live table (projection lag is tolerated,
// never fatal).
func (tree *Tree) GetAncestorChain(affiliateID uint64) ([]model.ChainEntry, error) {
	if chain, ok := networktree.GetChain(affiliateID); ok {
		return chain, nil
	}

	edges := make([]model.NetworkEdge, 0, 1)
	if err := tree.repo.ConnReader.Find(&edges, "affiliate_id = ?", affiliateID).Error; err != nil {
		return nil, err
	}
	if len(edges) > 0 {
		chain, err := edges[0].AncestorChain()
		if err != nil {
			return nil, err
		}
		networktree.SetChain(affiliateID, chain)
		return chain, nil
	}

	// projection missing for this affiliate, walk the live table
	log.Warn().
		Str("service", "tree").
		Uint64("affiliate_id", affiliateID).
		Msg("network edge missing, falling back to live table walk")
	monitor.EdgeFallbacks.Inc()

	return tree.walkLiveTable(tree.repo.ConnReader, affiliateID)
}

// walkLiveTable follows parent_affiliate_id up to the commission depth.
// Results are not cached so the projection can win once it catches up.
func (tree *Tree) walkLiveTable(conn *gorm.DB, affiliateID uint64) ([]model.ChainEntry, error) {
	chain := make([]model.ChainEntry, 0, model.MaxCommissionDepth)
	currentID := affiliateID
	for level := 1; level <= model.MaxCommissionDepth; level++ {
		affiliates := make([]model.Affiliate, 0, 1)
		if err := conn.Find(&affiliates, "id = ?", currentID).Error; err != nil {
			return nil, err
		}
		if len(affiliates) == 0 || affiliates[0].ParentAffiliateID == nil {
			break
		}
		parentID := *affiliates[0].ParentAffiliateID
		chain = append(chain, model.ChainEntry{AffiliateID: parentID, Level: level})
		currentID = parentID
	}
	return chain, nil
}

// RebuildEdge recomputes the projection row for a single affiliate inside the
// caller's transaction. The parent's edge is reused when present and rebuilt
// recursively when absent, so a bulk rebuild can run in any order.
func (tree *Tree) RebuildEdge(tx *gorm.DB, affiliate *model.Affiliate) error {
	path, err := tree.resolvePath(tx, affiliate)
	if err != nil {
		return err
	}

	if err := tx.Where("affiliate_id = ?", affiliate.ID).Delete(&model.NetworkEdge{}).Error; err != nil {
		return err
	}

	ids, err := model.ParsePath(path)
	if err != nil {
		return err
	}
	edge := model.NetworkEdge{
		AffiliateID: affiliate.ID,
		ParentID:    affiliate.ParentAffiliateID,
		Level:       len(ids),
		Path:        path,
	}
	if err := tx.Create(&edge).Error; err != nil {
		return err
	}

	networktree.Invalidate(affiliate.ID)
	return nil
}

func (tree *Tree) resolvePath(tx *gorm.DB, affiliate *model.Affiliate) (string, error) {
	if affiliate.ParentAffiliateID == nil {
		return model.BuildPath(nil, affiliate.ID), nil
	}

	parentID := *affiliate.ParentAffiliateID
	edges := make([]model.NetworkEdge, 0, 1)
	if err := tx.Find(&edges, "affiliate_id = ?", parentID).Error; err != nil {
		return "", err
	}
	if len(edges) > 0 {
		return edges[0].Path + "/" + model.BuildPath(nil, affiliate.ID), nil
	}

	// parent edge missing as well, rebuild it first from the live table
	parents := make([]model.Affiliate, 0, 1)
	if err := tx.Find(&parents, "id = ?", parentID).Error; err != nil {
		return "", err
	}
	if len(parents) == 0 {
		// dangling weak reference, treat the affiliate as a root
		log.Warn().
			Str("service", "tree").
			Uint64("affiliate_id", affiliate.ID).
			Uint64("parent_id", parentID).
			Msg("parent affiliate missing, rebuilding edge as root")
		return model.BuildPath(nil, affiliate.ID), nil
	}
	if err := tree.RebuildEdge(tx, &parents[0]); err != nil {
		return "", err
	}
	return tree.resolvePath(tx, affiliate)
}

// RebuildSubtree rebuilds the projection of an affiliate and every descendant,
// breadth first. Invoked on re-parenting, where the whole subtree's paths move.
func (tree *Tree) RebuildSubtree(tx *gorm.DB, root *model.Affiliate) error {
	if err := tree.RebuildEdge(tx, root); err != nil {
		return err
	}

	frontier := []uint64{root.ID}
	for len(frontier) > 0 {
		parentID := frontier[0]
		frontier = frontier[1:]

		children := make([]model.Affiliate, 0)
		if err := tx.Find(&children, "parent_affiliate_id = ?", parentID).Error; err != nil {
			return err
		}
		for i := range children {
			if err := tree.RebuildEdge(tx, &children[i]); err != nil {
				return err
			}
			frontier = append(frontier, children[i].ID)
		}
	}
	return nil
}

// RemoveEdge drops the projection row when an affiliate is removed
func (tree *Tree) RemoveEdge(tx *gorm.DB, affiliateID uint64) error {
	if err := tx.Where("affiliate_id = ?", affiliateID).Delete(&model.NetworkEdge{}).Error; err != nil {
		return err
	}
	networktree.Invalidate(affiliateID)
	return nil
}
