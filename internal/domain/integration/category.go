package integration

import (
	"context"
	"strconv"
	"strings"
)

// MaxCategoryDepth is the deepest category level the ERP catalog supports
const MaxCategoryDepth = 6

// CategoryNode is a shop category. AncestorIDs is ordered from the parent
// to the top of the tree, so the last element is the root of the path.
type CategoryNode struct {
	ID              int64
	ParentID        int64
	Name            string
	AncestorIDs     []int64
	Blog            bool
	MetaDescription string
	MetaKeywords    string
	MetaTitle       string
	Text            string
	Position        int
}

// Level is the depth of the node, counted as the length of its path
func (c CategoryNode) Level() int {
	return len(c.AncestorIDs)
}

// Root returns the last element of the path
func (c CategoryNode) Root() (int64, bool) {
	if len(c.AncestorIDs) == 0 {
		return 0, false
	}
	return c.AncestorIDs[len(c.AncestorIDs)-1], true
}

// HasPath returns false for tree roots
func (c CategoryNode) HasPath() bool {
	return len(c.AncestorIDs) > 0
}

// ParseCategoryPath parses the shop's "|parent|...|root|" path column
func ParseCategoryPath(path string) []int64 {
	var ids []int64
	for _, part := range strings.Split(path, "|") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil || id == 0 {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// Shop is a shop (or subshop) with its category root and locale
type Shop struct {
	ID             int64
	Name           string
	RootCategoryID int64
	Locale         string
	Active         bool
	Default        bool
}

// CategoryReader loads the shop category tree
type CategoryReader interface {
	FindAll(ctx context.Context) ([]CategoryNode, error)
}

// ShopReader loads shops
type ShopReader interface {
	// FindActive returns active shops, the default shop first
	FindActive(ctx context.Context) ([]Shop, error)
}

// ---------------------------------------------------------------------------
// RemoteCategoryIndex
// ---------------------------------------------------------------------------

// RemoteCategory is one entry of the remote category catalog
type RemoteCategory struct {
	ID    int64
	Level int
	Name  string
}

type categoryKey struct {
	level int
	name  string
}

// RemoteCategoryIndex maps (level, name) to remote category IDs. Two shop
// categories with the same name on the same level share one remote
// category.
type RemoteCategoryIndex struct {
	ids map[categoryKey]int64
}

// NewRemoteCategoryIndex creates an empty index
func NewRemoteCategoryIndex() *RemoteCategoryIndex {
	return &RemoteCategoryIndex{ids: make(map[categoryKey]int64)}
}

// Lookup returns the remote ID for level and name
func (i *RemoteCategoryIndex) Lookup(level int, name string) (int64, bool) {
	id, ok := i.ids[categoryKey{level: level, name: name}]
	return id, ok
}

// Put stores the remote ID, replacing an earlier entry with the same key
func (i *RemoteCategoryIndex) Put(level int, name string, id int64) {
	i.ids[categoryKey{level: level, name: name}] = id
}

// Add indexes a catalog entry
func (i *RemoteCategoryIndex) Add(c RemoteCategory) {
	i.Put(c.Level, c.Name, c.ID)
}

// Len returns the number of indexed categories
func (i *RemoteCategoryIndex) Len() int {
	return len(i.ids)
}
