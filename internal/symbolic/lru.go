package symbolic

import "container/list"

// labelCache is a small fixed-capacity LRU cache mapping a label to the node
// ids that carry it, mirroring original_source's lru::LruCache<String,
// Vec<Uuid>> used by find_by_label. The pack has no Go LRU dependency
// (lru::LruCache has no equivalent import in any example repo's go.mod), so
// this is a hand-rolled container/list-backed LRU — justified in DESIGN.md.
type labelCache struct {
	capacity int
	ll       *list.List
	items    map[string]*list.Element
}

type labelCacheEntry struct {
	label string
	ids   []string
}

func newLabelCache(capacity int) *labelCache {
	if capacity < 1 {
		capacity = 1
	}
	return &labelCache{
		capacity: capacity,
		ll:       list.New(),
		items:    make(map[string]*list.Element),
	}
}

func (c *labelCache) get(label string) ([]string, bool) {
	el, ok := c.items[label]
	if !ok {
		return nil, false
	}
	c.ll.MoveToFront(el)
	return el.Value.(*labelCacheEntry).ids, true
}

func (c *labelCache) put(label string, ids []string) {
	if el, ok := c.items[label]; ok {
		el.Value.(*labelCacheEntry).ids = ids
		c.ll.MoveToFront(el)
		return
	}
	el := c.ll.PushFront(&labelCacheEntry{label: label, ids: ids})
	c.items[label] = el
	if c.ll.Len() > c.capacity {
		oldest := c.ll.Back()
		if oldest != nil {
			c.ll.Remove(oldest)
			delete(c.items, oldest.Value.(*labelCacheEntry).label)
		}
	}
}

