package server

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// svgCache keeps rendered diagrams keyed by payload digest and render
// parameters. The lru cache does its own locking.
type svgCache struct {
	entries *lru.Cache[string, []byte]
}

func newSVGCache(size int) (*svgCache, error) {
	c, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, fmt.Errorf("init svg cache: %w", err)
	}
	return &svgCache{entries: c}, nil
}

func cacheKey(payload []byte, params renderParams) string {
	sum := sha256.Sum256(payload)
	return fmt.Sprintf("%s|%s", hex.EncodeToString(sum[:]), params)
}

func (c *svgCache) get(key string) ([]byte, bool) {
	return c.entries.Get(key)
}

func (c *svgCache) add(key string, svg []byte) {
	c.entries.Add(key, svg)
}

func (c *svgCache) len() int {
	return c.entries.Len()
}
