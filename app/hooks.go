// Copyright (c) 2019,CAO HONGJU. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package app

import (
	"slices"
	"sync"

	"github.com/cnotch/pframe/locator"
)

type callback struct {
	d        *locator.Dispatchable
	priority int
}

// hooks keeps the callbacks of each event ordered by descending priority.
// Callbacks of equal priority run in registration order.
type hooks struct {
	mu      sync.RWMutex
	byEvent map[string][]callback
}

func (h *hooks) add(event string, d *locator.Dispatchable, priority int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.byEvent == nil {
		h.byEvent = make(map[string][]callback)
	}
	cbs := h.byEvent[event]
	i, _ := slices.BinarySearchFunc(cbs, priority, func(c callback, p int) int {
		// first callback with a lower priority
		if c.priority >= p {
			return -1
		}
		return 1
	})
	h.byEvent[event] = slices.Insert(cbs, i, callback{d: d, priority: priority})
}

func (h *hooks) list(event string) []callback {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return slices.Clone(h.byEvent[event])
}

func (h *hooks) has(event string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.byEvent[event]) > 0
}
