// Copyright 2019 eBay Inc.
// Primary authors: Simon Fell, Diego Ongaro,
//                  Raymond Kroeker, and Sathish Kandasamy.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ebay/tristore/database"
	"github.com/ebay/tristore/spo"
	"github.com/ebay/tristore/util/parallel"
	log "github.com/sirupsen/logrus"
)

// copyCheckInterval is how many source keys each unit of Copy enumerates
// between checks of its context.
const copyCheckInterval = 4096

// Copy merges every fact of 'src' into 'dst', and returns how many facts were
// new to 'dst'. Each of the three indexes is merged by its own goroutine;
// if any of them fails the others are cancelled and the first error is
// returned. If the indexes disagree on how many facts they added, Copy
// returns an error wrapping ErrIndexMismatch.
//
// A fact is new if it's missing from the SPO index of 'dst', and the SPO index
// is only written once the POS and OSP indexes have been. After a failed Copy,
// some facts may be in some of 'dst's indexes but not in SPO; they don't count
// as present, and copying again completes them.
//
// Both stores must use the same term identifiers.
func Copy(ctx context.Context, src, dst *Store) (int64, error) {
	if src == nil || dst == nil {
		return 0, errors.New("store: Copy requires a source and destination store")
	}
	if src == dst {
		return 0, errors.New("store: unable to Copy a store into itself")
	}
	start := time.Now()
	// POS and OSP report here when they're done, so that SPO goes last.
	written := make(chan error, len(spo.KeyOrders)-1)
	counts, err := parallel.CountN(ctx, len(spo.KeyOrders), func(ctx context.Context, i int) (int64, error) {
		order := spo.KeyOrders[i]
		if order != spo.SPO {
			n, err := copyIndex(ctx, order, src, dst)
			written <- err
			return n, err
		}
		for j := 0; j < cap(written); j++ {
			if err := <-written; err != nil {
				// the failed unit's error is the group's; wait for it to
				// cancel the others.
				<-ctx.Done()
				return 0, ctx.Err()
			}
		}
		return copyIndex(ctx, order, src, dst)
	})
	if err != nil {
		dst.recount()
		return 0, fmt.Errorf("unable to copy store %v into %v: %w", src.name, dst.name, err)
	}
	spoCount := counts[indexOf(spo.SPO)]
	dst.count.Add(spoCount)
	for i := range counts {
		if counts[i] != spoCount {
			return 0, fmt.Errorf("%w: copying %v into %v inserted %d %v keys but %d %v keys",
				ErrIndexMismatch, src.name, dst.name,
				spoCount, spo.SPO, counts[i], spo.KeyOrders[i])
		}
	}
	log.WithFields(log.Fields{
		"src":      src.name,
		"dst":      dst.name,
		"inserted": spoCount,
		"elapsed":  time.Since(start),
	}).Debug("Copied store")
	return spoCount, nil
}

func indexOf(order spo.KeyOrder) int {
	for i, o := range spo.KeyOrders {
		if o == order {
			return i
		}
	}
	panic(fmt.Sprintf("store: no index for %v", order))
}

// copyIndex writes to the 'order' index of 'dst' each key of the same index
// of 'src' whose fact is missing from the SPO index of 'dst'.
func copyIndex(ctx context.Context, order spo.KeyOrder, src, dst *Store) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	dstSPO := dst.indexes[spo.SPO]
	var inserted, examined int64
	w := dst.indexes[order].BulkWrite()
	err := src.indexes[order].Enumerate(nil, nil, func(key, value []byte) error {
		examined++
		if examined%copyCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		spoKey := key
		if order != spo.SPO {
			f, err := order.Decode(key)
			if err != nil {
				return err
			}
			spoKey = spo.SPO.Key(f)
		}
		exists, err := database.Contains(dstSPO, spoKey)
		if err != nil || exists {
			return err
		}
		inserted++
		return w.Buffer(key, value)
	})
	if err != nil {
		w.Close()
		return inserted, err
	}
	if err := w.Close(); err != nil {
		return inserted, err
	}
	return inserted, ctx.Err()
}
