// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package discovery

import (
	"context"
	"math/big"
	"sort"
	"strconv"
	"strings"

	"github.com/vechain/moot/eventdb"
	"github.com/vechain/moot/moot"
	"github.com/vechain/moot/record"
)

// CapabilityQuery narrows the set of advertised capabilities. All fields are
// optional; a zero query returns every parseable advertisement.
type CapabilityQuery struct {
	Pubkeys       []moot.PubKey // restrict to these authors
	RequiredKinds []uint32      // agent must support every one of these
	AgentTypes    []AgentType   // agent type must be one of these
	MaxPrice      *big.Int      // ceiling on pricing amounts
	AddressPrefix string        // case-sensitive prefix of the payment address
	Limit         int           // max results, 0 for no limit
}

// QueryService finds capability advertisements in the local record store.
type QueryService struct {
	db *eventdb.EventDB
}

// NewQueryService creates the query service on top of the record store.
func NewQueryService(db *eventdb.EventDB) *QueryService {
	return &QueryService{db: db}
}

// Find fetches capability records matching the query and ranks them, cheapest
// and freshest first. Records that fail to parse are skipped with a warning.
func (s *QueryService) Find(ctx context.Context, query *CapabilityQuery) ([]*Capability, error) {
	if query == nil {
		query = &CapabilityQuery{}
	}
	metricQueryCounter().Add(1)

	filter := &record.Filter{
		Kinds:   []uint32{moot.KindCapability},
		Authors: query.Pubkeys,
		Limit:   uint64(query.Limit),
	}
	for _, kind := range query.RequiredKinds {
		filter.WithTag("k", strconv.FormatUint(uint64(kind), 10))
	}

	records, err := s.db.Query(ctx, filter)
	if err != nil {
		return nil, err
	}

	var caps []*Capability
	for _, r := range records {
		c, err := ParseCapability(r)
		if err != nil {
			logger.Warn("skipping invalid capability record",
				"id", r.ID().AbbrevString(), "err", err)
			continue
		}
		if query.matches(c) {
			caps = append(caps, c)
		}
	}

	rankCapabilities(caps, query.RequiredKinds)
	if query.Limit > 0 && len(caps) > query.Limit {
		caps = caps[:query.Limit]
	}
	return caps, nil
}

// matches applies the in-memory conditions the store filter cannot express.
func (q *CapabilityQuery) matches(c *Capability) bool {
	if len(q.AgentTypes) > 0 {
		found := false
		for _, at := range q.AgentTypes {
			if c.AgentType == at {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	for _, kind := range q.RequiredKinds {
		if !c.Supports(kind) {
			return false
		}
	}
	if q.MaxPrice != nil {
		if len(q.RequiredKinds) > 0 {
			// Every required kind needs an explicit, affordable price.
			for _, kind := range q.RequiredKinds {
				price, ok := c.PriceOf(kind)
				if !ok || price.Amount.Cmp(q.MaxPrice) > 0 {
					return false
				}
			}
		} else {
			affordable := false
			for _, price := range c.Pricing {
				if price.Amount.Cmp(q.MaxPrice) <= 0 {
					affordable = true
					break
				}
			}
			if !affordable {
				return false
			}
		}
	}
	if q.AddressPrefix != "" && !strings.HasPrefix(string(c.PaymentAddress), q.AddressPrefix) {
		return false
	}
	return true
}

// rankCapabilities orders by price, then capacity, then freshness. The sort is
// stable so equally ranked entries keep their store order, newest first.
func rankCapabilities(caps []*Capability, requiredKinds []uint32) {
	sort.SliceStable(caps, func(i, j int) bool {
		iSum, iPriced := priceSum(caps[i], requiredKinds)
		jSum, jPriced := priceSum(caps[j], requiredKinds)
		if iPriced != jPriced {
			return iPriced
		}
		if iPriced && jPriced {
			if cmp := iSum.Cmp(jSum); cmp != 0 {
				return cmp < 0
			}
		}
		if ci, cj := maxConcurrent(caps[i]), maxConcurrent(caps[j]); ci != cj {
			return ci > cj
		}
		return caps[i].CreatedAt > caps[j].CreatedAt
	})
}

// priceSum totals the pricing entries considered for ranking, restricted to
// the required kinds when given. Amounts are summed as published, whatever
// their currency. The bool reports whether any entry was counted.
func priceSum(c *Capability, requiredKinds []uint32) (*big.Int, bool) {
	sum := new(big.Int)
	priced := false
	if len(requiredKinds) > 0 {
		for _, kind := range requiredKinds {
			if price, ok := c.PriceOf(kind); ok {
				sum.Add(sum, price.Amount)
				priced = true
			}
		}
		return sum, priced
	}
	for _, price := range c.Pricing {
		sum.Add(sum, price.Amount)
		priced = true
	}
	return sum, priced
}

func maxConcurrent(c *Capability) int {
	if c.Capacity == nil {
		return 0
	}
	return c.Capacity.MaxConcurrent
}
