// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package record

import (
	"github.com/vechain/moot/moot"
)

// Builder to make it easy to build a record.
type Builder struct {
	body body
}

// Author sets the author pubkey. Signing overrides it with the pubkey of the
// signing key.
func (b *Builder) Author(author moot.PubKey) *Builder {
	b.body.Author = author
	return b
}

// CreatedAt sets the creation timestamp in unix seconds.
func (b *Builder) CreatedAt(ts uint64) *Builder {
	b.body.CreatedAt = ts
	return b
}

// Kind sets the record kind.
func (b *Builder) Kind(kind uint32) *Builder {
	b.body.Kind = kind
	return b
}

// Tag appends a tag.
func (b *Builder) Tag(name string, values ...string) *Builder {
	b.body.Tags = append(b.body.Tags, NewTag(name, values...))
	return b
}

// Tags appends a copy of the given tags.
func (b *Builder) Tags(tags Tags) *Builder {
	b.body.Tags = append(b.body.Tags, tags.Copy()...)
	return b
}

// Content sets the record content.
func (b *Builder) Content(content string) *Builder {
	b.body.Content = content
	return b
}

// Build builds the record object, unsigned.
func (b *Builder) Build() *Record {
	r := Record{body: b.body}
	return &r
}
