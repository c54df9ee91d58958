// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package record

// Tag is an ordered sequence of strings. The first element is the tag name,
// the rest are its values.
type Tag []string

// NewTag creates a tag with the given name and values.
func NewTag(name string, values ...string) Tag {
	return append(Tag{name}, values...)
}

// Name returns the tag name, or "" for an empty tag.
func (t Tag) Name() string {
	if len(t) == 0 {
		return ""
	}
	return t[0]
}

// Values returns the tag values, excluding the name.
func (t Tag) Values() []string {
	if len(t) == 0 {
		return nil
	}
	return t[1:]
}

// Value returns the first value of the tag, or "" if there is none.
func (t Tag) Value() string {
	if len(t) < 2 {
		return ""
	}
	return t[1]
}

// Copy makes a deep copy of the tag.
func (t Tag) Copy() Tag {
	return append(Tag(nil), t...)
}

// Tags is the ordered tag list of a record.
type Tags []Tag

// First returns the first tag with the given name. The first occurrence wins
// when a name repeats.
func (ts Tags) First(name string) (Tag, bool) {
	for _, t := range ts {
		if t.Name() == name {
			return t, true
		}
	}
	return nil, false
}

// All collects every tag with the given name, in document order.
func (ts Tags) All(name string) []Tag {
	var found []Tag
	for _, t := range ts {
		if t.Name() == name {
			found = append(found, t)
		}
	}
	return found
}

// Copy makes a deep copy of the tag list.
func (ts Tags) Copy() Tags {
	if ts == nil {
		return nil
	}
	cpy := make(Tags, len(ts))
	for i, t := range ts {
		cpy[i] = t.Copy()
	}
	return cpy
}
