// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventdb

// record rows carry the snappy-compressed RLP encoding of the full signed
// record; the indexed columns exist for filtering only.
const recordTableSchema = `
create table if not exists record (
	id blob(32) primary key,
	author blob(32),
	createdAt integer,
	kind integer,
	identifier text,
	data blob
);

CREATE INDEX if not exists recordAuthorIndex on record(author);
CREATE INDEX if not exists recordKindIndex on record(kind);
CREATE INDEX if not exists recordCreatedAtIndex on record(createdAt);
CREATE INDEX if not exists recordReplaceIndex on record(author, kind, identifier);
`

// one row per tag, keyed by the tag name and its first value.
const recordTagTableSchema = `
create table if not exists recordTag (
	recordID blob(32),
	name text,
	value text
);

CREATE INDEX if not exists tagRecordIDIndex on recordTag(recordID);
CREATE INDEX if not exists tagNameValueIndex on recordTag(name, value);
`
