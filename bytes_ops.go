// SPDX-License-Identifier: GPL-3.0-or-later

package boon

import (
	"encoding/hex"
)

// BytesLiteral implements the `BYTES { … }` literal (§4.1): it desugars to
// a [*List] of [Number], one Number per byte (0–255), rather than a
// dedicated Value variant (SPEC_FULL.md §5's "Bytes stdlib surface").
func BytesLiteral(producerID PersistenceId, raw []byte) *List {
	items := make([]ListItem, len(raw))
	for i, b := range raw {
		items[i] = ListItem{ID: producerID.Child("byte", i), Value: Number(b)}
	}
	return &List{Items: items}
}

// BytesToHex implements `Bytes/to_hex`: renders a Bytes-shaped [*List] (as
// produced by [BytesLiteral]) as lowercase hex Text. Non-byte items (not a
// [Number] in [0, 255]) are skipped.
func BytesToHex(l *List) Text {
	raw := make([]byte, 0, l.Len())
	for _, item := range l.Items {
		if n, ok := item.Value.(Number); ok && n >= 0 && n <= 255 {
			raw = append(raw, byte(n))
		}
	}
	return Text(hex.EncodeToString(raw))
}

// BytesFromHex implements `Bytes/from_hex`: the inverse of [BytesToHex],
// returning false if t is not valid hex — the round-trip law from §8
// requires `Bytes/from_hex(Bytes/to_hex(b)) == b` for any Bytes-shaped
// list, not for arbitrary Text.
func BytesFromHex(producerID PersistenceId, t Text) (*List, bool) {
	raw, err := hex.DecodeString(string(t))
	if err != nil {
		return nil, false
	}
	return BytesLiteral(producerID, raw), true
}
