// Copyright (C) 2026 Tau Protocol Limited
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package crypto

import (
	"crypto/rand"
	"encoding/hex"

	"golang.org/x/crypto/sha3"
)

// Hash returns the sha3-256 digest of key. All deterministic
// identifiers in the system (pool IDs, checkpoint hashes) come through
// here.
func Hash(key []byte) []byte {
	hasher := sha3.New256()
	hasher.Write(key)
	return hasher.Sum(nil)
}

// HashToHex returns the sha3-256 digest of key, hex encoded.
func HashToHex(key []byte) string {
	return hex.EncodeToString(Hash(key))
}

// HashStrToHex returns the sha3-256 digest of the string, hex encoded.
func HashStrToHex(s string) string {
	return HashToHex([]byte(s))
}

// RandomHash returns a random 32 byte hex string. Handy wherever an
// identifier is needed but nothing deterministic is available, mostly
// in tests.
func RandomHash() string {
	data := make([]byte, 10)
	_, _ = rand.Read(data)
	return HashToHex(data)
}
