package common

import (
	"crypto/sha256"
	"encoding/asn1"
	"math/big"

	"github.com/zkpauth/zkp/num"
)

// HashCommit computes the sha256 hash over the asn1 representation of a slice of integers,
// prefixed by their count, and returns the first 128 bits of the hash as an integer.
func HashCommit(values ...num.Int) num.Int {
	tmp := make([]interface{}, len(values)+1)
	tmp[0] = big.NewInt(int64(len(values)))
	for i, v := range values {
		tmp[i+1] = v.Big()
	}
	r, err := asn1.Marshal(tmp)
	if err != nil {
		panic(err) // Marshal should never error, so panic if it does
	}

	sha := sha256.Sum256(r)
	var h num.Int
	_ = h.UnmarshalBinary(sha[:16])
	return h
}
