package common

import "github.com/zkpauth/zkp/num"

// SmallPrimes is a list of small prime numbers that allows us to rapidly exclude some fraction
// of composite candidates when searching for a random prime. This list is truncated at the point
// where SmallPrimesProduct exceeds a uint64. It does not include two because we ensure that the
// candidates are odd by construction.
var SmallPrimes = []uint8{
	3, 5, 7, 11, 13, 17, 19, 23, 29, 31, 37, 41, 43, 47, 53,
}

// SmallPrimesProduct is the product of the values in SmallPrimes and allows us to reduce a
// candidate prime by this number and then determine whether it's coprime with all the elements
// of SmallPrimes using uint64 arithmetic only.
var SmallPrimesProduct = num.NewInt(16294579238595022365)

// HasSmallFactor reports whether one of SmallPrimes divides n without being equal to it.
func HasSmallFactor(n num.Int) bool {
	mod := n.Mod(SmallPrimesProduct).Uint64()
	for _, prime := range SmallPrimes {
		if mod%uint64(prime) == 0 && !n.Equals(num.NewInt(uint64(prime))) {
			return true
		}
	}
	return false
}
