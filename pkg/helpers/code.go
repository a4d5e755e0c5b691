package helpers

import (
	"crypto/rand"
	"math/big"
	"strconv"
)

const (
	codeMin = 100000
	codeMax = 999999
)

var codeSpan = big.NewInt(codeMax - codeMin + 1)

// GenCode returns a 6-digit numeric code drawn uniformly from 100000-999999.
func GenCode() (string, error) {
	n, err := rand.Int(rand.Reader, codeSpan)
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+codeMin, 10), nil
}
