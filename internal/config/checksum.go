package config

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
)

// Checksum returns a short, stable checksum of any JSON-serialisable value,
// used to tag reports with the manifest or campaign that produced them.
//
// It computes MD5 over the JSON encoding and returns the first 6 hex
// characters (equivalent to `md5sum | cut -c1-6`). Map keys are encoded in
// sorted order by encoding/json, so map iteration order does not matter.
func Checksum(v interface{}) (string, error) {
	if v == nil {
		return "", nil
	}

	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}

	sum := md5.Sum(b)
	hexStr := hex.EncodeToString(sum[:])
	if len(hexStr) > 6 {
		hexStr = hexStr[:6]
	}
	return hexStr, nil
}
