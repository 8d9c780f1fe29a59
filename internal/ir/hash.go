package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content hashes.
// Version suffix enables future algorithm migration.
const (
	DomainInstance = "scenesmith/instance/v1"
	DomainBatch    = "scenesmith/batch/v1"
	DomainRequests = "scenesmith/requests/v1"
)

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// InstanceHash computes the content hash of one instance record.
// Two instances hash equal iff their canonical JSON is byte-identical.
func InstanceHash(e Instance) (string, error) {
	canonical, err := MarshalCanonical(e.Object())
	if err != nil {
		return "", fmt.Errorf("InstanceHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainInstance, canonical), nil
}

// BatchHash computes the content hash of an ordered instance list.
// It is the fingerprint used to check determinism across runs.
func BatchHash(instances []Instance) (string, error) {
	canonical, err := MarshalCanonical(InstancesArray(instances))
	if err != nil {
		return "", fmt.Errorf("BatchHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainBatch, canonical), nil
}

// RequestsHash fingerprints a canonical request document.
func RequestsHash(requests IRValue) (string, error) {
	canonical, err := MarshalCanonical(requests)
	if err != nil {
		return "", fmt.Errorf("RequestsHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainRequests, canonical), nil
}

// InstancesArray converts instances into an IRArray of records.
func InstancesArray(instances []Instance) IRArray {
	arr := make(IRArray, len(instances))
	for i, e := range instances {
		arr[i] = e.Object()
	}
	return arr
}

// MustInstanceHash is like InstanceHash but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustInstanceHash(e Instance) string {
	h, err := InstanceHash(e)
	if err != nil {
		panic(err)
	}
	return h
}

// MustBatchHash is like BatchHash but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustBatchHash(instances []Instance) string {
	h, err := BatchHash(instances)
	if err != nil {
		panic(err)
	}
	return h
}
