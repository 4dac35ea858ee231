package snapshot

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// encMode uses canonical mode for deterministic encoding.
var encMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("snapshot: failed to create CBOR enc mode: %v", err))
	}
	encMode = em
}

// Marshal serializes a Snapshot to CBOR bytes.
func Marshal(s *Snapshot) ([]byte, error) {
	return encMode.Marshal(s)
}

// Unmarshal deserializes a Snapshot from CBOR bytes.
func Unmarshal(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := cbor.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("snapshot: unmarshal: %w", err)
	}
	return &s, nil
}

// Verify recomputes the content hash and reports whether it matches.
func Verify(s *Snapshot) (bool, error) {
	h, err := contentHash(s.Frames)
	if err != nil {
		return false, err
	}
	return h == s.Hash, nil
}
