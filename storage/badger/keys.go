package badger

import (
	"github.com/poiesic/namescan/core"
	"github.com/poiesic/namescan/storage"
)

// Key prefixes for different data types
const (
	auditEntryPrefix = "audrec:"
	auditIDSeq       = "audseq"
)

// makeAuditKey generates a key for an audit entry.
// Format: prefix:id, with the ID big-endian so keys sort in insertion order.
func makeAuditKey(id core.ID) []byte {
	buf := make([]byte, 0, len(auditEntryPrefix)+8)
	buf = append(buf, auditEntryPrefix...)
	return append(buf, storage.MarshalID(id)...)
}
