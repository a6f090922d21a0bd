// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package storage

import (
	"encoding/binary"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/poiesic/namescan/core"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// auditRecord is the stored form of an audit entry.
type auditRecord struct {
	ID            uint64    `json:"id"`
	Key           string    `json:"key"`
	EncryptionKey string    `json:"encrypt_key"`
	Source        string    `json:"source"`
	Name          string    `json:"name"`
	Probability   float64   `json:"probability"`
	Action        string    `json:"action"`
	CreatedAt     time.Time `json:"created_at"`
}

// MarshalID serializes an ID to 8 big-endian bytes, so byte order matches
// numeric order.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(id))
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	if len(data) < 8 {
		return 0, ErrTruncatedData
	}
	return core.ID(binary.BigEndian.Uint64(data)), nil
}

// MarshalAuditEntry serializes an AuditEntry to bytes.
func MarshalAuditEntry(entry *core.AuditEntry) ([]byte, error) {
	data, err := json.Marshal(auditRecord{
		ID:            uint64(entry.ID),
		Key:           entry.Key,
		EncryptionKey: entry.EncryptionKey,
		Source:        entry.Source,
		Name:          entry.Name,
		Probability:   entry.Probability,
		Action:        string(entry.Action),
		CreatedAt:     entry.CreatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerializationFailed, err)
	}
	return data, nil
}

// UnmarshalAuditEntry deserializes an AuditEntry from bytes.
func UnmarshalAuditEntry(data []byte) (*core.AuditEntry, error) {
	var rec auditRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerializationFailed, err)
	}
	return &core.AuditEntry{
		ID:            core.ID(rec.ID),
		Key:           rec.Key,
		EncryptionKey: rec.EncryptionKey,
		Source:        rec.Source,
		Name:          rec.Name,
		Probability:   rec.Probability,
		Action:        core.Action(rec.Action),
		CreatedAt:     rec.CreatedAt,
	}, nil
}

// ValidateAuditEntry checks the fields every backend requires.
func ValidateAuditEntry(entry *core.AuditEntry) error {
	switch {
	case entry == nil:
		return fmt.Errorf("%w: nil entry", ErrInvalidEntry)
	case entry.Key == "":
		return fmt.Errorf("%w: empty key", ErrInvalidEntry)
	case entry.EncryptionKey == "":
		return fmt.Errorf("%w: empty encryption key", ErrInvalidEntry)
	case !core.IsValidProbability(entry.Probability):
		return fmt.Errorf("%w: probability %v", ErrInvalidEntry, entry.Probability)
	}
	if err := core.ValidateAction(entry.Action); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}
	return nil
}
