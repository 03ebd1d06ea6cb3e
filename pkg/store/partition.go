package store

import (
	"github.com/cvault/cvault/pkg/entity"
)

// PartitionID tags each entity type's key space. The byte prefixes every
// arena key, so the partitions share one arena without colliding.
type PartitionID byte

const (
	PartitionUsers PartitionID = iota + 1
	PartitionEducation
	PartitionBank
	PartitionCVs
	PartitionChatSessions
	PartitionChatMessages
	PartitionUsage
)

// Partitions lists every partition in declaration order, for admin
// operations that sweep the whole arena.
var Partitions = []PartitionID{
	PartitionUsers,
	PartitionEducation,
	PartitionBank,
	PartitionCVs,
	PartitionChatSessions,
	PartitionChatMessages,
	PartitionUsage,
}

func (id PartitionID) String() string {
	switch id {
	case PartitionUsers:
		return "users"
	case PartitionEducation:
		return "education"
	case PartitionBank:
		return "bank"
	case PartitionCVs:
		return "cvs"
	case PartitionChatSessions:
		return "chat_sessions"
	case PartitionChatMessages:
		return "chat_messages"
	case PartitionUsage:
		return "usage"
	default:
		return "unknown"
	}
}

// Partition is the record store for one entity type: an ordered map from
// fixed-size key to fixed-size encoded record over a slice of the shared
// arena. It enforces nothing about record contents; callers validate before
// writing.
type Partition struct {
	arena Arena
	id    PartitionID
}

// NewPartition binds a partition id to an arena.
func NewPartition(arena Arena, id PartitionID) *Partition {
	return &Partition{arena: arena, id: id}
}

// ID returns the partition's identifier.
func (p *Partition) ID() PartitionID { return p.id }

func (p *Partition) arenaKey(k entity.Key) []byte {
	buf := make([]byte, 1+entity.KeySize)
	buf[0] = byte(p.id)
	copy(buf[1:], k[:])
	return buf
}

// Insert is an unconditional upsert. It returns the previous record under
// the key, if any; callers that need create-only semantics check existence
// themselves.
func (p *Partition) Insert(k entity.Key, record []byte) ([]byte, error) {
	ak := p.arenaKey(k)
	prev, err := p.arena.Get(ak)
	if err != nil && err != ErrKeyNotFound {
		return nil, err
	}
	if err := p.arena.Put(ak, record); err != nil {
		return nil, err
	}
	return prev, nil
}

// Get returns the record under k, or ErrKeyNotFound.
func (p *Partition) Get(k entity.Key) ([]byte, error) {
	return p.arena.Get(p.arenaKey(k))
}

// Contains reports whether k holds a live record.
func (p *Partition) Contains(k entity.Key) (bool, error) {
	_, err := p.arena.Get(p.arenaKey(k))
	if err == ErrKeyNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Remove deletes the record under k and returns it; ErrKeyNotFound when the
// key holds nothing.
func (p *Partition) Remove(k entity.Key) ([]byte, error) {
	ak := p.arenaKey(k)
	prev, err := p.arena.Get(ak)
	if err != nil {
		return nil, err
	}
	if err := p.arena.Delete(ak); err != nil {
		return nil, err
	}
	return prev, nil
}

// Iterate visits every record in the partition in key order. This is the
// only lookup path besides Get: owner-scoped queries are linear scans by
// design and degrade with partition size.
func (p *Partition) Iterate(fn func(k entity.Key, record []byte) error) error {
	return p.arena.Scan([]byte{byte(p.id)}, func(key, value []byte) error {
		var k entity.Key
		copy(k[:], key[1:])
		return fn(k, value)
	})
}

// Count returns the number of live records in the partition.
func (p *Partition) Count() (int, error) {
	n := 0
	err := p.Iterate(func(entity.Key, []byte) error {
		n++
		return nil
	})
	return n, err
}

// Clear removes every record in the partition.
func (p *Partition) Clear() error {
	var keys []entity.Key
	if err := p.Iterate(func(k entity.Key, _ []byte) error {
		keys = append(keys, k)
		return nil
	}); err != nil {
		return err
	}
	for _, k := range keys {
		if err := p.arena.Delete(p.arenaKey(k)); err != nil && err != ErrKeyNotFound {
			return err
		}
	}
	return nil
}
