// Package history implements the fixed-capacity data-history ring from
// spec.md §4.7: (time32, int32) records packed across N opaque-byte
// characteristics, each one HIST_BLOCK_SIZE bytes, with a cursor scalar
// holding the slot the next record is written to (one past the
// last-written slot) modulo total capacity.
package history

import (
	"haa/model"
	"haa/persist"
)

// recordSize is 4 bytes of time32 + 4 bytes of int32 value (spec.md
// §4.7's literal record shape).
const recordSize = 8

// BlockSize matches config/builders_sensor.go's dataHistoryBuilder.
const BlockSize = 512

const slotsPerBlock = BlockSize / recordSize

const cursorIdx = 0 // NumF[0]: write cursor, slot units (float64, since capacity can exceed int8 range)

// Capacity returns the total record slots across svc's history blocks.
func Capacity(svc *model.Service) int {
	return len(svc.Chars) * slotsPerBlock
}

// slotLocation maps an absolute slot number to (block index, byte offset
// within block).
func slotLocation(slot int) (block, offset int) {
	return slot / slotsPerBlock, (slot % slotsPerBlock) * recordSize
}

// Init ensures block 0 holds a well-formed (if empty) block before any
// sample is written, so an RPC reader never observes an uninitialized
// buffer even prior to the first wraparound (spec.md §4.7 "Block 0 is
// always initialized first").
func Init(svc *model.Service) {
	if len(svc.Chars) == 0 {
		return
	}
	if b, ok := svc.Chars[0].Value.([]byte); !ok || len(b) != BlockSize {
		svc.Chars[0].Value = make([]byte, BlockSize)
	}
}

// Append writes one (timestamp, value) record at the current cursor and
// advances it, wrapping modulo total capacity.
func Append(svc *model.Service, timestamp uint32, value int32) {
	capacity := Capacity(svc)
	if capacity == 0 {
		return
	}
	slot := int(svc.NumF[cursorIdx])
	if slot < 0 || slot >= capacity {
		slot = 0
	}
	block, offset := slotLocation(slot)
	buf, ok := svc.Chars[block].Value.([]byte)
	if !ok || len(buf) != BlockSize {
		buf = make([]byte, BlockSize)
	}
	putUint32(buf[offset:], timestamp)
	putInt32(buf[offset+4:], value)
	svc.Chars[block].Value = buf

	slot++
	if slot >= capacity {
		slot = 0
	}
	svc.NumF[cursorIdx] = float64(slot)
}

// Record reads back the record at an absolute slot.
func Record(svc *model.Service, slot int) (timestamp uint32, value int32, ok bool) {
	capacity := Capacity(svc)
	if capacity == 0 || slot < 0 || slot >= capacity {
		return 0, 0, false
	}
	block, offset := slotLocation(slot)
	buf, valid := svc.Chars[block].Value.([]byte)
	if !valid || len(buf) < offset+recordSize {
		return 0, 0, false
	}
	return getUint32(buf[offset:]), getInt32(buf[offset+4:]), true
}

func putUint32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}

func getUint32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

func putInt32(b []byte, v int32) { putUint32(b, uint32(v)) }
func getInt32(b []byte) int32    { return int32(getUint32(b)) }

// SaveBlocks persists every block plus the cursor through store, keyed
// the same way as any other characteristic (spec.md §4.10 key scheme),
// so the ring survives a restart without its own bespoke format.
func SaveBlocks(store persist.Store, svc *model.Service) error {
	for i, c := range svc.Chars {
		buf, ok := c.Value.([]byte)
		if !ok {
			continue
		}
		if err := store.SetBytes(persist.Key(svc.Index, i), buf); err != nil {
			return err
		}
	}
	return store.SetInt32(persist.Key(svc.Index, len(svc.Chars)), int32(svc.NumF[cursorIdx]))
}

// LoadBlocks restores blocks and the cursor from store at boot,
// leaving defaults (all-zero blocks, cursor 0) where nothing was
// persisted yet.
func LoadBlocks(store persist.Store, svc *model.Service) {
	for i := range svc.Chars {
		if buf, ok := store.GetBytes(persist.Key(svc.Index, i)); ok && len(buf) == BlockSize {
			svc.Chars[i].Value = buf
		}
	}
	if cur, ok := store.GetInt32(persist.Key(svc.Index, len(svc.Chars))); ok {
		svc.NumF[cursorIdx] = float64(cur)
	}
}
