package bram

// Sink is the abstract contract the core consumes from the platform's
// BRAM access primitives (spec.md section 6: bram_read, bram_write,
// bram_cpy, bram_set, get_addr). This repo ships only an in-memory
// simulator (Sim); the real FPGA-mapped implementation is an external
// collaborator out of scope (spec.md section 1).
//
// Implementations must not reorder a segmented writer's address-offset
// update relative to the bulk writes on either side of it (spec.md
// section 4, "Volatile hardware memory" design note); Sim enforces this
// simply by being single-threaded per call.
type Sink interface {
	Read(region Region, offset uint32) uint16
	Write(region Region, offset uint32, value uint16)
	BulkCopy(region Region, offset uint32, src []uint16)
	BulkSet(region Region, offset uint32, value uint16, nWords uint32)
	AddrOf(region Region, offset uint32) uint32
}
