package model

// Table describes a physical table in the restaurant.  Tables are
// identified to guests by their number, which is assigned at creation
// as the smallest positive integer not currently in use, so numbers
// freed by deleted tables are recycled.
//
// Fields:
//  ID          – primary key identifier.
//  Number      – unique table number shown to guests.
//  Capacity    – how many guests the table seats (positive).
//  Description – optional free-text description.
type Table struct {
	ID          uint64 // tables.id
	Number      uint32 // tables.number
	Capacity    uint32 // tables.capacity
	Description string // tables.description
}

// NextTableNumber returns the smallest positive integer absent from
// taken.  Creating tables 1,2,3, deleting 2 and creating another
// yields 2 again.
func NextTableNumber(taken []uint32) uint32 {
	used := make(map[uint32]struct{}, len(taken))
	max := uint32(0)
	for _, n := range taken {
		used[n] = struct{}{}
		if n > max {
			max = n
		}
	}
	for n := uint32(1); n <= max; n++ {
		if _, ok := used[n]; !ok {
			return n
		}
	}
	return max + 1
}
