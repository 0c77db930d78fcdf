package services

const (
	SlotD1 = "D1"
	SlotD2 = "D2"
)

// Document types that track two parallel slots. Everything else is pinned
// to D1. Multi-slot types cap at two slots by policy; a third slot is
// never allocated.
var multiSlotTypes = map[string]bool{
	"ownership_documents": true,
	"government_nocs":     true,
}

func IsMultiSlot(documentType string) bool {
	return multiSlotTypes[documentType]
}

// AllowedSlots returns the permitted slot names for a document type.
func AllowedSlots(documentType string) []string {
	if IsMultiSlot(documentType) {
		return []string{SlotD1, SlotD2}
	}
	return []string{SlotD1}
}

func slotAllowed(documentType, slot string) bool {
	for _, s := range AllowedSlots(documentType) {
		if s == slot {
			return true
		}
	}
	return false
}

// AssignSlot resolves which slot a new upload occupies. occupancy maps
// slot name to the number of versions it already holds. Pure function,
// no I/O; every caller that needs a slot goes through here rather than
// defaulting to D1 on its own.
func AssignSlot(documentType, requestedSlot string, occupancy map[string]int) string {
	if !IsMultiSlot(documentType) {
		return SlotD1
	}
	if requestedSlot != "" && slotAllowed(documentType, requestedSlot) {
		return requestedSlot
	}
	for _, s := range AllowedSlots(documentType) {
		if occupancy[s] == 0 {
			return s
		}
	}
	return SlotD1
}
