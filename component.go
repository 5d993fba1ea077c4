package lattice

// NameID is a stable 32-bit component identifier, produced by an external
// name-interning collaborator (see the names subpackage). NameIDs are
// totally ordered by numeric value; that order defines canonical column
// order within an archetype and canonical node order within the tree.
type NameID uint32

// IDName is the reserved NameID for the entity-id pseudo-component that
// every entity carries. Every archetype contains an id column at this
// NameID, and the ArchetypeTree root node represents exactly {IDName}.
const IDName NameID = 0

// ComponentType describes the storage shape of a component value. TypeID
// is opaque and used only for debug-mode safety checks; it never
// participates in archetype identity, which is based on NameID sets alone.
type ComponentType struct {
	TypeID    uint32
	Size      uint32
	Alignment uint16
}

// idComponentType is the storage shape of the reserved id pseudo-component.
var idComponentType = ComponentType{
	TypeID:    0,
	Size:      8, // sizeof(EntityID)
	Alignment: 8,
}
