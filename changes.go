package reactive

// MutationKind names the operation a raw collection mutation describes.
type MutationKind int

const (
	ItemsPushed MutationKind = iota
	ItemsUnshifted
	ItemInserted
	ItemsPopped
	ItemsShifted
	ItemsRemoved
	ItemReplaced
	ItemsCleared
)

var mutationKindNames = [...]string{
	ItemsPushed:    "items_pushed",
	ItemsUnshifted: "items_unshifted",
	ItemInserted:   "item_inserted",
	ItemsPopped:    "items_popped",
	ItemsShifted:   "items_shifted",
	ItemsRemoved:   "items_removed",
	ItemReplaced:   "item_replaced",
	ItemsCleared:   "items_cleared",
}

func (k MutationKind) String() string {
	if k < 0 || int(k) >= len(mutationKindNames) {
		return "unknown"
	}
	return mutationKindNames[k]
}

// Mutation is the raw log entry of a collection operation. Index is the
// position of the first affected item; replaying the mutations of one
// operation in order on the previous list yields the current one. Items holds
// what was inserted, Removed what was taken out.
type Mutation[T any] struct {
	Kind    MutationKind
	Index   int
	Count   int
	Items   []T
	Removed []T
}

type ChangeKind int

const (
	ItemAdded ChangeKind = iota
	ItemRemoved
)

func (k ChangeKind) String() string {
	switch k {
	case ItemAdded:
		return "item_added"
	case ItemRemoved:
		return "item_removed"
	default:
		return "unknown"
	}
}

// Change is one entry of a normalized diff: an item that was added or
// removed, with its surviving neighbors in the order after the mutation.
// After is the item on its left, Before the item on its right; nil marks the
// start or the end of the sequence.
type Change[T any] struct {
	Kind   ChangeKind
	Item   T
	After  *T
	Before *T
}
