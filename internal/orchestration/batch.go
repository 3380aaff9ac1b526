package orchestration

import (
	"iter"
	"slices"

	"github.com/mdlhea/heapp/internal/composition"
	"github.com/mdlhea/heapp/internal/generate"
)

// Batch is an ordered, restartable sequence of compositions with a known
// length.
type Batch interface {
	Len() int
	All() iter.Seq[composition.Composition]
}

type sliceBatch []composition.Composition

func (b sliceBatch) Len() int { return len(b) }

func (b sliceBatch) All() iter.Seq[composition.Composition] { return slices.Values(b) }

// FromSlice wraps an in-memory list of compositions.
func FromSlice(c []composition.Composition) Batch { return sliceBatch(c) }

type spaceBatch struct {
	space *generate.Space
	total int
}

func (b spaceBatch) Len() int { return b.total }

func (b spaceBatch) All() iter.Seq[composition.Composition] { return b.space.All() }

// FromSpace streams a generated space whose size was counted beforehand.
func FromSpace(space *generate.Space, total int) Batch {
	return spaceBatch{space: space, total: total}
}
