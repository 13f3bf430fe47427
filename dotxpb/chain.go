package dotxpb

// Chain is an ordered list of indices into the source Anchor array,
// produced by the chainer. All referenced anchors share (Query,
// Target, Strand); the indices form a strictly increasing diagonal
// order per the chainer's can_link relation.
//
// Chain.Indices refer into whatever []Anchor the chainer was invoked
// on; callers must not reorder that array while a Chain referencing it
// is alive.
type Chain struct {
	Indices []int
	Score   float32
	Strand  Strand
	Query   string
	Target  string
}

// Len returns the number of anchors in the chain.
func (c *Chain) Len() int { return len(c.Indices) }
