package dotxpb

// ContigInfo describes one contig: its name, total length, and an
// optional short checksum string (e.g. a truncated MD5 of the
// sequence, as produced by an external parser).
type ContigInfo struct {
	Name     string
	Length   uint64
	HasCksum bool
	Checksum string
}

// ContigSet is an ordered list of contigs with a name->index lookup,
// mirroring the query-contigs/target-contigs lists the container's Meta
// section carries (spec.md S4.3).
type ContigSet struct {
	list    []ContigInfo
	byIndex map[string]int
}

// NewContigSet builds a ContigSet from an ordered list of contigs. The
// list is copied; later mutation of infos does not affect the set.
func NewContigSet(infos []ContigInfo) *ContigSet {
	cs := &ContigSet{
		list:    append([]ContigInfo(nil), infos...),
		byIndex: make(map[string]int, len(infos)),
	}
	for i, c := range cs.list {
		cs.byIndex[c.Name] = i
	}
	return cs
}

// Len returns the number of contigs in the set.
func (cs *ContigSet) Len() int { return len(cs.list) }

// List returns the contigs in their stored order. The caller must not
// mutate the returned slice.
func (cs *ContigSet) List() []ContigInfo { return cs.list }

// ByIndex returns the i'th contig and true, or the zero value and false
// if i is out of range.
func (cs *ContigSet) ByIndex(i int) (ContigInfo, bool) {
	if i < 0 || i >= len(cs.list) {
		return ContigInfo{}, false
	}
	return cs.list[i], true
}

// IndexOf returns the index of the contig named name, or (-1, false) if
// absent.
func (cs *ContigSet) IndexOf(name string) (int, bool) {
	i, ok := cs.byIndex[name]
	if !ok {
		return -1, false
	}
	return i, true
}

// Lookup returns the ContigInfo named name, or (ContigInfo{}, false) if
// absent.
func (cs *ContigSet) Lookup(name string) (ContigInfo, bool) {
	i, ok := cs.byIndex[name]
	if !ok {
		return ContigInfo{}, false
	}
	return cs.list[i], true
}
