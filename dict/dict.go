// Package dict implements the three name-keyed dictionaries (CONTIG, ID,
// SAMPLE) that give a VCF header's meta-lines and samples dense, stable
// integer ids. The ID category is the union of INFO/FILTER/FORMAT
// declarations, keyed by name exactly as htslib's BCF2 dictionary merges
// them (original_source/vcf.c, vcf_hdr_parse1's VCF_DT_ID branch).
//
// ref: SPEC_FULL.md §4.2
package dict

import "fmt"

// Category identifies one of the three dictionaries a Dict holds.
type Category int

// The three dictionary categories.
const (
	CONTIG Category = iota
	ID
	SAMPLE
)

func (c Category) String() string {
	switch c {
	case CONTIG:
		return "CONTIG"
	case ID:
		return "ID"
	case SAMPLE:
		return "SAMPLE"
	default:
		return fmt.Sprintf("Category(%d)", int(c))
	}
}

// Site tags an INFO/FILTER/FORMAT declaration's role within the ID
// category, occupying bits 0-3 of an info[site] word.
type Site int

// Site tags, per the packed info[site] word.
const (
	SiteFilter Site = iota
	SiteInfo
	SiteFormat
	nSites
)

// ValueType occupies bits 4-7 of an info[site] word: the declared Type
// (Integer/Float/String/Flag/Character) for that site.
type ValueType int

// Declared value types for a site.
const (
	ValFlag ValueType = iota
	ValInteger
	ValFloat
	ValString
	ValCharacter
)

// Cardinality occupies bits 8-11 of an info[site] word.
type Cardinality int

// Declared cardinality kinds (VCF Number=).
const (
	CardFixed    Cardinality = iota // Number=<n>, n carried in bits 12-31
	CardVariable                    // Number=.
	CardAllele                      // Number=A
	CardGenotype                    // Number=G
	CardAllAllele                   // Number=R
)

// noneCount is the all-ones value of the count field (bits 12-31). Nothing
// in this package writes it: an undeclared site is marked by unset, and
// non-fixed cardinalities are packed with count 0.
const noneCount = 0xFFFFF

// unset is the info[site] word for an undeclared site.
const unset uint32 = 0x0000000F

// packInfo builds a single info[site] word from a site tag, value type,
// cardinality and count, per spec.md §3's bit layout:
// bits 0-3 site, 4-7 value type, 8-11 cardinality kind, 12-31 count.
func packInfo(site Site, vt ValueType, card Cardinality, count int) uint32 {
	c := uint32(count) & 0xFFFFF
	return uint32(site)&0xF | (uint32(vt)&0xF)<<4 | (uint32(card)&0xF)<<8 | c<<12
}

// Entry is one dictionary record: its stable id, its name, and (for the ID
// category) the per-site info words describing how it was declared as
// FILTER, INFO and/or FORMAT.
type Entry struct {
	ID   int
	Name string

	// Info holds one packed word per Site, or unset if that site was
	// never declared for this name. Unused outside the ID category.
	Info [nSites]uint32

	// Length is the declared contig length, or -1 if unknown. Unused
	// outside the CONTIG category.
	Length int
}

func newEntry(id int, name string) *Entry {
	e := &Entry{ID: id, Name: name, Length: -1}
	for i := range e.Info {
		e.Info[i] = unset
	}
	return e
}

// Dict holds the three dictionaries of a header. The zero value is ready
// to use.
type Dict struct {
	byName [3]map[string]*Entry
	byID   [3][]*Entry // built by Sync; nil before the first Sync
}

// New returns an empty Dict.
func New() *Dict {
	d := &Dict{}
	for c := range d.byName {
		d.byName[c] = make(map[string]*Entry)
	}
	return d
}

func (d *Dict) ensure() {
	for c := range d.byName {
		if d.byName[c] == nil {
			d.byName[c] = make(map[string]*Entry)
		}
	}
}

// Put inserts name into category c if absent, returning its entry (new or
// existing). Category CONTIG and SAMPLE names are otherwise opaque; use
// PutID for the ID category, which additionally needs to merge per-site
// info words into an existing entry.
func (d *Dict) Put(c Category, name string) *Entry {
	d.ensure()
	if e, ok := d.byName[c][name]; ok {
		return e
	}
	e := newEntry(len(d.byName[c]), name)
	d.byName[c][name] = e
	d.byID[c] = nil // invalidate reverse lookup until next Sync
	return e
}

// PutID inserts or updates the ID-category entry for name, declared at the
// given site with the given value type, cardinality and count. If name was
// already declared (e.g. appearing in both ##INFO and ##FORMAT, or
// re-declared at the same site), the new site's word replaces only that
// site's entry in Info — other sites are left untouched, exactly as
// htslib's vcf_hdr_parse1 merges a repeated VCF_DT_ID name into the
// existing khash record instead of allocating a new id.
func (d *Dict) PutID(name string, site Site, vt ValueType, card Cardinality, count int) *Entry {
	d.ensure()
	e, ok := d.byName[ID][name]
	if !ok {
		e = newEntry(len(d.byName[ID]), name)
		d.byName[ID][name] = e
	}
	e.Info[site] = packInfo(site, vt, card, count)
	d.byID[ID] = nil
	return e
}

// Get looks up name in category c, reporting whether it was found.
func (d *Dict) Get(c Category, name string) (*Entry, bool) {
	d.ensure()
	e, ok := d.byName[c][name]
	return e, ok
}

// ByID looks up the entry with the given id in category c. Panics if Sync
// has not been called since the last Put/PutID (the reverse-lookup slice
// would be stale or missing). Reports ok=false for an out-of-range id.
func (d *Dict) ByID(c Category, id int) (*Entry, bool) {
	if d.byID[c] == nil && len(d.byName[c]) > 0 {
		panic("dict: ByID called before Sync")
	}
	if id < 0 || id >= len(d.byID[c]) {
		return nil, false
	}
	return d.byID[c][id], true
}

// Len reports the number of entries in category c.
func (d *Dict) Len(c Category) int {
	return len(d.byName[c])
}

// HasSite reports whether entry e was declared at site, i.e. its info word
// for that site is not the "undeclared" sentinel.
func (e *Entry) HasSite(site Site) bool {
	return e.Info[site] != unset
}

// Site decodes entry e's declaration at site into its value type,
// cardinality and count. ok is false if the site was never declared.
func (e *Entry) Site(site Site) (vt ValueType, card Cardinality, count int, ok bool) {
	w := e.Info[site]
	if w == unset {
		return 0, 0, 0, false
	}
	vt = ValueType((w >> 4) & 0xF)
	card = Cardinality((w >> 8) & 0xF)
	count = int(w >> 12)
	return vt, card, count, true
}

// Sync rebuilds the dense id -> *Entry reverse-lookup slices for every
// category from the current name -> *Entry maps, giving O(1) ByID lookups.
// It is idempotent: calling it again with no intervening Put/PutID leaves
// the slices unchanged (every entry is placed at the index equal to its own
// stable id, which Put/PutID never reassigns).
func (d *Dict) Sync() {
	d.ensure()
	for c := range d.byName {
		entries := make([]*Entry, len(d.byName[c]))
		for _, e := range d.byName[c] {
			entries[e.ID] = e
		}
		d.byID[c] = entries
	}
}

// InsertPassIfMissing ensures the ID category contains a "PASS" FILTER
// entry, inserting one (with no declared Number/Type beyond the FILTER
// site) if absent. htslib inserts PASS this way at header-parse time so
// that every FILTER column value has a dictionary id even when the input
// VCF-TEXT never emits an explicit ##FILTER=<ID=PASS,...> line.
func (d *Dict) InsertPassIfMissing() {
	d.ensure()
	if _, ok := d.byName[ID]["PASS"]; ok {
		return
	}
	d.PutID("PASS", SiteFilter, ValFlag, CardFixed, 0)
}
