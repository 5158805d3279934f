package imapengine

import (
	"time"
)

// SearchOptions holds the SEARCH command's options.
type SearchOptions struct {
	// Requires IMAP4rev2 or ESEARCH.
	ReturnMin   bool
	ReturnMax   bool
	ReturnAll   bool
	ReturnCount bool
	// Requires IMAP4rev2 or SEARCHRES.
	ReturnSave bool
}

// SearchCriteria holds the SEARCH command's criteria.
//
// When multiple fields are populated, the result is the intersection
// ("and" function) of all conditions.
//
// "And", "Not" and "Or" can be used to combine multiple search criteria. For
// example, the following criteria matches messages that don't contain
// "hello":
//
//	SearchCriteria{Not: []SearchCriteria{{
//		Body: []string{"hello"},
//	}}}
//
// And the following criteria matches messages that contain either "hello"
// or "world":
//
//	SearchCriteria{Or: [][2]SearchCriteria{{
//		{Body: []string{"hello"}},
//		{Body: []string{"world"}},
//	}}}
type SearchCriteria struct {
	SeqNum []SeqSet
	UID    []UIDSet

	// Only the date is used, timezones are ignored.
	Since      time.Time
	Before     time.Time
	SentSince  time.Time
	SentBefore time.Time

	Header []SearchCriteriaHeaderField
	Body   []string
	Text   []string

	Flag    []Flag
	NotFlag []Flag

	Larger  int64
	Smaller int64

	Not []SearchCriteria
	Or  [][2]SearchCriteria

	ModSeq *SearchCriteriaModSeq // requires CONDSTORE
}

// And merges other into criteria, computing their intersection.
func (criteria *SearchCriteria) And(other *SearchCriteria) {
	criteria.SeqNum = append(criteria.SeqNum, other.SeqNum...)
	criteria.UID = append(criteria.UID, other.UID...)

	criteria.Since = intersectSince(criteria.Since, other.Since)
	criteria.Before = intersectBefore(criteria.Before, other.Before)
	criteria.SentSince = intersectSince(criteria.SentSince, other.SentSince)
	criteria.SentBefore = intersectBefore(criteria.SentBefore, other.SentBefore)

	criteria.Header = append(criteria.Header, other.Header...)
	criteria.Body = append(criteria.Body, other.Body...)
	criteria.Text = append(criteria.Text, other.Text...)

	criteria.Flag = append(criteria.Flag, other.Flag...)
	criteria.NotFlag = append(criteria.NotFlag, other.NotFlag...)

	if criteria.Larger == 0 || other.Larger > criteria.Larger {
		criteria.Larger = other.Larger
	}
	if other.Smaller != 0 && (criteria.Smaller == 0 || other.Smaller < criteria.Smaller) {
		criteria.Smaller = other.Smaller
	}

	criteria.Not = append(criteria.Not, other.Not...)
	criteria.Or = append(criteria.Or, other.Or...)
}

// intersectSince returns the later of two dates.
func intersectSince(t1, t2 time.Time) time.Time {
	switch {
	case t1.IsZero():
		return t2
	case t2.IsZero():
		return t1
	case t1.After(t2):
		return t1
	default:
		return t2
	}
}

// intersectBefore returns the earlier of two dates.
func intersectBefore(t1, t2 time.Time) time.Time {
	switch {
	case t1.IsZero():
		return t2
	case t2.IsZero():
		return t1
	case t1.Before(t2):
		return t1
	default:
		return t2
	}
}

// SearchCriteriaHeaderField is a header field key/value pair.
type SearchCriteriaHeaderField struct {
	Key, Value string
}

// SearchCriteriaModSeq represents a MODSEQ search criteria.
type SearchCriteriaModSeq struct {
	ModSeq       uint64
	MetadataName string
	MetadataType SearchCriteriaMetadataType
}

// SearchCriteriaMetadataType is a METADATA entry type.
type SearchCriteriaMetadataType string

const (
	SearchCriteriaMetadataAll     SearchCriteriaMetadataType = "all"
	SearchCriteriaMetadataPrivate SearchCriteriaMetadataType = "priv"
	SearchCriteriaMetadataShared  SearchCriteriaMetadataType = "shared"
)

// SearchData is the data returned by the SEARCH command.
type SearchData struct {
	All NumSet

	// Requires IMAP4rev2 or ESEARCH.
	UID   bool
	Min   uint32
	Max   uint32
	Count uint32

	// Requires CONDSTORE.
	ModSeq uint64
}

// AllSeqNums returns All as a slice of message sequence numbers.
func (data *SearchData) AllSeqNums() []uint32 {
	seqSet, ok := data.All.(SeqSet)
	if !ok {
		return nil
	}

	// A dynamic number set here would be a server bug.
	nums, ok := seqSet.Nums()
	if !ok {
		panic("imapengine: SearchData.All is a dynamic number set")
	}
	return nums
}

// AllUIDs returns All as a slice of UIDs.
func (data *SearchData) AllUIDs() []UID {
	uidSet, ok := data.All.(UIDSet)
	if !ok {
		return nil
	}

	// A dynamic number set here would be a server bug.
	uids, ok := uidSet.Nums()
	if !ok {
		panic("imapengine: SearchData.All is a dynamic number set")
	}
	return uids
}

// SearchRes and IsSearchRes are defined in numset.go, next to the UIDSet
// representation they depend on.
