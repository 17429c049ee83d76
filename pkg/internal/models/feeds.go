package models

// FeedKind identifies one of the parameterized media feed verticals. Both
// kinds run the exact same mechanics over separate table and config
// namespaces.
type FeedKind string

const (
	FeedKindPrimary = FeedKind("primary")
	FeedKindPet     = FeedKind("pet")
)

var FeedKinds = []FeedKind{FeedKindPrimary, FeedKindPet}

func ParseFeedKind(raw string) (FeedKind, bool) {
	switch FeedKind(raw) {
	case FeedKindPrimary:
		return FeedKindPrimary, true
	case FeedKindPet:
		return FeedKindPet, true
	}
	return "", false
}

// Table returns the namespaced table name for this feed kind.
func (k FeedKind) Table(name string) string {
	return string(k) + "_" + name
}

func (k FeedKind) String() string {
	return string(k)
}
