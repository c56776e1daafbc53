package uuid

import (
	"sort"

	"github.com/gofrs/uuid/v5"
)

type UUID = uuid.UUID

var Nil = uuid.Nil

func NewV4() UUID {
	return uuid.Must(uuid.NewV4())
}

func FromString(s string) (UUID, error) {
	return uuid.FromString(s)
}

func FromStringOrNil(s string) UUID {
	return uuid.FromStringOrNil(s)
}

// Less orders UUIDs by their canonical string form, which matches the byte
// order postgres uses for the uuid type.
func Less(a, b UUID) bool {
	return a.String() < b.String()
}

func Sort(ids []UUID) {
	sort.Slice(ids, func(i, j int) bool { return Less(ids[i], ids[j]) })
}
