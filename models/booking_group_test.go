package models

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entryAt(start string) SessionEntry {
	return SessionEntry{StartTime: start, BookedAt: time.Now().UTC()}
}

func TestMergeKeepsListSortedAscending(t *testing.T) {
	group := &BookingGroup{Email: "alice@x.com", EventID: "E1"}

	// Out-of-order arrival must still produce an ascending list.
	starts := []string{
		"2024-06-15T10:00:00Z",
		"2024-06-01T10:00:00Z",
		"2024-06-22T10:00:00Z",
		"2024-06-08T10:00:00Z",
	}
	for _, s := range starts {
		require.True(t, group.Merge(entryAt(s)))
	}

	require.Len(t, group.SessionStartTimes, 4)
	for i := 1; i < len(group.SessionStartTimes); i++ {
		prev, err := ParseStartTime(group.SessionStartTimes[i-1].StartTime)
		require.NoError(t, err)
		cur, err := ParseStartTime(group.SessionStartTimes[i].StartTime)
		require.NoError(t, err)
		assert.False(t, cur.Before(prev), "list not ascending at index %d", i)
	}
}

func TestMergeDedupesByRawStartTimeString(t *testing.T) {
	group := &BookingGroup{Email: "alice@x.com", EventID: "E1"}
	require.True(t, group.Merge(entryAt("2024-06-01T10:00:00Z")))

	// Same instant, identical string: rejected.
	assert.False(t, group.Merge(entryAt("2024-06-01T10:00:00Z")))
	assert.Len(t, group.SessionStartTimes, 1)
	assert.Equal(t, 1, group.BookingCount)

	// Same instant, different string representation: the dedupe rule is
	// string equality, so this one is accepted.
	assert.True(t, group.Merge(entryAt("2024-06-01T12:00:00+02:00")))
	assert.Equal(t, 2, group.BookingCount)
}

func TestMergeCountAlwaysMatchesListLength(t *testing.T) {
	group := &BookingGroup{Email: "alice@x.com", EventID: "E1"}
	for i := 0; i < 10; i++ {
		group.Merge(entryAt(fmt.Sprintf("2024-06-%02dT10:00:00Z", i+1)))
		assert.Equal(t, len(group.SessionStartTimes), group.BookingCount)
	}
	// Duplicate merge must leave the invariant intact too.
	group.Merge(entryAt("2024-06-01T10:00:00Z"))
	assert.Equal(t, len(group.SessionStartTimes), group.BookingCount)
}

func TestLastN(t *testing.T) {
	var list SessionList
	for i := 0; i < 8; i++ {
		list = append(list, entryAt(fmt.Sprintf("2024-06-%02dT10:00:00Z", i+1)))
	}

	last := list.LastN(6)
	require.Len(t, last, 6)
	assert.Equal(t, "2024-06-03T10:00:00Z", last[0].StartTime)
	assert.Equal(t, "2024-06-08T10:00:00Z", last[5].StartTime)

	short := list[:2].LastN(6)
	assert.Len(t, short, 2)

	// LastN returns a copy, not a view over the original backing array.
	last[0].StartTime = "mutated"
	assert.Equal(t, "2024-06-03T10:00:00Z", list[2].StartTime)
}
